package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/export"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/session"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <hash> <session-id>",
	Short: "Export a chat session to Markdown, best effort",
	Long: `Write the readable text of a session to <session-id>.recovered.md. The
session format is undocumented, so this collects the string fields that
usually hold conversation text rather than reconstructing turns exactly.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(args[0], args[1])
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (default: current directory)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(hash, logicalID string) error {
	root, err := singleRoot()
	if err != nil {
		return err
	}

	matches, err := session.FindSessionFiles(root.Root, hash, logicalID)
	if err != nil {
		return err
	}

	outDir := exportOut
	if outDir == "" {
		if outDir, err = os.Getwd(); err != nil {
			return err
		}
	}

	exported := 0
	for _, rec := range matches {
		if rec.Ext != "json" {
			continue
		}
		outPath := filepath.Join(outDir, rec.LogicalID+".recovered.md")
		if dryRun {
			ui.DryRunMsg("Would export %s", outPath)
			exported++
			continue
		}
		if err := export.Markdown(rec.Path, outPath); err != nil {
			ui.Warning("Could not export %s: %v", rec.FileName, err)
			continue
		}
		ui.Success("Exported %s", outPath)
		exported++
	}

	if exported == 0 {
		return fmt.Errorf("session %s only has a log-format file, there is nothing to export", logicalID)
	}
	return nil
}
