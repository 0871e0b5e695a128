package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/output"
)

var scanNeedles []string

var scanCmd = &cobra.Command{
	Use:   "scan [workspace]",
	Short: "List workspace hashes whose descriptor matches a workspace",
	Long: `Scan workspaceStorage for hash directories whose workspace.json mentions
the given workspace path (or the extra keywords). Hashes are ordered by
state.vscdb modification time, most recently used first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		return scanRun(input)
	},
}

func init() {
	scanCmd.Flags().StringArrayVar(&scanNeedles, "needle", nil, "Extra keyword to search for in workspace.json (repeatable)")
	rootCmd.AddCommand(scanCmd)
}

func scanRun(input string) error {
	if input == "" && len(scanNeedles) == 0 {
		return fmt.Errorf("provide a workspace path or at least one --needle")
	}

	roots, err := resolveRoots()
	if err != nil {
		return err
	}

	found := 0
	for _, root := range roots {
		label, hits, err := buildCandidates(root.Root, input, scanNeedles)
		if err != nil {
			return err
		}

		ui.Info("%s: %s", root.Channel, label)
		ui.VerboseLog("storage root %s", root.Root)
		if len(hits) == 0 {
			ui.Warning("No matching hashes under %s", root.Root)
			continue
		}

		renderHashTable(hits)
		found += len(hits)
	}

	if found == 0 {
		return fmt.Errorf("no hash directories matched: try --needle with a folder name")
	}
	return nil
}

func renderHashTable(hits []models.HashInfo) {
	table := ui.Table([]string{"Hash", "Last Used", "Sessions"})
	for _, h := range hits {
		table.Append([]string{
			output.Cyan(h.Hash),
			fmtStoreTime(h.StoreModTime),
			fmt.Sprintf("%d", h.SessionCount),
		})
	}
	table.Render()
}
