package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/output"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/session"
)

var (
	sessionsTarget  string
	sessionsNeedles []string
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [workspace]",
	Short: "Inventory chat sessions across matching hashes",
	Long: `List every chat session found under the hash directories that match the
given workspace. With --target, sessions from the other hashes are compared
against the target hash and marked MissingInTarget, NewerInSource, or
AlreadyInTarget.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		return sessionsRun(input)
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsTarget, "target", "", "Hash to compare sessions against")
	sessionsCmd.Flags().StringArrayVar(&sessionsNeedles, "needle", nil, "Extra keyword to search for in workspace.json (repeatable)")
	rootCmd.AddCommand(sessionsCmd)
}

func sessionsRun(input string) error {
	if input == "" && len(sessionsNeedles) == 0 {
		return fmt.Errorf("provide a workspace path or at least one --needle")
	}

	root, err := singleRoot()
	if err != nil {
		return err
	}

	label, hits, err := buildCandidates(root.Root, input, sessionsNeedles)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no hash directories matched: try --needle with a folder name")
	}

	ui.Info("%s", label)
	renderHashTable(hits)

	var sources []string
	for _, h := range hits {
		if h.Hash != sessionsTarget {
			sources = append(sources, h.Hash)
		}
	}

	records := session.BuildInventory(root.Root, sources)
	if len(records) == 0 {
		ui.Info("No chat sessions found")
		return nil
	}

	if sessionsTarget == "" {
		table := ui.Table([]string{"Updated", "Session", "Hash", "Title"})
		for _, rec := range records {
			table.Append([]string{
				fmtTime(rec.UpdatedAt),
				rec.LogicalID,
				rec.SourceHash,
				truncTitle(rec.Title),
			})
		}
		table.Render()
		return nil
	}

	rows := session.ClassifyAll(records, session.BuildTargetMap(root.Root, sessionsTarget))
	renderClassifiedTable(rows)

	sel := session.DefaultSelection(rows)
	ui.Info("%d of %d sessions would be copied by default", len(sel), len(rows))
	return nil
}

func renderClassifiedTable(rows []models.ClassifiedSession) {
	table := ui.Table([]string{"Decision", "Updated", "Session", "Hash", "Title"})
	for _, row := range rows {
		table.Append([]string{
			output.StatusColor(row.Status),
			fmtTime(row.UpdatedAt),
			row.LogicalID,
			row.SourceHash,
			truncTitle(row.Title),
		})
	}
	table.Render()
}
