package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/vscdb"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex <hash>",
	Short: "Rebuild the chat session index in state.vscdb",
	Long: `Rebuild the chat session index of the given hash from the session files on
disk. The editor only lists sessions present in the index, so copied files
stay invisible until this runs.

The state.vscdb is backed up next to itself before anything is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return reindexRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func reindexRun(hash string) error {
	root, err := singleRoot()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would rebuild the chat index of hash %s", hash)
		return nil
	}

	doc, backupPath, err := vscdb.Rebuild(context.Background(), root.Root, hash)
	if err != nil {
		return err
	}

	ui.Info("State db backup: %s", backupPath)
	ui.Success("Wrote %s with %d entries", vscdb.ChatIndexKey, len(doc.Entries))
	return nil
}
