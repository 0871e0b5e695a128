package cmd

import (
	"github.com/spf13/cobra"
)

var backupDirFlag string

var backupCmd = &cobra.Command{
	Use:   "backup <hash>...",
	Short: "Back up workspace hash directories",
	Long: `Copy the given hash directories into timestamped backups. The wizard and
restore do this on their own; this command is for backing up by hand before
experimenting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return backupRun(args)
	},
}

func init() {
	backupCmd.Flags().StringVar(&backupDirFlag, "backup-dir", "", "Backup directory (default from config)")
	rootCmd.AddCommand(backupCmd)
}

func backupRun(hashes []string) error {
	root, err := singleRoot()
	if err != nil {
		return err
	}

	dir := resolveBackupDir(backupDirFlag)
	if dryRun {
		for _, hash := range hashes {
			ui.DryRunMsg("Would back up %s into %s", hash, dir)
		}
		return nil
	}

	return backupHashes(root.Root, hashes, dir)
}
