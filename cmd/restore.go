package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/export"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/restore"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/session"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/tui"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/vscdb"
)

var (
	restoreNeedles    []string
	restoreSource     string
	restoreTarget     string
	restoreSession    string
	restoreSkipBackup bool
	restoreBackupDir  string
	restoreExportMD   bool
	restoreReindex    bool
	restoreYes        bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore [workspace]",
	Short: "Copy sessions into the target hash without the wizard",
	Long: `Non-interactive restore for scripting. Matching hashes are found the same
way the wizard finds them; the target defaults to the most recently used
hash and the sources to every other matching hash that has sessions.

By default the sessions missing from the target plus the ones whose source
copy is newer are copied. Use --session to copy one session regardless.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 1 {
			input = args[0]
		}
		return restoreRun(input)
	},
}

func init() {
	restoreCmd.Flags().StringArrayVar(&restoreNeedles, "needle", nil, "Extra keyword to search for in workspace.json (repeatable)")
	restoreCmd.Flags().StringVar(&restoreSource, "source", "", "Copy only from this source hash")
	restoreCmd.Flags().StringVar(&restoreTarget, "target", "", "Target hash (default: most recently used match)")
	restoreCmd.Flags().StringVar(&restoreSession, "session", "", "Copy only this session id")
	restoreCmd.Flags().BoolVar(&restoreSkipBackup, "skip-backup", false, "Skip the automatic backups (not recommended)")
	restoreCmd.Flags().StringVar(&restoreBackupDir, "backup-dir", "", "Backup directory (default from config)")
	restoreCmd.Flags().BoolVar(&restoreExportMD, "export-md", false, "Export copied sessions to Markdown in the current directory")
	restoreCmd.Flags().BoolVar(&restoreReindex, "reindex", false, "Rebuild the chat index in state.vscdb after copying")
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(restoreCmd)
}

func restoreRun(input string) error {
	if input == "" && len(restoreNeedles) == 0 {
		return fmt.Errorf("provide a workspace path or at least one --needle")
	}

	root, err := singleRoot()
	if err != nil {
		return err
	}
	storageRoot := root.Root

	label, hits, err := buildCandidates(storageRoot, input, restoreNeedles)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		return fmt.Errorf("no hash directories matched: try --needle with a folder name")
	}

	ui.Info("%s", label)
	renderHashTable(hits)

	targetHash := restoreTarget
	if targetHash == "" {
		targetHash = hits[0].Hash
	}
	if _, err := os.Stat(filepath.Join(storageRoot, targetHash)); err != nil {
		return fmt.Errorf("target hash not found under %s: %s", storageRoot, targetHash)
	}

	var sources []string
	if restoreSource != "" {
		if restoreSource == targetHash {
			return fmt.Errorf("source and target are the same hash: %s", restoreSource)
		}
		sources = []string{restoreSource}
	} else {
		for _, h := range hits {
			if h.Hash != targetHash && h.SessionCount > 0 {
				sources = append(sources, h.Hash)
			}
		}
	}
	if len(sources) == 0 {
		ui.Info("No source hashes with chat sessions to copy from")
		return nil
	}

	records := session.BuildInventory(storageRoot, sources)
	if restoreSession != "" {
		records = filterByLogicalID(records, restoreSession)
		if len(records) == 0 {
			return fmt.Errorf("%w: %s", session.ErrNoSessions, restoreSession)
		}
	}
	if len(records) == 0 {
		ui.Info("No chat sessions found in the source hashes")
		return nil
	}

	rows := session.ClassifyAll(records, session.BuildTargetMap(storageRoot, targetHash))
	renderClassifiedTable(rows)

	// An explicit --session is copied no matter how it classifies; otherwise
	// the default selection applies.
	var selected []models.SessionRecord
	if restoreSession != "" {
		for _, row := range rows {
			selected = append(selected, row.SessionRecord)
		}
	} else {
		for _, i := range session.DefaultSelection(rows) {
			selected = append(selected, rows[i].SessionRecord)
		}
	}
	if len(selected) == 0 {
		ui.Success("Nothing to copy: the target already has every session")
		return nil
	}

	if dryRun {
		ui.DryRunMsg("Would copy %d session files into %s", len(selected), targetHash)
		for _, rec := range selected {
			ui.DryRunMsg("  %s.%s from %s", rec.LogicalID, rec.Ext, rec.SourceHash)
		}
		return nil
	}

	if !restoreYes {
		ok, err := tui.Confirm(fmt.Sprintf("Copy %d session files into %s?", len(selected), targetHash), true)
		if err != nil {
			return err
		}
		if !ok {
			ui.Info("Canceled")
			return nil
		}
	}

	if !restoreSkipBackup {
		hashes := append([]string{targetHash}, sourceHashes(selected)...)
		if err := backupHashes(storageRoot, hashes, resolveBackupDir(restoreBackupDir)); err != nil {
			return err
		}
	}

	return performRestore(storageRoot, selected, targetHash, restoreOptions{
		exportMD: restoreExportMD,
		reindex:  restoreReindex,
	})
}

type restoreOptions struct {
	exportMD bool
	reindex  bool
}

// performRestore copies the selected sessions and runs the optional
// after-steps. Backups are the caller's responsibility and must already
// have happened.
func performRestore(storageRoot string, selected []models.SessionRecord, targetHash string, opts restoreOptions) error {
	copied, err := restore.MergeSessions(storageRoot, selected, targetHash)
	if err != nil {
		return err
	}
	for _, dest := range copied {
		ui.VerboseLog("copied %s", dest)
	}
	ui.Success("Copied %d session files into %s", len(copied), targetHash)

	if opts.exportMD {
		exportSelected(selected)
	}

	if opts.reindex {
		doc, backupPath, err := vscdb.Rebuild(context.Background(), storageRoot, targetHash)
		if err != nil {
			return err
		}
		ui.Info("State db backup: %s", backupPath)
		ui.Success("Rebuilt the chat index with %d entries", len(doc.Entries))
	}
	return nil
}

func backupHashes(storageRoot string, hashes []string, backupDir string) error {
	for _, hash := range hashes {
		dest, err := restore.BackupHashDir(storageRoot, hash, backupDir)
		if err != nil {
			return err
		}
		ui.Info("Backed up %s to %s", hash, dest)
	}
	return nil
}

// sourceHashes returns the distinct source hashes of the selection, in
// first-seen order.
func sourceHashes(selected []models.SessionRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range selected {
		if !seen[rec.SourceHash] {
			seen[rec.SourceHash] = true
			out = append(out, rec.SourceHash)
		}
	}
	return out
}

func exportSelected(selected []models.SessionRecord) {
	outDir, err := os.Getwd()
	if err != nil {
		outDir = "."
	}
	for _, rec := range selected {
		if rec.Ext != "json" {
			continue
		}
		outPath := filepath.Join(outDir, rec.LogicalID+".recovered.md")
		if err := export.Markdown(rec.Path, outPath); err != nil {
			ui.Warning("Could not export %s: %v", rec.FileName, err)
			continue
		}
		ui.Success("Exported %s", outPath)
	}
}

func filterByLogicalID(records []models.SessionRecord, id string) []models.SessionRecord {
	var out []models.SessionRecord
	for _, rec := range records {
		if rec.LogicalID == id {
			out = append(out, rec)
		}
	}
	return out
}
