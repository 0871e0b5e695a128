package cmd

import (
	"errors"
	"fmt"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/session"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/tui"
)

var (
	wizardWorkspace  string
	wizardNeedles    []string
	wizardSkipBackup bool
	wizardExportMD   bool
	wizardReindex    bool
)

func init() {
	rootCmd.Flags().StringVar(&wizardWorkspace, "workspace", "", "Path to the .code-workspace file or project folder")
	rootCmd.Flags().StringArrayVar(&wizardNeedles, "needle", nil, "Extra keyword to search for in workspace.json (repeatable)")
	rootCmd.Flags().BoolVar(&wizardSkipBackup, "skip-backup", false, "Skip the automatic backups (not recommended)")
	rootCmd.Flags().BoolVar(&wizardExportMD, "export-md", false, "Export copied sessions to Markdown in the current directory")
	rootCmd.Flags().BoolVar(&wizardReindex, "reindex", false, "Rebuild the chat index in state.vscdb without asking")
}

// wizardRun drives the interactive flow behind a bare `vscsr`.
func wizardRun(args []string) error {
	roots, err := resolveRoots()
	if err != nil {
		return err
	}

	root := roots[0]
	if len(roots) > 1 {
		items := make([]string, len(roots))
		for i, r := range roots {
			items[i] = fmt.Sprintf("%s  (%s)", r.Channel, r.Root)
		}
		idx, err := tui.Select("Pick an editor channel", items, 0)
		if err != nil {
			return wizardCanceled(err)
		}
		root = roots[idx]
	}
	storageRoot := root.Root

	ui.Info("workspaceStorage: %s", storageRoot)
	ui.Warning("Close the editor before copying or reindexing, it keeps these files open")

	input := wizardWorkspace
	if input == "" && len(args) == 1 {
		input = args[0]
	}
	if input == "" && len(wizardNeedles) == 0 {
		input, err = tui.PathInput("Paste the .code-workspace path or the project folder", "~/projects/app")
		if err != nil {
			return wizardCanceled(err)
		}
		if input == "" {
			ui.Info("Canceled")
			return nil
		}
	}

	extra := append([]string(nil), wizardNeedles...)
	label, hits, err := buildCandidates(storageRoot, input, extra)
	if err != nil {
		return err
	}
	ui.Info("%s", label)

	if len(hits) == 0 {
		// One retry with an extra keyword, the descriptor often stores the
		// path in a shape the variants miss.
		ui.Warning("No workspace.json under %s mentions that workspace", storageRoot)
		keyword, err := tui.PathInput("Extra keyword to search for (empty cancels)", "folder name")
		if err != nil {
			return wizardCanceled(err)
		}
		if keyword == "" {
			ui.Info("Canceled")
			return nil
		}
		extra = append(extra, keyword)
		if _, hits, err = buildCandidates(storageRoot, input, extra); err != nil {
			return err
		}
		if len(hits) == 0 {
			return fmt.Errorf("no hash directories matched: try a folder name from inside the workspace")
		}
	}

	renderHashTable(hits)

	items := make([]string, len(hits))
	for i, h := range hits {
		items[i] = fmt.Sprintf("%s  %s  %d sessions", h.Hash, fmtStoreTime(h.StoreModTime), h.SessionCount)
	}
	idx, err := tui.Select("Pick the TARGET hash (the one the editor uses now)", items, 0)
	if err != nil {
		return wizardCanceled(err)
	}
	targetHash := hits[idx].Hash

	var sources []string
	for _, h := range hits {
		if h.Hash != targetHash && h.SessionCount > 0 {
			sources = append(sources, h.Hash)
		}
	}
	if len(sources) == 0 {
		ui.Info("No other hash has chat sessions, nothing to recover")
		return nil
	}

	records := session.BuildInventory(storageRoot, sources)
	if len(records) == 0 {
		ui.Info("No chat sessions found in the source hashes")
		return nil
	}

	rows := session.ClassifyAll(records, session.BuildTargetMap(storageRoot, targetHash))
	renderClassifiedTable(rows)
	defaultSel := session.DefaultSelection(rows)

	if dryRun {
		if len(defaultSel) == 0 {
			ui.Info("Nothing to copy: the target already has every session")
			return nil
		}
		ui.DryRunMsg("Would copy %d session files into %s", len(defaultSel), targetHash)
		for _, i := range defaultSel {
			ui.DryRunMsg("  %s.%s from %s", rows[i].LogicalID, rows[i].Ext, rows[i].SourceHash)
		}
		return nil
	}

	if !wizardSkipBackup {
		hashes := append([]string{targetHash}, sources...)
		if err := backupHashes(storageRoot, hashes, resolveBackupDir("")); err != nil {
			return err
		}
	}

	rowLabels := make([]string, len(rows))
	for i, row := range rows {
		rowLabels[i] = fmt.Sprintf("%-16s %s  %s  %s", row.Status, fmtTime(row.UpdatedAt), row.LogicalID, truncTitle(row.Title))
	}
	sel, err := tui.MultiSelect("Pick the sessions to copy", rowLabels, defaultSel)
	if err != nil {
		return wizardCanceled(err)
	}
	if len(sel) == 0 {
		ui.Info("Nothing selected")
		return nil
	}
	selected := make([]models.SessionRecord, 0, len(sel))
	for _, i := range sel {
		selected = append(selected, rows[i].SessionRecord)
	}

	doReindex := wizardReindex
	if !doReindex {
		doReindex, err = tui.Confirm("Rebuild the chat index in state.vscdb afterwards?", false)
		if err != nil {
			return wizardCanceled(err)
		}
	}

	err = performRestore(storageRoot, selected, targetHash, restoreOptions{
		exportMD: wizardExportMD,
		reindex:  doReindex,
	})
	if err != nil {
		return err
	}

	ui.Success("Done. Reopen the workspace and check the chat history")
	return nil
}

// wizardCanceled turns a quit keypress into a quiet exit.
func wizardCanceled(err error) error {
	if errors.Is(err, tui.ErrCanceled) {
		ui.Info("Canceled")
		return nil
	}
	return err
}
