// Package restore copies chat session files between workspace hashes and
// takes the directory backups that precede any mutation.
package restore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

// BackupStamp is the timestamp layout used in backup names.
const BackupStamp = "20060102-150405"

var ErrHashMissing = errors.New("restore: workspace hash directory not found")

// MergeSessions copies the selected session files into the target hash's
// chat directory, creating it if needed. Files are copied under their
// original names, same-named files in the target are overwritten, and the
// sources are never modified. The destination paths written are returned; on
// error the list covers the copies that finished.
func MergeSessions(storageRoot string, selected []models.SessionRecord, targetHash string) ([]string, error) {
	targetChat := filepath.Join(storageRoot, targetHash, workspace.ChatDirName)
	if err := os.MkdirAll(targetChat, 0o755); err != nil {
		return nil, fmt.Errorf("create chat dir: %w", err)
	}

	copied := make([]string, 0, len(selected))
	for _, rec := range selected {
		dest := filepath.Join(targetChat, rec.FileName)
		if err := copyFile(rec.Path, dest); err != nil {
			return copied, fmt.Errorf("copy %s: %w", rec.FileName, err)
		}
		copied = append(copied, dest)
	}
	return copied, nil
}

// BackupHashDir copies a whole workspace-hash directory into backupRoot
// under a timestamped name. Nothing in the source is touched.
func BackupHashDir(storageRoot, hash, backupRoot string) (string, error) {
	src := filepath.Join(storageRoot, hash)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrHashMissing, src)
	}

	dest := filepath.Join(backupRoot, "workspaceStorage_"+hash+"_"+time.Now().Format(BackupStamp))
	if err := copyTree(src, dest); err != nil {
		return "", fmt.Errorf("backup hash %s: %w", hash, err)
	}
	return dest, nil
}

// copyFile copies src to dst, truncating dst if it exists. The source's
// modification time is carried over so later copy decisions still compare
// the same instants.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
