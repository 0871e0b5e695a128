package vscdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/session"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

const (
	defaultTitle = "New Chat"
	backupStamp  = "20060102-150405"
)

// Epoch-millisecond bounds for timestamp mining, 2000 through 2100. Numbers
// outside the window are counters or sizes, not dates.
const (
	minEpochMs = 946_684_800_000
	maxEpochMs = 4_102_444_800_000
)

// BuildIndex scans a chat sessions directory into a fresh index document.
// Primary-format files contribute identity, title, and emptiness; alternate
// files whose session is not already indexed get a placeholder entry. A file
// that fails to parse still gets an entry built from filesystem facts alone.
func BuildIndex(chatDir string) (*models.IndexDocument, error) {
	entries, err := os.ReadDir(chatDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrChatDirMissing, chatDir)
	}

	doc := &models.IndexDocument{
		Version: 1,
		Entries: make(map[string]models.IndexEntry),
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasExt(entry.Name(), ".json") {
			continue
		}
		id, indexed := primaryEntry(chatDir, entry)
		doc.Entries[id] = indexed
	}

	for _, entry := range entries {
		if entry.IsDir() || !hasExt(entry.Name(), ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if _, ok := doc.Entries[id]; ok {
			continue
		}
		doc.Entries[id] = models.IndexEntry{
			SessionID:       id,
			Title:           defaultTitle,
			LastMessageDate: entryMtimeMs(entry),
			IsEmpty:         false,
			IsExternal:      false,
		}
	}

	return doc, nil
}

// primaryEntry builds the index entry for one primary-format session file.
func primaryEntry(chatDir string, entry os.DirEntry) (string, models.IndexEntry) {
	id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
	title := defaultTitle
	isEmpty := false
	lastMs := entryMtimeMs(entry)

	if data, err := os.ReadFile(filepath.Join(chatDir, entry.Name())); err == nil && gjson.ValidBytes(data) {
		root := gjson.ParseBytes(data)
		if root.IsObject() {
			if meta, ok := session.ParseMetadata(data); ok {
				if meta.SessionID != "" {
					id = meta.SessionID
				}
				if meta.Title != "" {
					title = meta.Title
				}
			}
			if reqs := root.Get("requests"); reqs.IsArray() {
				isEmpty = len(reqs.Array()) == 0
			}
			if mined := latestMessageMs(root); mined > lastMs {
				lastMs = mined
			}
		}
	}

	return id, models.IndexEntry{
		SessionID:       id,
		Title:           title,
		LastMessageDate: lastMs,
		IsEmpty:         isEmpty,
		IsExternal:      false,
	}
}

// latestMessageMs mines the newest timestamp carried by the session content:
// the creation date plus any request field whose numeric value falls in the
// epoch-millisecond window after normalization.
func latestMessageMs(root gjson.Result) int64 {
	var latest int64
	consider := func(v gjson.Result) {
		if v.Type != gjson.Number {
			return
		}
		ms := session.NormalizeTimestamp(int64(v.Num))
		if ms >= minEpochMs && ms < maxEpochMs && ms > latest {
			latest = ms
		}
	}

	consider(root.Get("creationDate"))
	root.Get("requests").ForEach(func(_, req gjson.Result) bool {
		req.ForEach(func(_, field gjson.Result) bool {
			consider(field)
			return true
		})
		return true
	})
	return latest
}

// Rebuild regenerates the chat index for one workspace hash and writes it
// under ChatIndexKey. The store file is always backed up first; a failed
// backup aborts before anything is written. The fresh document and the
// backup location are returned.
func Rebuild(ctx context.Context, storageRoot, targetHash string) (*models.IndexDocument, string, error) {
	hashDir := filepath.Join(storageRoot, targetHash)
	storePath := filepath.Join(hashDir, workspace.StoreName)
	chatDir := filepath.Join(hashDir, workspace.ChatDirName)

	if _, err := os.Stat(storePath); err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrStoreMissing, storePath)
	}
	if info, err := os.Stat(chatDir); err != nil || !info.IsDir() {
		return nil, "", fmt.Errorf("%w: %s", ErrChatDirMissing, chatDir)
	}

	backupPath, err := backupStore(storePath)
	if err != nil {
		return nil, "", fmt.Errorf("backup state db: %w", err)
	}

	doc, err := BuildIndex(chatDir)
	if err != nil {
		return nil, "", err
	}
	value, err := json.Marshal(doc)
	if err != nil {
		return nil, "", fmt.Errorf("encode index: %w", err)
	}

	store, err := Open(storePath)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	if err := store.UpsertItem(ctx, ChatIndexKey, string(value)); err != nil {
		return nil, "", err
	}
	return doc, backupPath, nil
}

// backupStore copies the store file to a timestamped sibling.
func backupStore(path string) (string, error) {
	backup := path + ".bak-" + time.Now().Format(backupStamp)
	if err := copyFile(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}

func entryMtimeMs(entry os.DirEntry) int64 {
	info, err := entry.Info()
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMilli()
}
