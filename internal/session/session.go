// Package session builds inventories of chat session files and decides which
// ones are worth copying into a target workspace hash.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

var ErrNoSessions = errors.New("session: no matching session files")

// Metadata holds the fields mined from a primary-format session file.
type Metadata struct {
	SessionID   string
	Title       string
	CreatedAtMs int64 // 0 when absent
}

// titleKeys in preference order. customTitle is a user rename and wins over
// the stored and derived titles.
var titleKeys = []string{"customTitle", "title", "computedTitle"}

// ParseMetadata extracts best-effort metadata from primary-format session
// bytes. It never fails: malformed input reports ok=false and the caller
// keeps its filename-derived defaults.
func ParseMetadata(data []byte) (meta Metadata, ok bool) {
	if !gjson.ValidBytes(data) {
		return Metadata{}, false
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Metadata{}, false
	}

	if sid := root.Get("sessionId"); sid.Type == gjson.String && sid.Str != "" {
		meta.SessionID = sid.Str
	}
	for _, key := range titleKeys {
		if v := root.Get(key); v.Type == gjson.String {
			if title := strings.TrimSpace(v.Str); title != "" {
				meta.Title = title
				break
			}
		}
	}
	if cd := root.Get("creationDate"); cd.Type == gjson.Number {
		meta.CreatedAtMs = NormalizeTimestamp(int64(cd.Num))
	}
	return meta, true
}

// NormalizeTimestamp converts second-resolution unix timestamps to
// milliseconds. Values at or above 10^10 are already milliseconds.
func NormalizeTimestamp(ts int64) int64 {
	if ts < 10_000_000_000 {
		return ts * 1000
	}
	return ts
}

// BuildInventory lists the session files under the given source hashes,
// newest first. Hashes without a chat directory contribute nothing. Only the
// primary .json format is parsed for identity and title; .jsonl files keep
// their filename-derived defaults.
func BuildInventory(storageRoot string, hashes []string) []models.SessionRecord {
	var records []models.SessionRecord
	for _, hash := range hashes {
		chatDir := filepath.Join(storageRoot, hash, workspace.ChatDirName)
		entries, err := os.ReadDir(chatDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := normalizedExt(entry.Name())
			if ext == "" {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}

			path := filepath.Join(chatDir, entry.Name())
			rec := models.SessionRecord{
				SourceHash: hash,
				Path:       path,
				FileName:   entry.Name(),
				Ext:        ext,
				LogicalID:  stem(entry.Name()),
				// Creation time is not portably available, so the
				// modification time stands in until the content says better.
				CreatedAt: info.ModTime(),
				UpdatedAt: info.ModTime(),
			}
			if ext == "json" {
				applyMetadata(&rec, path)
			}
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records
}

func applyMetadata(rec *models.SessionRecord, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	meta, ok := ParseMetadata(data)
	if !ok {
		return
	}
	if meta.SessionID != "" {
		rec.LogicalID = meta.SessionID
	}
	if meta.Title != "" {
		rec.Title = meta.Title
	}
	if meta.CreatedAtMs > 0 {
		rec.CreatedAt = time.UnixMilli(meta.CreatedAtMs)
	}
}

// BuildTargetMap indexes the target hash's sessions by logical id, mapping to
// each file's modification time. An absent chat directory yields an empty
// map. When two files resolve to the same logical id the later one wins.
func BuildTargetMap(storageRoot, targetHash string) map[string]time.Time {
	m := make(map[string]time.Time)
	chatDir := filepath.Join(storageRoot, targetHash, workspace.ChatDirName)
	entries, err := os.ReadDir(chatDir)
	if err != nil {
		return m
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := normalizedExt(entry.Name())
		if ext == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		id := stem(entry.Name())
		if ext == "json" {
			if data, err := os.ReadFile(filepath.Join(chatDir, entry.Name())); err == nil {
				if meta, ok := ParseMetadata(data); ok && meta.SessionID != "" {
					id = meta.SessionID
				}
			}
		}
		m[id] = info.ModTime()
	}
	return m
}

// Classify decides whether a source session should be copied into the target.
// A session present in both places counts as AlreadyInTarget unless the
// source copy is strictly newer.
func Classify(rec models.SessionRecord, target map[string]time.Time) models.CopyStatus {
	updated, ok := target[rec.LogicalID]
	if !ok {
		return models.CopyStatusMissingInTarget
	}
	if rec.UpdatedAt.After(updated) {
		return models.CopyStatusNewerInSource
	}
	return models.CopyStatusAlreadyInTarget
}

// ClassifyAll pairs every record with its copy decision, keeping order.
func ClassifyAll(records []models.SessionRecord, target map[string]time.Time) []models.ClassifiedSession {
	rows := make([]models.ClassifiedSession, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.ClassifiedSession{
			SessionRecord: rec,
			Status:        Classify(rec, target),
		})
	}
	return rows
}

// DefaultSelection returns the indices of the rows worth copying: everything
// missing from the target plus everything strictly newer in the source.
func DefaultSelection(rows []models.ClassifiedSession) []int {
	var selected []int
	for i, row := range rows {
		if row.Status != models.CopyStatusAlreadyInTarget {
			selected = append(selected, i)
		}
	}
	return selected
}

// FindSessionFiles resolves a logical id to its session files under one
// source hash. Both the primary and alternate formats of the session are
// returned when present.
func FindSessionFiles(storageRoot, sourceHash, logicalID string) ([]models.SessionRecord, error) {
	var matches []models.SessionRecord
	for _, rec := range BuildInventory(storageRoot, []string{sourceHash}) {
		if rec.LogicalID == logicalID {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s under hash %s", ErrNoSessions, logicalID, sourceHash)
	}
	return matches, nil
}

// normalizedExt reports "json" or "jsonl" for recognized session files and ""
// for everything else.
func normalizedExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".jsonl":
		return "jsonl"
	}
	return ""
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
