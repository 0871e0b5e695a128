// Package workspace locates the editor's workspaceStorage directories and
// finds the hash directories whose descriptor mentions a given workspace.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
)

// Well-known names inside a workspace-hash directory.
const (
	DescriptorName = "workspace.json"
	StoreName      = "state.vscdb"
	ChatDirName    = "chatSessions"
)

// Channels lists the editor release channels searched for workspace storage.
var Channels = []string{"Code", "Code - Insiders"}

var (
	ErrNoStorageRoot = errors.New("workspace: no workspace storage root found")
	ErrNoNeedles     = errors.New("workspace: no search needles provided")
)

// userConfigDir is replaceable in tests.
var userConfigDir = os.UserConfigDir

// DetectRoots returns the workspaceStorage roots of the installed editor
// channels. A non-empty channel restricts the search to that channel.
func DetectRoots(channel string) ([]models.ChannelRoot, error) {
	base, err := userConfigDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStorageRoot, err)
	}

	var roots []models.ChannelRoot
	for _, ch := range Channels {
		if channel != "" && !strings.EqualFold(ch, channel) {
			continue
		}
		root := filepath.Join(base, ch, "User", "workspaceStorage")
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, models.ChannelRoot{Channel: ch, Root: root})
		}
	}

	if len(roots) == 0 {
		if channel != "" {
			return nil, fmt.Errorf("%w: channel %q under %s", ErrNoStorageRoot, channel, base)
		}
		return nil, fmt.Errorf("%w: looked under %s", ErrNoStorageRoot, base)
	}
	return roots, nil
}

// FindCandidateHashes scans the immediate subdirectories of storageRoot and
// returns those whose workspace.json contains any needle as a literal,
// case-sensitive substring. Results are ordered most recently used first,
// judged by the state.vscdb modification time; hashes without a store sort
// last.
func FindCandidateHashes(storageRoot string, needles []string) ([]models.HashInfo, error) {
	var clean []string
	for _, n := range needles {
		if strings.TrimSpace(n) != "" {
			clean = append(clean, n)
		}
	}
	if len(clean) == 0 {
		return nil, ErrNoNeedles
	}

	entries, err := os.ReadDir(storageRoot)
	if err != nil {
		return nil, fmt.Errorf("read workspace storage: %w", err)
	}

	var hits []models.HashInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		descriptor := filepath.Join(storageRoot, entry.Name(), DescriptorName)
		data, err := os.ReadFile(descriptor)
		if err != nil {
			// No readable descriptor means the directory cannot be matched.
			continue
		}
		content := string(data)
		matched := false
		for _, n := range clean {
			if strings.Contains(content, n) {
				matched = true
				break
			}
		}
		if matched {
			hits = append(hits, Describe(storageRoot, entry.Name()))
		}
	}

	// ReadDir returns names sorted, so ties keep a stable hash order.
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i].StoreModTime, hits[j].StoreModTime
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return hits, nil
}

// Describe collects the layout facts for one workspace-hash directory.
func Describe(storageRoot, hash string) models.HashInfo {
	hashDir := filepath.Join(storageRoot, hash)
	info := models.HashInfo{
		Hash:           hash,
		Path:           hashDir,
		DescriptorPath: filepath.Join(hashDir, DescriptorName),
		StorePath:      filepath.Join(hashDir, StoreName),
		ChatDir:        filepath.Join(hashDir, ChatDirName),
	}

	if st, err := os.Stat(info.StorePath); err == nil {
		mt := st.ModTime()
		info.StoreModTime = &mt
	}
	if entries, err := os.ReadDir(info.ChatDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := strings.ToLower(e.Name())
			if strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".jsonl") {
				info.SessionCount++
			}
		}
	}
	return info
}
