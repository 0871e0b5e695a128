package models

import "time"

// ChannelRoot is an installed editor release channel and its workspaceStorage
// directory.
type ChannelRoot struct {
	Channel string
	Root    string
}

// HashInfo describes one workspace-hash directory under workspaceStorage.
type HashInfo struct {
	Hash           string
	Path           string
	DescriptorPath string
	StorePath      string
	StoreModTime   *time.Time // nil when state.vscdb is absent
	ChatDir        string
	SessionCount   int
}
