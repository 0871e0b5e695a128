package models

import "time"

// CopyStatus is the copy decision for a source session measured against the
// sessions already present in the target hash.
type CopyStatus string

const (
	CopyStatusMissingInTarget CopyStatus = "MissingInTarget"
	CopyStatusNewerInSource   CopyStatus = "NewerInSource"
	CopyStatusAlreadyInTarget CopyStatus = "AlreadyInTarget"
)

// SessionRecord describes one chat session file found under a workspace hash.
// LogicalID is the editor-visible session identity; Path and FileName identify
// the physical file, which may carry a different name on disk.
type SessionRecord struct {
	SourceHash string
	Path       string
	FileName   string
	Ext        string // "json" or "jsonl"
	LogicalID  string
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ClassifiedSession pairs a session record with its copy decision.
type ClassifiedSession struct {
	SessionRecord
	Status CopyStatus
}
