package models

// IndexEntry is one session's row in the chat session index document. The
// field names and types are dictated by the editor's reader.
type IndexEntry struct {
	SessionID       string `json:"sessionId"`
	Title           string `json:"title"`
	LastMessageDate int64  `json:"lastMessageDate"` // unix milliseconds
	IsEmpty         bool   `json:"isEmpty"`
	IsExternal      bool   `json:"isExternal"`
}

// IndexDocument is the JSON value stored under the chat session index key in
// state.vscdb, keyed by logical session id.
type IndexDocument struct {
	Version int                   `json:"version"`
	Entries map[string]IndexEntry `json:"entries"`
}
