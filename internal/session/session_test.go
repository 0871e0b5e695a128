package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

// writeSession creates a session file under a hash's chat directory with a
// controlled modification time.
func writeSession(t *testing.T, root, hash, name, content string, mtime time.Time) string {
	t.Helper()
	chatDir := filepath.Join(root, hash, workspace.ChatDirName)
	require.NoError(t, os.MkdirAll(chatDir, 0o755))
	path := filepath.Join(chatDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func TestParseMetadata(t *testing.T) {
	data := []byte(`{"sessionId":"alpha-1","customTitle":"Fix crash","title":"stored","creationDate":1700000000}`)

	meta, ok := ParseMetadata(data)
	require.True(t, ok)
	assert.Equal(t, "alpha-1", meta.SessionID)
	assert.Equal(t, "Fix crash", meta.Title)
	assert.Equal(t, int64(1700000000000), meta.CreatedAtMs, "second-resolution timestamps are promoted to ms")
}

func TestParseMetadata_TitlePreference(t *testing.T) {
	meta, ok := ParseMetadata([]byte(`{"customTitle":"  ","title":"stored","computedTitle":"derived"}`))
	require.True(t, ok)
	assert.Equal(t, "stored", meta.Title, "blank customTitle falls through to title")

	meta, ok = ParseMetadata([]byte(`{"computedTitle":"  derived  "}`))
	require.True(t, ok)
	assert.Equal(t, "derived", meta.Title)
}

func TestParseMetadata_MillisecondCreationDate(t *testing.T) {
	meta, ok := ParseMetadata([]byte(`{"creationDate":1700000000000}`))
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), meta.CreatedAtMs)
}

func TestParseMetadata_Malformed(t *testing.T) {
	for _, data := range []string{`{notjson`, `[1,2,3]`, `"plain"`, ``} {
		_, ok := ParseMetadata([]byte(data))
		assert.False(t, ok, "input %q should not parse", data)
	}
}

func TestParseMetadata_WrongTypes(t *testing.T) {
	meta, ok := ParseMetadata([]byte(`{"sessionId":42,"title":7,"creationDate":"soon"}`))
	require.True(t, ok)
	assert.Empty(t, meta.SessionID)
	assert.Empty(t, meta.Title)
	assert.Zero(t, meta.CreatedAtMs)
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, int64(1700000000000), NormalizeTimestamp(1700000000))
	assert.Equal(t, int64(1700000000000), NormalizeTimestamp(1700000000000))
}

func TestBuildInventory(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeSession(t, root, "hashA", "s1.json",
		`{"sessionId":"alpha","customTitle":"Fix crash","creationDate":1700000000}`, base)
	writeSession(t, root, "hashA", "s2.jsonl", `{"x":1}`, base.Add(10*time.Minute))
	writeSession(t, root, "hashA", "notes.txt", "skip me", base)
	writeSession(t, root, "hashB", "s3.json", `{"title":"Other"}`, base.Add(5*time.Minute))

	records := BuildInventory(root, []string{"hashA", "hashB", "hashMissing"})
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "s2", records[0].LogicalID)
	assert.Equal(t, "s3", records[1].LogicalID)
	assert.Equal(t, "alpha", records[2].LogicalID, "embedded sessionId overrides the filename stem")

	jsonl := records[0]
	assert.Equal(t, "jsonl", jsonl.Ext)
	assert.Empty(t, jsonl.Title, "alternate-format files are never parsed")

	parsed := records[2]
	assert.Equal(t, "hashA", parsed.SourceHash)
	assert.Equal(t, "s1.json", parsed.FileName)
	assert.Equal(t, "Fix crash", parsed.Title)
	assert.Equal(t, time.UnixMilli(1700000000000), parsed.CreatedAt)
	assert.Equal(t, base, parsed.UpdatedAt.Truncate(time.Second))
}

func TestBuildInventory_MalformedFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	mtime := time.Now().Add(-time.Minute)
	writeSession(t, root, "hashA", "broken.json", `{definitely not json`, mtime)

	records := BuildInventory(root, []string{"hashA"})
	require.Len(t, records, 1)
	assert.Equal(t, "broken", records[0].LogicalID)
	assert.Empty(t, records[0].Title)
}

func TestBuildTargetMap(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeSession(t, root, "target", "s1.json", `{"sessionId":"alpha"}`, base)
	writeSession(t, root, "target", "s2.jsonl", ``, base.Add(time.Minute))
	writeSession(t, root, "target", "skip.txt", ``, base)

	m := BuildTargetMap(root, "target")
	require.Len(t, m, 2)
	assert.Equal(t, base, m["alpha"].Truncate(time.Second))
	assert.Equal(t, base.Add(time.Minute), m["s2"].Truncate(time.Second))
}

func TestBuildTargetMap_DuplicateLogicalID(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeSession(t, root, "target", "a.json", `{"sessionId":"dup"}`, base)
	writeSession(t, root, "target", "b.json", `{"sessionId":"dup"}`, base.Add(time.Minute))

	m := BuildTargetMap(root, "target")
	require.Len(t, m, 1)
	assert.Equal(t, base.Add(time.Minute), m["dup"].Truncate(time.Second), "the later file wins")
}

func TestBuildTargetMap_MissingDir(t *testing.T) {
	m := BuildTargetMap(t.TempDir(), "nothing")
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestClassify(t *testing.T) {
	now := time.Now()
	target := map[string]time.Time{
		"known": now,
	}

	missing := models.SessionRecord{LogicalID: "unknown", UpdatedAt: now}
	assert.Equal(t, models.CopyStatusMissingInTarget, Classify(missing, target))

	newer := models.SessionRecord{LogicalID: "known", UpdatedAt: now.Add(time.Second)}
	assert.Equal(t, models.CopyStatusNewerInSource, Classify(newer, target))

	tied := models.SessionRecord{LogicalID: "known", UpdatedAt: now}
	assert.Equal(t, models.CopyStatusAlreadyInTarget, Classify(tied, target), "ties favor the target")

	older := models.SessionRecord{LogicalID: "known", UpdatedAt: now.Add(-time.Second)}
	assert.Equal(t, models.CopyStatusAlreadyInTarget, Classify(older, target))
}

func TestDefaultSelection(t *testing.T) {
	rows := []models.ClassifiedSession{
		{Status: models.CopyStatusMissingInTarget},
		{Status: models.CopyStatusAlreadyInTarget},
		{Status: models.CopyStatusNewerInSource},
		{Status: models.CopyStatusAlreadyInTarget},
	}
	assert.Equal(t, []int{0, 2}, DefaultSelection(rows))
}

func TestFindSessionFiles(t *testing.T) {
	root := t.TempDir()
	mtime := time.Now().Add(-time.Minute)
	writeSession(t, root, "hashA", "abc.json", `{"sessionId":"abc"}`, mtime)
	writeSession(t, root, "hashA", "abc.jsonl", ``, mtime)

	matches, err := FindSessionFiles(root, "hashA", "abc")
	require.NoError(t, err)
	assert.Len(t, matches, 2, "both formats of the session are returned")

	_, err = FindSessionFiles(root, "hashA", "missing")
	assert.ErrorIs(t, err, ErrNoSessions)
}
