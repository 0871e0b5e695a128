// Package export renders chat session files into readable Markdown. The
// session format is undocumented, so extraction is best effort: string values
// under well-known keys, in document order, deduplicated.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// isTextKey reports whether a field tends to carry conversation text.
func isTextKey(key string) bool {
	switch key {
	case "text", "value", "content", "message", "prompt", "response":
		return true
	}
	return false
}

// Markdown writes a best-effort transcript of a primary-format session file.
// The caller decides whether a failure is fatal; per-file errors usually are
// not.
func Markdown(sessionPath, outPath string) error {
	data, err := os.ReadFile(sessionPath)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("read session: %s is not valid JSON", sessionPath)
	}

	chunks := collectText(gjson.ParseBytes(data))

	var b strings.Builder
	b.WriteString("# Recovered Copilot chat\n\n")
	fmt.Fprintf(&b, "**File:** %s\n\n---\n\n", sessionPath)
	for _, chunk := range chunks {
		b.WriteString(chunk)
		b.WriteString("\n\n---\n\n")
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// collectText walks the whole document collecting string values under text
// keys. Non-string values under those keys are descended into like any other
// node.
func collectText(root gjson.Result) []string {
	seen := make(map[string]bool)
	var chunks []string

	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsObject():
			v.ForEach(func(key, val gjson.Result) bool {
				if isTextKey(key.Str) && val.Type == gjson.String {
					text := strings.TrimSpace(val.Str)
					if text != "" && !seen[text] {
						seen[text] = true
						chunks = append(chunks, text)
					}
					return true
				}
				walk(val)
				return true
			})
		case v.IsArray():
			v.ForEach(func(_, item gjson.Result) bool {
				walk(item)
				return true
			})
		}
	}
	walk(root)
	return chunks
}
