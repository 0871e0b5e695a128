package workspace

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// ResolveInput normalizes a pasted workspace path: surrounding quotes are
// trimmed, ~ is expanded, and the result is made absolute.
func ResolveInput(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	if s == "~" || strings.HasPrefix(s, "~/") || strings.HasPrefix(s, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, s[1:])
		}
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return filepath.Clean(s)
	}
	return abs
}

// BuildNeedles derives the descriptor search strings for a resolved workspace
// input: the path itself, its slash-normalized form, its file URI, and the
// lowercased URI. A .code-workspace file also contributes the folders listed
// inside it, and paths that do not exist are searched verbatim.
func BuildNeedles(resolved string) (label string, needles []string) {
	info, err := os.Stat(resolved)
	switch {
	case err == nil && !info.IsDir() && strings.EqualFold(filepath.Ext(resolved), ".code-workspace"):
		uri := fileURI(resolved)
		needles = []string{resolved, slashed(resolved), uri, strings.ToLower(uri)}
		needles = append(needles, workspaceFolderNeedles(resolved)...)
		return "workspace file: " + resolved, dedupe(needles)

	case err == nil && info.IsDir():
		uri := fileURI(resolved)
		needles = []string{resolved, slashed(resolved), uri, strings.ToLower(uri)}
		needles = append(needles, driveURIVariants(resolved)...)
		return "workspace folder: " + resolved, dedupe(needles)

	default:
		needles = []string{resolved, slashed(resolved), strings.ToLower(resolved)}
		return "path: " + resolved, dedupe(needles)
	}
}

// workspaceFolderNeedles extracts needles from the folders array of a
// .code-workspace file. Entries carry either a uri (used verbatim) or a path,
// which may be relative to the workspace file.
func workspaceFolderNeedles(wsFile string) []string {
	data, err := os.ReadFile(wsFile)
	if err != nil {
		return nil
	}

	var needles []string
	gjson.GetBytes(data, "folders").ForEach(func(_, folder gjson.Result) bool {
		if uri := strings.TrimSpace(folder.Get("uri").String()); uri != "" {
			needles = append(needles, uri)
			return true
		}
		p := strings.TrimSpace(folder.Get("path").String())
		if p == "" {
			return true
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(wsFile), p)
		}
		needles = append(needles, p, slashed(p))
		needles = append(needles, driveURIVariants(p)...)
		return true
	})
	return dedupe(needles)
}

// slashed normalizes separators to forward slashes regardless of host OS, so
// needles built from a pasted Windows path work everywhere.
func slashed(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// fileURI renders a filesystem path as a file:// URI with percent-encoding.
func fileURI(path string) string {
	p := slashed(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// driveURIVariants returns the URI spellings the editor uses for paths with a
// drive letter. The drive colon is sometimes stored percent-encoded (c%3A),
// so both encoded forms are generated alongside the plain ones.
func driveURIVariants(path string) []string {
	variants := []string{fileURI(path)}
	if len(path) >= 2 && path[1] == ':' && isDriveLetter(path[0]) {
		drive := string(path[0])
		lower := strings.ToLower(drive)
		rest := slashed(path[2:])
		variants = append(variants,
			"file:///"+drive+":"+rest,
			"file:///"+lower+":"+rest,
			"file:///"+lower+"%3A"+rest,
			"file:///"+lower+"%3a"+rest,
		)
	}
	return dedupe(variants)
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// dedupe removes duplicates and blanks, preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
