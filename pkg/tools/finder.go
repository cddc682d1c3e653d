package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const maxMatches = 10

// FileFinderTool resolves a file name or glob pattern to files under the
// workspace root. The read action returns a file's contents instead of its
// location.
type FileFinderTool struct {
	root  string
	index *fileIndex
	log   *zap.Logger
}

func NewFileFinderTool(root string, log *zap.Logger) *FileFinderTool {
	log = log.Named("file_finder")
	return &FileFinderTool{
		root:  root,
		index: newFileIndex(root, log),
		log:   log,
	}
}

func (t *FileFinderTool) Definition() Definition {
	return Definition{
		Name:        "file_finder",
		Description: "Finds files by name or glob under the workspace; the read action returns contents.",
		Actions:     []string{"read"},
	}
}

func (t *FileFinderTool) Execute(ctx context.Context, action, payload string) (string, error) {
	pattern := parsePattern(payload)
	if pattern == "" {
		return "", fmt.Errorf("empty file name")
	}

	matches, err := t.find(pattern)
	if err != nil {
		return "", err
	}
	t.log.Info("lookup", zap.String("pattern", pattern), zap.Int("matches", len(matches)))

	if len(matches) == 0 {
		return fmt.Sprintf("File not found: %s", pattern), nil
	}

	switch action {
	case "read":
		return t.read(matches[0])
	default:
		return t.describe(matches), nil
	}
}

func (t *FileFinderTool) Close() error {
	return t.index.Close()
}

// Payloads may carry a "name=" prefix; only the first non-empty
// line of the payload is significant.
func parsePattern(payload string) string {
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "name=")
		return strings.TrimSpace(line)
	}
	return ""
}

func (t *FileFinderTool) find(pattern string) ([]string, error) {
	files, err := t.index.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to index workspace: %w", err)
	}

	var exact, globbed, partial []string
	lowered := strings.ToLower(pattern)
	for _, rel := range files {
		base := filepath.Base(rel)
		switch {
		case strings.EqualFold(base, pattern):
			exact = append(exact, rel)
		case globMatch(pattern, base, rel):
			globbed = append(globbed, rel)
		case strings.Contains(strings.ToLower(base), lowered):
			partial = append(partial, rel)
		}
	}

	// Exact name matches win; glob matches next; substring matches only
	// when nothing better exists.
	if len(exact) > 0 {
		return exact, nil
	}
	if len(globbed) > 0 {
		return globbed, nil
	}
	return partial, nil
}

func globMatch(pattern, base, rel string) bool {
	if !strings.ContainsAny(pattern, "*?[") {
		return false
	}
	if ok, _ := filepath.Match(pattern, base); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, rel)
	return ok
}

func (t *FileFinderTool) describe(matches []string) string {
	var sb strings.Builder
	shown := matches
	if len(shown) > maxMatches {
		shown = shown[:maxMatches]
	}
	for _, rel := range shown {
		full := filepath.Join(t.root, rel)
		info, err := os.Stat(full)
		if err != nil {
			fmt.Fprintf(&sb, "%s (stat failed: %v)\n", full, err)
			continue
		}
		fmt.Fprintf(&sb, "%s  %d bytes  %s  %s\n",
			full, info.Size(), info.Mode().Perm(), info.ModTime().Format("2006-01-02 15:04"))
	}
	if len(matches) > maxMatches {
		fmt.Fprintf(&sb, "...and %d more matches\n", len(matches)-maxMatches)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (t *FileFinderTool) read(rel string) (string, error) {
	full := filepath.Join(t.root, rel)
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Sprintf("Could not read %s: %v", full, err), nil
	}
	return fmt.Sprintf("Path: %s\nContent:\n%s", full, truncate(string(data))), nil
}
