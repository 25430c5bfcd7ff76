package input

import (
	"os"
	"sort"
	"strings"
)

// CompletionEngine yields command-name candidates for tab completion:
// the builtin keywords, executables from each directory on the search
// path, and optionally the current directory.
type CompletionEngine struct {
	keywords  []string
	path      string
	searchCwd bool
}

// NewCompletionEngine creates a completion engine. path is the
// colon-separated search path; searchCwd adds the current directory as
// a source.
func NewCompletionEngine(keywords []string, path string, searchCwd bool) *CompletionEngine {
	return &CompletionEngine{
		keywords:  keywords,
		path:      path,
		searchCwd: searchCwd,
	}
}

// Complete returns the sorted unique candidates starting with prefix.
// Directories that cannot be read are skipped.
func (ce *CompletionEngine) Complete(prefix string) []string {
	seen := make(map[string]bool)
	var matches []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			matches = append(matches, name)
		}
	}

	for _, kw := range ce.keywords {
		add(kw)
	}
	if ce.path != "" {
		for _, dir := range strings.Split(ce.path, ":") {
			if dir == "" {
				continue
			}
			addExecutables(dir, add)
		}
	}
	if ce.searchCwd {
		addExecutables(".", add)
	}

	sort.Strings(matches)
	return matches
}

// addExecutables feeds every regular file with an executable bit in
// dir to add.
func addExecutables(dir string, add func(string)) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Mode()&0o111 == 0 {
			continue
		}
		add(entry.Name())
	}
}

// LongestCommonPrefix returns the longest byte prefix shared by all
// strs. strs must be non-empty.
func LongestCommonPrefix(strs []string) string {
	prefix := strs[0]
	for _, s := range strs[1:] {
		for len(prefix) > 0 && !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
		if prefix == "" {
			break
		}
	}
	return prefix
}
