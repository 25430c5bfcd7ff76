package executor

import (
	"os"
	"path/filepath"
	"strings"
)

// CommandKind says how a command name resolved.
type CommandKind int

const (
	KindNone CommandKind = iota
	KindBuiltin
	KindExecutable
)

// Resolution is the result of resolving a command name. Dir is set for
// executables and names the PATH directory that matched.
type Resolution struct {
	Kind CommandKind
	Dir  string
}

// Resolve maps a command name to a builtin or to an executable found
// on PATH. Builtins shadow executables of the same name. Unreadable
// PATH entries are skipped; with PATH unset only builtins resolve.
func (s *Session) Resolve(name string) Resolution {
	if IsBuiltin(name) {
		return Resolution{Kind: KindBuiltin}
	}

	pathEnv := s.Getenv("PATH")
	if pathEnv == "" {
		return Resolution{}
	}
	for _, dir := range strings.Split(pathEnv, ":") {
		if dir == "" {
			continue
		}
		if isExecutable(filepath.Join(dir, name)) {
			return Resolution{Kind: KindExecutable, Dir: dir}
		}
	}
	return Resolution{}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}
