// Package executor walks the parsed AST and realizes it: builtins run
// in-process, external commands are spawned with the session
// environment, redirections and pipelines rewire the I/O triple.
package executor

import (
	"os"
	"strings"

	"github.com/apriljarosz/mish/internal/history"
)

// Session is the state shared across one shell process: the exit
// request, the environment map captured at startup, and the line
// history. It is passed explicitly to everything that needs it.
type Session struct {
	ExitRequested bool
	ExitCode      int
	Env           map[string]string
	History       *history.History
}

// NewSession captures the process environment into a session.
func NewSession(hist *history.History) *Session {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i > 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return &Session{Env: env, History: hist}
}

// Getenv returns the session's value for name, or "".
func (s *Session) Getenv(name string) string {
	return s.Env[name]
}

// EnvSlice renders the environment map in the NAME=value form expected
// by exec.
func (s *Session) EnvSlice() []string {
	envv := make([]string, 0, len(s.Env))
	for name, value := range s.Env {
		envv = append(envv, name+"="+value)
	}
	return envv
}
