package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var builtins map[string]func(*Session, []string, IO) error

func init() {
	builtins = map[string]func(*Session, []string, IO) error{
		"exit":    exitBuiltin,
		"echo":    echoBuiltin,
		"type":    typeBuiltin,
		"pwd":     pwdBuiltin,
		"cd":      cdBuiltin,
		"history": historyBuiltin,
	}
}

// IsBuiltin checks if a command name is a builtin.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the builtin names sorted, for completion.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// exit [n] requests shell termination. A numeric argument becomes the
// process exit code; anything else leaves it at 0.
func exitBuiltin(s *Session, args []string, ioset IO) error {
	s.ExitRequested = true
	s.ExitCode = 0
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			s.ExitCode = n
		}
	}
	return nil
}

func echoBuiltin(s *Session, args []string, ioset IO) error {
	_, err := fmt.Fprintln(ioset.Out, strings.Join(args[1:], " "))
	return err
}

func typeBuiltin(s *Session, args []string, ioset IO) error {
	for _, name := range args[1:] {
		res := s.Resolve(name)
		switch res.Kind {
		case KindBuiltin:
			fmt.Fprintf(ioset.Out, "%s is a shell builtin\n", name)
		case KindExecutable:
			fmt.Fprintf(ioset.Out, "%s is %s\n", name, filepath.Join(res.Dir, name))
		default:
			fmt.Fprintf(ioset.Err, "%s: not found\n", name)
		}
	}
	return nil
}

func pwdBuiltin(s *Session, args []string, ioset IO) error {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(ioset.Err, "pwd: %v\n", err)
		return nil
	}
	if real, err := filepath.EvalSymlinks(wd); err == nil {
		wd = real
	}
	fmt.Fprintln(ioset.Out, wd)
	return nil
}

// cd changes the shell's working directory. A leading ~ expands to
// HOME. With no argument cd does nothing.
func cdBuiltin(s *Session, args []string, ioset IO) error {
	switch len(args) {
	case 1:
		return nil
	case 2:
	default:
		fmt.Fprintf(ioset.Err, "cd: too many arguments\n")
		return nil
	}

	path := args[1]
	if strings.HasPrefix(path, "~") {
		home := s.Getenv("HOME")
		if home == "" {
			home = "."
		}
		path = home + path[1:]
	}

	if err := os.Chdir(path); err != nil {
		fmt.Fprintf(ioset.Err, "cd: %s: No such file or directory\n", args[1])
	}
	return nil
}

// history [n] prints the last n accepted lines, default 20.
func historyBuiltin(s *Session, args []string, ioset IO) error {
	if s.History == nil {
		return nil
	}

	lines := s.History.GetAll()
	numToShow := 20
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			numToShow = n
		}
	}

	start := len(lines) - numToShow
	if start < 0 {
		start = 0
	}
	for i := start; i < len(lines); i++ {
		fmt.Fprintf(ioset.Out, "%4d  %s\n", i+1, lines[i])
	}
	return nil
}
