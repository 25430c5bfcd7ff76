package executor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/apriljarosz/mish/internal/parser"
)

// ErrUnsupportedRedirect is returned for redirects naming a file
// descriptor other than 0, 1 or 2.
var ErrUnsupportedRedirect = errors.New("unsupported file descriptor")

// IO is the triple of files a node runs against. Redirects and pipes
// replace individual slots; builtins write to them directly and
// external commands inherit them as fds 0/1/2.
type IO struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// StdIO is the shell's inherited triple.
func StdIO() IO {
	return IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Run evaluates one AST. Command-not-found and non-zero child exits
// are not errors; a returned error means the line was abandoned and
// should be reported to the user.
func Run(s *Session, node parser.Node, ioset IO) error {
	switch n := node.(type) {
	case *parser.Command:
		return runCommand(s, n, ioset)
	case *parser.Redirect:
		return runRedirect(s, n, ioset)
	case *parser.Pipeline:
		return runPipeline(s, n, ioset)
	}
	return fmt.Errorf("unknown AST node %T", node)
}

func runCommand(s *Session, cmd *parser.Command, ioset IO) error {
	name := cmd.Args[0]
	res := s.Resolve(name)
	switch res.Kind {
	case KindBuiltin:
		return builtins[name](s, cmd.Args, ioset)
	case KindExecutable:
		c := externalCmd(s, res, cmd.Args, ioset)
		err := c.Run()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			// The child reports its own failures; only spawn errors
			// are ours to print.
			fmt.Fprintf(ioset.Err, "%s: %v\n", name, err)
		}
		return nil
	default:
		fmt.Fprintf(ioset.Err, "%s: command not found\n", name)
		return nil
	}
}

func externalCmd(s *Session, res Resolution, args []string, ioset IO) *exec.Cmd {
	return &exec.Cmd{
		Path:   filepath.Join(res.Dir, args[0]),
		Args:   args,
		Env:    s.EnvSlice(),
		Stdin:  ioset.In,
		Stdout: ioset.Out,
		Stderr: ioset.Err,
	}
}

func runRedirect(s *Session, r *parser.Redirect, ioset IO) error {
	f, newIO, err := applyRedirect(r, ioset)
	if err != nil {
		return err
	}
	defer f.Close()
	return Run(s, r.Node, newIO)
}

// applyRedirect opens the redirect target and returns the triple with
// the designated fd replaced. The caller owns closing the file.
func applyRedirect(r *parser.Redirect, ioset IO) (*os.File, IO, error) {
	var f *os.File
	var err error
	switch {
	case r.Fd == 0:
		f, err = os.Open(r.Target)
	case r.Fd == 1 || r.Fd == 2:
		if r.Append {
			f, err = os.OpenFile(r.Target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		} else {
			f, err = os.Create(r.Target)
		}
	default:
		return nil, ioset, fmt.Errorf("%d>: %w", r.Fd, ErrUnsupportedRedirect)
	}
	if err != nil {
		return nil, ioset, err
	}

	switch r.Fd {
	case 0:
		ioset.In = f
	case 1:
		ioset.Out = f
	case 2:
		ioset.Err = f
	}
	return f, ioset, nil
}

// stage is one launched pipeline stage: either a started child process
// or an in-process worker goroutine. owned holds pipe ends and
// redirect files the stage still needs; they are closed when the stage
// is reaped.
type stage struct {
	cmd   *exec.Cmd
	done  chan error
	owned []*os.File
}

func completedStage(err error) *stage {
	st := &stage{done: make(chan error, 1)}
	st.done <- err
	return st
}

// startStage launches one pipeline stage without waiting for it.
func startStage(s *Session, node parser.Node, ioset IO) (*stage, error) {
	switch n := node.(type) {
	case *parser.Redirect:
		f, newIO, err := applyRedirect(n, ioset)
		if err != nil {
			return nil, err
		}
		st, err := startStage(s, n.Node, newIO)
		if err != nil {
			f.Close()
			return nil, err
		}
		if st.cmd != nil {
			// The child holds its own copy after start.
			f.Close()
		} else {
			st.owned = append(st.owned, f)
		}
		return st, nil

	case *parser.Command:
		name := n.Args[0]
		res := s.Resolve(name)
		switch res.Kind {
		case KindBuiltin:
			st := &stage{done: make(chan error, 1)}
			fn := builtins[name]
			go func() {
				st.done <- fn(s, n.Args, ioset)
			}()
			return st, nil
		case KindExecutable:
			c := externalCmd(s, res, n.Args, ioset)
			if err := c.Start(); err != nil {
				fmt.Fprintf(ioset.Err, "%s: %v\n", name, err)
				return completedStage(nil), nil
			}
			return &stage{cmd: c}, nil
		default:
			fmt.Fprintf(ioset.Err, "%s: command not found\n", name)
			return completedStage(nil), nil
		}

	case *parser.Pipeline:
		// The grammar never nests pipelines, but evaluate one anyway
		// rather than crash on a hand-built AST.
		st := &stage{done: make(chan error, 1)}
		go func() {
			st.done <- runPipeline(s, n, ioset)
		}()
		return st, nil
	}
	return nil, fmt.Errorf("unknown AST node %T", node)
}

// runPipeline allocates one pipe per adjacent stage pair, launches
// every stage, closes the parent's copies of pipe ends as soon as the
// consuming stage holds its own, and reaps every stage in order. The
// pipeline's result is the last stage's result.
func runPipeline(s *Session, p *parser.Pipeline, ioset IO) error {
	var stages []*stage
	var prevRead *os.File
	var startErr error

	for i, node := range p.Stages {
		stIO := ioset
		if prevRead != nil {
			stIO.In = prevRead
		}
		var r, w *os.File
		if i < len(p.Stages)-1 {
			var err error
			r, w, err = os.Pipe()
			if err != nil {
				startErr = err
				break
			}
			stIO.Out = w
		}

		st, err := startStage(s, node, stIO)
		if err != nil {
			if r != nil {
				r.Close()
			}
			if w != nil {
				w.Close()
			}
			startErr = err
			break
		}

		if st.cmd != nil {
			// The child inherited copies; drop ours now.
			if prevRead != nil {
				prevRead.Close()
			}
			if w != nil {
				w.Close()
			}
		} else {
			// In-process worker: the files stay open until the stage
			// is joined.
			if prevRead != nil {
				st.owned = append(st.owned, prevRead)
			}
			if w != nil {
				st.owned = append(st.owned, w)
			}
		}
		prevRead = r
		stages = append(stages, st)
	}

	if startErr != nil && prevRead != nil {
		prevRead.Close()
	}

	var last error
	for i, st := range stages {
		err := reapStage(st)
		if i == len(stages)-1 {
			last = err
		}
	}
	if startErr != nil {
		return startErr
	}
	return last
}

// reapStage waits for one stage and closes the files it owned.
// Non-zero child exits are not reported.
func reapStage(st *stage) error {
	var err error
	if st.cmd != nil {
		err = st.cmd.Wait()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = nil
		}
	} else {
		err = <-st.done
	}
	for _, f := range st.owned {
		f.Close()
	}
	return err
}
