package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/apriljarosz/mish/internal/config"
	"github.com/apriljarosz/mish/internal/executor"
	"github.com/apriljarosz/mish/internal/history"
	"github.com/apriljarosz/mish/internal/input"
	"github.com/apriljarosz/mish/internal/parser"
)

func main() {
	os.Exit(run())
}

func run() int {
	// The shell itself survives ^C; foreground children still get the
	// signal from the tty.
	signal.Ignore(syscall.SIGINT)

	cfg := config.Load()
	hist := history.New(cfg.History.File, cfg.History.Limit)
	defer hist.Save()

	sess := executor.NewSession(hist)

	var readLine func() (string, error)
	if isatty.IsTerminal(os.Stdin.Fd()) {
		ce := input.NewCompletionEngine(executor.BuiltinNames(), sess.Getenv("PATH"), cfg.Completion.SearchCwd)
		ed := input.NewLineEditor(os.Stdin, os.Stdout, cfg.Prompt, hist, ce)
		readLine = ed.ReadLine
	} else {
		// Piped input: plain line reads, no prompt, no editing.
		scanner := bufio.NewScanner(os.Stdin)
		readLine = func() (string, error) {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", input.ErrEndOfTransmission
			}
			return scanner.Text(), nil
		}
	}

	for {
		line, err := readLine()
		switch {
		case errors.Is(err, input.ErrInterrupted):
			continue
		case errors.Is(err, input.ErrEndOfTransmission):
			return 0
		case err != nil:
			fmt.Fprintf(os.Stderr, "mish: %v\n", err)
			return 1
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		hist.Add(line)

		ast, err := parser.Parse(parser.Scan(line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "mish: %v\n", err)
			continue
		}
		if err := executor.Run(sess, ast, executor.StdIO()); err != nil {
			fmt.Fprintf(os.Stderr, "mish: %v\n", err)
		}
		if sess.ExitRequested {
			return sess.ExitCode
		}
	}
}
