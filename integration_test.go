package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildShell compiles the shell into a temporary directory owned by t;
// each top-level test that calls it gets its own build.
func buildShell(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "mish_test")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build shell: %s", out)
	return bin
}

// runShell feeds input to the shell over a stdin pipe in a scratch
// directory with a scratch HOME, and returns stdout, stderr and the
// exit code.
func runShell(t *testing.T, bin, input string) (string, string, int) {
	t.Helper()
	workDir := t.TempDir()

	cmd := exec.Command(bin)
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(input)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return stdout.String(), stderr.String(), code
}

func TestShellIntegration(t *testing.T) {
	bin := buildShell(t)

	t.Run("echo builtin", func(t *testing.T) {
		stdout, stderr, code := runShell(t, bin, "echo hello world\n")
		assert.Equal(t, "hello world\n", stdout)
		assert.Empty(t, stderr)
		assert.Equal(t, 0, code)
	})

	t.Run("quoting", func(t *testing.T) {
		stdout, _, _ := runShell(t, bin, "echo 'a | b' \"c d\"\n")
		assert.Equal(t, "a | b c d\n", stdout)
	})

	t.Run("pwd", func(t *testing.T) {
		stdout, _, _ := runShell(t, bin, "pwd\n")
		assert.NotEmpty(t, strings.TrimSpace(stdout))
	})

	t.Run("cd then pwd", func(t *testing.T) {
		stdout, stderr, _ := runShell(t, bin, "cd /\npwd\n")
		assert.Equal(t, "/\n", stdout)
		assert.Empty(t, stderr)
	})

	t.Run("type", func(t *testing.T) {
		stdout, stderr, _ := runShell(t, bin, "type echo\ntype cd\ntype nosuch\n")
		assert.Equal(t, "echo is a shell builtin\ncd is a shell builtin\n", stdout)
		assert.Equal(t, "nosuch: not found\n", stderr)
	})

	t.Run("command not found", func(t *testing.T) {
		_, stderr, code := runShell(t, bin, "definitely-not-a-command\n")
		assert.Equal(t, "definitely-not-a-command: command not found\n", stderr)
		assert.Equal(t, 0, code)
	})

	t.Run("parse error skips the line", func(t *testing.T) {
		stdout, stderr, code := runShell(t, bin, "ls |\necho still here\n")
		assert.Contains(t, stderr, "expected command")
		assert.Equal(t, "still here\n", stdout)
		assert.Equal(t, 0, code)
	})

	t.Run("exit code", func(t *testing.T) {
		_, _, code := runShell(t, bin, "exit 7\n")
		assert.Equal(t, 7, code)
	})

	t.Run("eof exits zero", func(t *testing.T) {
		_, _, code := runShell(t, bin, "")
		assert.Equal(t, 0, code)
	})
}

func TestShellRedirection(t *testing.T) {
	bin := buildShell(t)

	t.Run("truncating redirect", func(t *testing.T) {
		workDir := t.TempDir()
		cmd := exec.Command(bin)
		cmd.Dir = workDir
		cmd.Stdin = strings.NewReader("echo 'a | b' > out.txt\n")
		cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
		require.NoError(t, cmd.Run())

		data, err := os.ReadFile(filepath.Join(workDir, "out.txt"))
		require.NoError(t, err)
		assert.Equal(t, "a | b\n", string(data))
	})

	t.Run("append redirect", func(t *testing.T) {
		workDir := t.TempDir()
		cmd := exec.Command(bin)
		cmd.Dir = workDir
		cmd.Stdin = strings.NewReader("echo one >> log\necho one >> log\n")
		cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
		require.NoError(t, cmd.Run())

		data, err := os.ReadFile(filepath.Join(workDir, "log"))
		require.NoError(t, err)
		assert.Equal(t, "one\none\n", string(data))
	})

	t.Run("unsupported fd", func(t *testing.T) {
		_, stderr, _ := runShell(t, bin, "echo hi 3> f\n")
		assert.Contains(t, stderr, "unsupported file descriptor")
	})
}

func TestShellPipelines(t *testing.T) {
	bin := buildShell(t)

	if _, err := exec.LookPath("wc"); err != nil {
		t.Skip("wc not available")
	}

	t.Run("echo into wc", func(t *testing.T) {
		stdout, stderr, _ := runShell(t, bin, "echo one two three | wc -w\n")
		assert.Equal(t, "3", strings.TrimSpace(stdout))
		assert.Empty(t, stderr)
	})

	t.Run("three stage pipeline", func(t *testing.T) {
		if _, err := exec.LookPath("cat"); err != nil {
			t.Skip("cat not available")
		}
		stdout, _, _ := runShell(t, bin, "echo abc | cat | wc -l\n")
		assert.Equal(t, "1", strings.TrimSpace(stdout))
	})
}
