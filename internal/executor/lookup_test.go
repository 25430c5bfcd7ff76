package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWithPath(path string) *Session {
	s := NewSession(nil)
	s.Env["PATH"] = path
	return s
}

func TestResolveBuiltinShadowsPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echo"), []byte("#!/bin/sh\n"), 0755))

	s := sessionWithPath(dir)
	assert.Equal(t, Resolution{Kind: KindBuiltin}, s.Resolve("echo"))
}

func TestResolveExecutable(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "runme"), []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "runme"), []byte("#!/bin/sh\n"), 0755))

	// The first matching directory wins.
	s := sessionWithPath(dirA + ":" + dirB)
	assert.Equal(t, Resolution{Kind: KindExecutable, Dir: dirA}, s.Resolve("runme"))
}

func TestResolveSkipsNonExecutableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("not a program"), 0644))

	s := sessionWithPath(dir)
	assert.Equal(t, Resolution{Kind: KindNone}, s.Resolve("data"))
}

func TestResolveSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	s := sessionWithPath(dir)
	assert.Equal(t, Resolution{Kind: KindNone}, s.Resolve("subdir"))
}

func TestResolveUnsetPath(t *testing.T) {
	s := NewSession(nil)
	delete(s.Env, "PATH")
	assert.Equal(t, Resolution{Kind: KindNone}, s.Resolve("ls"))
	assert.Equal(t, Resolution{Kind: KindBuiltin}, s.Resolve("cd"))
}

func TestResolveSkipsMissingAndEmptySegments(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), []byte("#!/bin/sh\n"), 0755))

	s := sessionWithPath("/nope/missing::" + dir)
	assert.Equal(t, Resolution{Kind: KindExecutable, Dir: dir}, s.Resolve("tool"))
}

func TestResolveNotFound(t *testing.T) {
	s := sessionWithPath(t.TempDir())
	assert.Equal(t, Resolution{Kind: KindNone}, s.Resolve("definitely-not-here"))
}
