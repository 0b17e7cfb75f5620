package exeio

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func withArgv0(t *testing.T, argv0 string) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{argv0}, saved[1:]...)
	t.Cleanup(func() { os.Args = saved })
}

func TestInvokedAsLauncher(t *testing.T) {
	cases := []struct {
		argv0 string
		want  bool
	}{
		{"/usr/local/bin/bunland", true},
		{"bunland", true},
		{"./bunland-debug", true},
		{"/opt/tools/my-app", false},
		{"bunland2", false},
		{"app-bundle", false},
	}
	for _, tc := range cases {
		withArgv0(t, tc.argv0)
		require.Equal(t, tc.want, InvokedAsLauncher(), "argv0 %s", tc.argv0)
	}
}

func TestFromSelfLauncherShortCircuits(t *testing.T) {
	withArgv0(t, "bunland")
	g, err := FromSelf()
	require.NoError(t, err)
	require.Nil(t, g)
}

func TestFromSelfPlainBinary(t *testing.T) {
	// The test binary carries no embedded graph.
	withArgv0(t, "some-app")
	g, err := FromSelf()
	require.NoError(t, err)
	require.Nil(t, g)
}

func TestSelfPath(t *testing.T) {
	p, err := SelfPath()
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(p))
	require.FileExists(t, p)
}

func TestSearchPath(t *testing.T) {
	dir := t.TempDir()
	tool := filepath.Join(dir, "findme")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	found, err := searchPath("findme")
	require.NoError(t, err)
	require.Equal(t, tool, found)

	_, err = searchPath("no-such-tool")
	require.Error(t, err)
}

func TestSearchPathSkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not meaningful on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plainfile"), []byte("data"), 0o644))
	t.Setenv("PATH", dir)

	_, err := searchPath("plainfile")
	require.Error(t, err)
}
