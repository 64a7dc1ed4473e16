package toolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/checkgrid/internal/command"
)

func TestParseVersion(t *testing.T) {
	testCases := []struct {
		name   string
		output string
		want   string
	}{
		{"python style", "Python 3.10.12", "3.10.12"},
		{"node style", "v20.11.1", "20.11.1"},
		{"bare version", "3.10.12", "3.10.12"},
		{"multiline probe", "Python 3.10.12\nextra noise", "3.10.12"},
		{"no version", "command not found", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseVersion(tc.output))
		})
	}
}

func TestMatchesPin(t *testing.T) {
	testCases := []struct {
		version string
		pin     string
		want    bool
	}{
		{"3.10.12", "3.10", true},
		{"3.10", "3.10", true},
		{"3.1.0", "3.10", false},
		{"3.100.0", "3.10", false},
		{"20.11.1", "20", true},
		{"2.11.1", "20", false},
		{"", "3.10", false},
		{"3.10.12", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.version+"_vs_"+tc.pin, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesPin(tc.version, tc.pin))
		})
	}
}

func TestPythonCandidates(t *testing.T) {
	rt := Python("3.10")
	assert.Equal(t, []string{"python3.10", "python3", "python"}, rt.Candidates)
	assert.Equal(t, "CHECKGRID_PYTHON", rt.EnvVar)
}

func fakeInterpreter(t *testing.T, dir, name, version string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\necho 'Python " + version + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestResolve_ReturnsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	script := fakeInterpreter(t, dir, "python3.10", "3.10.12")
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	path, err := Resolve(context.Background(), &command.Runner{}, Python("3.10"), "3.10")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, script, path)
}

func TestResolve_PinMismatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"python3.10", "python3", "python"} {
		fakeInterpreter(t, dir, name, "3.9.1")
	}
	t.Setenv("PATH", dir)

	_, err := Resolve(context.Background(), &command.Runner{}, Python("3.10"), "3.10")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match pin")
}
