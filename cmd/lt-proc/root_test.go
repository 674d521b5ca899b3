package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lttoolkit/internal/config"
	"github.com/joshuapare/lttoolkit/internal/testutil"
	"github.com/joshuapare/lttoolkit/internal/testutil/dixbuild"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// resetFlags restores every flag to its default between runs.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv(config.PathEnv, "")
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
}

// run executes lt-proc with args and stdin, returning stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDictionary(t *testing.T, b *dixbuild.Builder) string {
	t.Helper()
	return testutil.WriteDictionary(t, b.Bytes(), "dict.bin")
}

func TestAnalysisCommand(t *testing.T) {
	dict := writeDictionary(t, testutil.CatsDictionary())

	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{
			name:  "default mode",
			args:  []string{dict},
			stdin: "cats dog\n",
			want:  "^cats/cat<n><pl>$ ^dog/*dog$\n",
		},
		{
			name:  "explicit analysis",
			args:  []string{"-a", dict},
			stdin: "Cat",
			want:  "^Cat/Cat<n><sg>$",
		},
		{
			name:  "case sensitive",
			args:  []string{"-c", dict},
			stdin: "Cat",
			want:  "^Cat/*Cat$",
		},
		{
			name:  "dictionary case",
			args:  []string{"-w", dict},
			stdin: "Cat",
			want:  "^Cat/cat<n><sg>$",
		},
		{
			name:  "sao",
			args:  []string{"-s", dict},
			stdin: "cats dog",
			want:  "cat&n;&pl; <d>dog</d>",
		},
		{
			name:  "null flush",
			args:  []string{"-z", dict},
			stdin: "cat\x00cats\x00",
			want:  "^cat/cat<n><sg>$\x00^cats/cat<n><pl>$\x00",
		},
		{
			name:    "conflicting modes",
			args:    []string{"-a", "-g", dict},
			wantErr: true,
		},
		{
			name:    "malformed input",
			args:    []string{dict},
			stdin:   "cat <n",
			wantErr: true,
		},
		{
			name:    "missing dictionary",
			args:    []string{filepath.Join(t.TempDir(), "missing.bin")},
			wantErr: true,
		},
		{
			name:    "no arguments",
			args:    []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.stdin, tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestMalformedInputError(t *testing.T) {
	dict := writeDictionary(t, testutil.CatsDictionary())
	_, _, err := run(t, "cat$", dict)
	require.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestGenerationCommand(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	b.Section("main@standard").Add("cat<n><pl>", "cats")
	dict := writeDictionary(t, b)

	out, _, err := run(t, "^cat<n><pl>$ ^dog<n>$", "-g", dict)
	require.NoError(t, err)
	require.Equal(t, "cats #dog", out)

	out, _, err = run(t, "^cat<n><pl>$ ^dog<n>$", "-n", dict)
	require.NoError(t, err)
	require.Equal(t, "cats dog", out)
}

func TestFileArguments(t *testing.T) {
	dict := writeDictionary(t, testutil.CatsDictionary())
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("cat cats"), 0o644))

	stdout, _, err := run(t, "", dict, in, out)
	require.NoError(t, err)
	require.Empty(t, stdout)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "^cat/cat<n><sg>$ ^cats/cat<n><pl>$", string(got))
}

func TestVerboseLogsAndIndexCache(t *testing.T) {
	dict := writeDictionary(t, testutil.CatsDictionary())
	cacheDir := t.TempDir()

	_, stderr, err := run(t, "cats", "-v", "--index-cache", cacheDir, dict)
	require.NoError(t, err)
	require.Contains(t, stderr, "dictionary loaded")
	require.Contains(t, stderr, "index=scanned")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	_, stderr, err = run(t, "cats", "-v", "--index-cache", cacheDir, dict)
	require.NoError(t, err)
	require.Contains(t, stderr, "index=cached")

	_, stderr, err = run(t, "cats", "-q", dict)
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestPreload(t *testing.T) {
	dict := writeDictionary(t, testutil.CatsDictionary())
	other := writeDictionary(t, testutil.CatsDictionary())

	out, _, err := run(t, "cat", "--preload", other, dict)
	require.NoError(t, err)
	require.Equal(t, "^cat/cat<n><sg>$", out)

	_, _, err = run(t, "cat", "--preload", filepath.Join(t.TempDir(), "missing.bin"), dict)
	require.ErrorContains(t, err, "preload")
}

func TestCompoundFlags(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	b.Section("main@standard").
		Add("sol", "sol<n><:co:only-L>").
		Add("hat", "hat<n><:co:R>")
	dict := writeDictionary(t, b)

	out, _, err := run(t, "solhat", "-e", dict)
	require.NoError(t, err)
	require.Equal(t, "^solhat/sol<n>+hat<n>$", out)

	out, _, err = run(t, "solhat", "-e", "--compound-max-elements", "1", "-C", dict)
	require.NoError(t, err)
	require.Equal(t, "^solhat/sol<n><:co:only-L>+hat<n><:co:R>$", out)

	_, _, err = run(t, "solhat", "-e", "--compound-max-threads", "0", dict)
	require.ErrorContains(t, err, "compound.max_threads")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "lt-proc dev")
}
