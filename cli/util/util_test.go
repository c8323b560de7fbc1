package util

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "  ", nil},
		{"single", "foo", []string{"foo"}},
		{"trimmed", " foo ,bar,  baz", []string{"foo", "bar", "baz"}},
		{"empty elements", "foo,,bar,", []string{"foo", "bar"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, SplitList(testCase.input))
		})
	}
}

func TestWriteTgzArchiveSkipsTopLevelDirs(t *testing.T) {
	srcDir := t.TempDir()
	for _, name := range []string{
		"DEBIAN/control",
		"usr/share/foo/DEBIAN/readme",
		"usr/bin/foo",
	} {
		path := filepath.Join(srcDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), DirPermissions))
		require.NoError(t, os.WriteFile(path, []byte(name), FilePermissions))
	}

	archive := filepath.Join(t.TempDir(), "data.tar.gz")
	require.NoError(t, WriteTgzArchive(srcDir+"/", archive, "DEBIAN"))

	members := tarGzMembers(t, archive)
	assert.Contains(t, members, "./usr/share/foo/DEBIAN/readme")
	assert.Contains(t, members, "./usr/bin/foo")
	assert.NotContains(t, members, "./DEBIAN/")
	assert.NotContains(t, members, "./DEBIAN/control")
}

// tarGzMembers returns entry names of a tar.gz archive.
func tarGzMembers(t *testing.T, path string) []string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	gzipReader, err := gzip.NewReader(file)
	require.NoError(t, err)

	var names []string
	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, header.Name)
	}
	return names
}

func TestCreateDirectory(t *testing.T) {
	tempDir := t.TempDir()
	dir := filepath.Join(tempDir, "a", "b")

	require.NoError(t, CreateDirectory(dir, DirPermissions))
	assert.DirExists(t, dir)
	// Existing directory is not an error.
	require.NoError(t, CreateDirectory(dir, DirPermissions))

	file := filepath.Join(tempDir, "file")
	require.NoError(t, os.WriteFile(file, []byte("data"), FilePermissions))
	assert.ErrorContains(t, CreateDirectory(file, DirPermissions), "is not a directory")
}

func TestWriteFileAtomic(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "doc")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), FilePermissions))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), FilePermissions))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// No temporary files are left behind.
	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicFailureKeepsOriginal(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "doc")
	require.NoError(t, WriteFileAtomic(path, []byte("original"), FilePermissions))

	err := WriteAtomic(path, FilePermissions, func(w io.Writer) error {
		if _, err := w.Write([]byte("half-written")); err != nil {
			return err
		}
		return errors.New("generator failed")
	})
	require.ErrorContains(t, err, "generator failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, -1, ExitCode(errors.New("plain")))
	wrapped := fmt.Errorf("wrapped: %w", &ExitError{Program: "dpkg-deb", Code: 2,
		Err: errors.New("exit status 2")})
	assert.Equal(t, 2, ExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "dpkg-deb exited with status 2")
}

func TestExecRunner(t *testing.T) {
	if err := CheckRequiredBinaries("sh"); err != nil {
		t.Skip(err)
	}
	runner := ExecRunner{}

	var out bytes.Buffer
	require.NoError(t, runner.Run(Command{
		Program: "sh",
		Args:    []string{"-c", "printf hello"},
		Stdout:  &out,
	}))
	assert.Equal(t, "hello", out.String())

	err := runner.Run(Command{Program: "sh", Args: []string{"-c", "exit 3"}})
	require.Error(t, err)
	assert.Equal(t, 3, ExitCode(err))

	err = runner.Run(Command{Program: "aptrepo-missing-program"})
	require.Error(t, err)
	assert.Equal(t, -1, ExitCode(err))
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("stage: %w", NewNotFoundError("source file", "/no/such/file"))
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "/no/such/file", notFound.Path)
	assert.True(t, strings.HasSuffix(err.Error(), "source file not found: /no/such/file"))
}
