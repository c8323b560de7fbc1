package pack

import (
	"archive/tar"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peondevelopments/aptrepo/cli/control"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// fakeBuilder records staged trees and fails with err, if set.
type fakeBuilder struct {
	profile descriptor.Profile
	err     error
	calls   int
	seen    []string
}

func (b *fakeBuilder) Build(stagedRoot, outputDir string, d *descriptor.Descriptor) (string, error) {
	b.calls++
	err := filepath.Walk(stagedRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(stagedRoot, path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			b.seen = append(b.seen, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if b.err != nil {
		return "", b.err
	}
	artifact := filepath.Join(outputDir, ArtifactName(d, b.profile))
	return artifact, os.WriteFile(artifact, []byte("artifact"), 0o644)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newPackage(t *testing.T, profiles string) *descriptor.Descriptor {
	t.Helper()
	d, err := descriptor.New(t.TempDir(), "foo", descriptor.Fields{
		"version":      "1.0",
		"architecture": "amd64",
		"profiles":     profiles,
	})
	require.NoError(t, err)

	writeFile(t, filepath.Join(d.Path(), "src", "foo"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(d.Path(), "src", "lib", "mod.py"), "pass\n")
	writeFile(t, filepath.Join(d.Path(), "src", "lib", "mod.pyc"), "bytecode")
	writeFile(t, filepath.Join(d.Path(), "src", "lib", "__pycache__", "mod.cpython.pyc"), "x")
	writeFile(t, filepath.Join(d.Path(), "src", ".svn", "entries"), "svn")
	writeFile(t, filepath.Join(d.Path(), "src", "notes.txt~"), "backup")
	writeFile(t, filepath.Join(d.Path(), "conf", "foo.conf"), "override")
	d.Files["src"] = "/usr/lib/foo"
	d.Override["conf/foo.conf"] = "etc/foo.conf"
	return d
}

func TestPipelineRun(t *testing.T) {
	d := newPackage(t, "deb, rpm, tar.gz")
	deb := &fakeBuilder{profile: descriptor.ProfileDeb}
	tgz := &fakeBuilder{profile: descriptor.ProfileTgz}
	outputDir := filepath.Join(t.TempDir(), "out")

	pipeline := NewPipeline(d, map[descriptor.Profile]Builder{
		descriptor.ProfileDeb: deb,
		descriptor.ProfileTgz: tgz,
	}, outputDir)
	assert.Equal(t, Declared, pipeline.State())

	require.NoError(t, pipeline.Run())
	assert.Equal(t, Packaged, pipeline.State())
	assert.Equal(t, []string{
		filepath.Join(outputDir, "foo-1.0_amd64.deb"),
		filepath.Join(outputDir, "foo-1.0_amd64.tar.gz"),
	}, pipeline.Artifacts())
	assert.Empty(t, pipeline.StagingDir())

	assert.ElementsMatch(t, []string{
		"DEBIAN/control",
		"DEBIAN/md5sums",
		"etc/foo.conf",
		"usr/lib/foo/foo",
		"usr/lib/foo/lib/mod.py",
	}, deb.seen)
	// The deb metadata is removed before the next profile.
	assert.ElementsMatch(t, []string{
		"etc/foo.conf",
		"usr/lib/foo/foo",
		"usr/lib/foo/lib/mod.py",
	}, tgz.seen)

	// Staging directories are removed on success.
	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotRegexp(t, "^footmp|tmp$", entry.Name())
	}

	assert.Error(t, pipeline.Run())
}

func TestPipelineBuildFailure(t *testing.T) {
	d := newPackage(t, "deb, tar.gz")
	deb := &fakeBuilder{profile: descriptor.ProfileDeb, err: &util.ExitError{
		Program: "dpkg-deb", Code: 2, Err: errors.New("exit status 2"),
	}}
	tgz := &fakeBuilder{profile: descriptor.ProfileTgz}

	pipeline := NewPipeline(d, map[descriptor.Profile]Builder{
		descriptor.ProfileDeb: deb,
		descriptor.ProfileTgz: tgz,
	}, t.TempDir())

	err := pipeline.Run()
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, 2, buildErr.ExitCode)
	assert.Equal(t, descriptor.ProfileDeb, buildErr.Profile)
	assert.Equal(t, "foo", buildErr.Package)

	assert.Equal(t, Failed, pipeline.State())
	assert.Equal(t, 0, tgz.calls)
	assert.Empty(t, pipeline.Artifacts())

	// Staging directory is kept for inspection.
	assert.NotEmpty(t, pipeline.StagingDir())
	assert.DirExists(t, pipeline.StagingDir())
	assert.Equal(t, pipeline.StagingDir(), buildErr.StagingDir)
	assert.FileExists(t, filepath.Join(pipeline.StagingDir(), control.DebianDir, "control"))
}

func TestPipelineSkipsKeptStagingDirs(t *testing.T) {
	d := newPackage(t, "deb")
	d.Files = descriptor.Mapping{".": "opt/foo"}
	d.Override = descriptor.Mapping{}
	// Unrelated names with the same affixes are payload.
	writeFile(t, filepath.Join(d.Path(), "fooextratmp", "data"), "data")

	failing := &fakeBuilder{profile: descriptor.ProfileDeb, err: errors.New("exit status 1")}
	failed := NewPipeline(d, map[descriptor.Profile]Builder{descriptor.ProfileDeb: failing},
		t.TempDir())
	require.Error(t, failed.Run())
	require.DirExists(t, failed.StagingDir())
	kept := filepath.Base(failed.StagingDir())

	deb := &fakeBuilder{profile: descriptor.ProfileDeb}
	pipeline := NewPipeline(d, map[descriptor.Profile]Builder{descriptor.ProfileDeb: deb},
		t.TempDir())
	require.NoError(t, pipeline.Run())

	assert.Contains(t, deb.seen, "opt/foo/src/foo")
	assert.Contains(t, deb.seen, "opt/foo/fooextratmp/data")
	for _, path := range deb.seen {
		assert.NotContains(t, path, kept)
	}
}

func TestPipelineMissingSource(t *testing.T) {
	d := newPackage(t, "tar.gz")
	d.Files["no/such/file"] = "usr/share/foo"
	tgz := &fakeBuilder{profile: descriptor.ProfileTgz}

	pipeline := NewPipeline(d, map[descriptor.Profile]Builder{descriptor.ProfileTgz: tgz},
		t.TempDir())
	err := pipeline.Run()

	var notFound *util.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, Failed, pipeline.State())
	assert.Equal(t, 0, tgz.calls)
}

func TestPipelineNoKnownProfiles(t *testing.T) {
	d := newPackage(t, "rpm")

	pipeline := NewPipeline(d, CreateBuilders(DefaultTools()), t.TempDir())
	require.NoError(t, pipeline.Run())

	assert.Equal(t, Packaged, pipeline.State())
	assert.Empty(t, pipeline.Artifacts())
	assert.Empty(t, pipeline.StagingDir())
}

func TestArchiveBuilder(t *testing.T) {
	d := newPackage(t, "tar.gz")
	outputDir := t.TempDir()

	pipeline := NewPipeline(d, CreateBuilders(DefaultTools()), outputDir)
	require.NoError(t, pipeline.Run())
	require.Len(t, pipeline.Artifacts(), 1)

	members := tarGzMembers(t, pipeline.Artifacts()[0])
	assert.Contains(t, members, "./usr/lib/foo/foo")
	assert.Contains(t, members, "./etc/foo.conf")
	assert.NotContains(t, members, "./usr/lib/foo/lib/mod.pyc")
	assert.NotContains(t, members, "./"+control.DebianDir+"/")
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

// recordingRunner records commands and inspects the working directory.
type recordingRunner struct {
	commands []util.Command
	members  []string
}

func (r *recordingRunner) Run(cmd util.Command) error {
	r.commands = append(r.commands, cmd)
	entries, err := os.ReadDir(cmd.Dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		r.members = append(r.members, entry.Name())
	}
	return nil
}

func TestArBuilder(t *testing.T) {
	d := newPackage(t, "ipk")
	runner := &recordingRunner{}
	tools := Tools{DpkgDeb: "dpkg-deb", Ar: "ar", Runner: runner}
	outputDir := t.TempDir()

	pipeline := NewPipeline(d, CreateBuilders(tools), outputDir)
	require.NoError(t, pipeline.Run())

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.Equal(t, "ar", cmd.Program)
	assert.Equal(t, []string{
		"r", filepath.Join(outputDir, "foo-1.0_amd64.ipk"),
		debianBinaryFileName, controlArchiveName, dataArchiveName,
	}, cmd.Args)
	assert.ElementsMatch(t, []string{
		debianBinaryFileName, controlArchiveName, dataArchiveName,
	}, runner.members)
}

func TestDebBuilder(t *testing.T) {
	d := newPackage(t, "deb")
	runner := &recordingRunner{}
	tools := Tools{DpkgDeb: "/usr/bin/dpkg-deb", Ar: "ar", Runner: runner}
	outputDir := t.TempDir()

	builder := CreateBuilder(descriptor.ProfileDeb, tools)
	stagedRoot := t.TempDir()
	artifact, err := builder.Build(stagedRoot, outputDir, d)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outputDir, "foo-1.0_amd64.deb"), artifact)
	require.Len(t, runner.commands, 1)
	assert.Equal(t, "/usr/bin/dpkg-deb", runner.commands[0].Program)
	assert.Equal(t, []string{"--build", stagedRoot, artifact}, runner.commands[0].Args)
}

func TestArtifactName(t *testing.T) {
	testCases := []struct {
		name         string
		architecture []string
		profile      descriptor.Profile
		expected     string
	}{
		{"binary", []string{"x86_64"}, descriptor.ProfileDeb, "foo-1.0_amd64.deb"},
		{"source first", []string{"source", "arm64"}, descriptor.ProfileIpk, "foo-1.0_arm64.ipk"},
		{"source only", []string{"source"}, descriptor.ProfileTgz, "foo-1.0_all.tar.gz"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			d, err := descriptor.New(t.TempDir(), "foo", descriptor.Fields{"version": "1.0"})
			require.NoError(t, err)
			d.Package.Architecture = testCase.architecture
			assert.Equal(t, testCase.expected, ArtifactName(d, testCase.profile))
		})
	}
}

func TestRemoveIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.py"), "")
	writeFile(t, filepath.Join(root, "drop.pyc"), "")
	writeFile(t, filepath.Join(root, "a", ".git", "HEAD"), "")
	writeFile(t, filepath.Join(root, "a", "b", "__pycache__", "x"), "")
	writeFile(t, filepath.Join(root, "a", "b", "file~"), "")
	writeFile(t, filepath.Join(root, ".apt_pkg", "state"), "")

	require.NoError(t, removeIgnoredFiles(root, nonDeployables))

	assert.FileExists(t, filepath.Join(root, "keep.py"))
	assert.NoFileExists(t, filepath.Join(root, "drop.pyc"))
	assert.NoDirExists(t, filepath.Join(root, "a", ".git"))
	assert.NoDirExists(t, filepath.Join(root, "a", "b", "__pycache__"))
	assert.NoFileExists(t, filepath.Join(root, "a", "b", "file~"))
	assert.NoDirExists(t, filepath.Join(root, ".apt_pkg"))
	assert.DirExists(t, filepath.Join(root, "a", "b"))
}
