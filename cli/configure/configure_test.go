package configure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
)

func TestAdjustPathWithConfigLocation(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"", "/config/dir/repo"},
		{"/srv/repo", "/srv/repo"},
		{"./packages", "/config/dir/packages"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.path, func(t *testing.T) {
			actual, err := adjustPathWithConfigLocation(testCase.path, "/config/dir", "repo")
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, actual)
		})
	}

	actual, err := adjustPathWithConfigLocation("", "/config/dir", "")
	require.NoError(t, err)
	assert.Empty(t, actual)
}

func TestGetCliOptsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	opts, err := GetCliOpts("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, defaultRepoDir), opts.Repo.Directory)
	assert.Equal(t, defaultTopLevel, opts.Repo.TopLevel)
	assert.Equal(t, defaultRepoName, opts.Repo.Name)
	assert.Equal(t, []string{"stable", "unstable", "testing"}, opts.Repo.Platforms)
	assert.Equal(t, []string{"main"}, opts.Repo.Components)
	assert.Contains(t, opts.Repo.Architectures, sourceArchitecture)
	assert.Equal(t, dir, opts.Package.Directory)
	assert.Equal(t, dir, opts.Build.OutputDir)
	assert.Equal(t, defaultDpkgDeb, opts.Tools.DpkgDeb)
	assert.Empty(t, opts.Log.File)
	assert.Equal(t, defaultLogMaxSize, opts.Log.MaxSize)
}

func TestGetCliOpts(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigName)
	require.NoError(t, os.WriteFile(configPath, []byte(`aptrepo:
  repo:
    directory: /srv
    name: Foo
    platforms: stable, testing
    architectures:
      - amd64
  package:
    directory: packages
    maintainer: Jane Doe <jane@example.com>
  build:
    show_output: true
  tools:
    dpkg_deb: /opt/bin/dpkg-deb
  log:
    file: aptrepo.log
    max_size: 5
`), 0o644))

	opts, err := GetCliOpts(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv", opts.Repo.Directory)
	assert.Equal(t, "Foo", opts.Repo.Name)
	assert.Equal(t, defaultTopLevel, opts.Repo.TopLevel)
	assert.Equal(t, []string{"stable", "testing"}, opts.Repo.Platforms)
	assert.Equal(t, []string{"main"}, opts.Repo.Components)
	assert.Equal(t, []string{"amd64"}, opts.Repo.Architectures)
	assert.Equal(t, filepath.Join(dir, "packages"), opts.Package.Directory)
	assert.Equal(t, []string{"Jane Doe <jane@example.com>"}, opts.Package.Maintainer)
	assert.Equal(t, dir, opts.Build.OutputDir)
	assert.True(t, opts.Build.ShowOutput)
	assert.Equal(t, "/opt/bin/dpkg-deb", opts.Tools.DpkgDeb)
	assert.Equal(t, defaultAr, opts.Tools.Ar)
	assert.Equal(t, filepath.Join(dir, "aptrepo.log"), opts.Log.File)
	assert.Equal(t, 5, opts.Log.MaxSize)
	assert.Equal(t, defaultLogBackups, opts.Log.MaxBackups)
}

func TestGetCliOptsInvalid(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigName)

	testCases := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "aptrepo: [\n"},
		{"wrong type", "aptrepo:\n  log:\n    max_size: big\n"},
		{"missing section", "repo:\n  name: Foo\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(configPath, []byte(testCase.content), 0o644))
			_, err := GetCliOpts(configPath)
			assert.Error(t, err)
		})
	}

	_, err := GetCliOpts(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestGetSystemConfigPath(t *testing.T) {
	require.Equal(t, filepath.Join(defaultConfigPath, ConfigName), getSystemConfigPath())
	t.Setenv(systemConfigDirEnvName, "/system_config_dir")
	require.Equal(t, filepath.Join("/system_config_dir", ConfigName), getSystemConfigPath())
}

func TestConfigureCli(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(systemConfigDirEnvName, filepath.Join(dir, "etc"))

	cmdCtx := cmdcontext.CmdCtx{}
	require.NoError(t, Cli(&cmdCtx))
	assert.Empty(t, cmdCtx.Cli.ConfigPath)

	// The current directory config is found.
	localConfig := filepath.Join(dir, ConfigName)
	require.NoError(t, os.WriteFile(localConfig, []byte("aptrepo:\n"), 0o644))
	cmdCtx = cmdcontext.CmdCtx{}
	require.NoError(t, Cli(&cmdCtx))
	assert.Equal(t, localConfig, cmdCtx.Cli.ConfigPath)
	assert.Equal(t, dir, cmdCtx.Cli.ConfigDir)

	// The environment variable wins over the current directory.
	envConfig := filepath.Join(dir, "env.yaml")
	require.NoError(t, os.WriteFile(envConfig, []byte("aptrepo:\n"), 0o644))
	t.Setenv(ConfigPathEnvName, envConfig)
	cmdCtx = cmdcontext.CmdCtx{}
	require.NoError(t, Cli(&cmdCtx))
	assert.Equal(t, envConfig, cmdCtx.Cli.ConfigPath)

	// The explicit path must exist.
	cmdCtx = cmdcontext.CmdCtx{}
	cmdCtx.Cli.ConfigPath = filepath.Join(dir, "missing.yaml")
	assert.Error(t, Cli(&cmdCtx))
}
