// Package configure locates and decodes the aptrepo configuration file and
// fills unset options with defaults.
package configure

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/apex/log"
	"github.com/mitchellh/mapstructure"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/cmdcontext"
	"github.com/peondevelopments/aptrepo/cli/config"
	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	// ConfigName is the configuration file name.
	ConfigName = "aptrepo.yaml"
	// ConfigPathEnvName is an environment variable that contains a path to
	// the configuration file.
	ConfigPathEnvName = "APTREPO_CFG"
	// systemConfigDirEnvName is an environment variable that contains a path to
	// search system config.
	systemConfigDirEnvName = "APTREPO_SYSTEM_CONFIG_DIR"

	defaultRepoDir     = "repo"
	defaultTopLevel    = "debian"
	defaultRepoName    = "Undefined"
	defaultLogMaxSize  = 10
	defaultLogBackups  = 3
	defaultLogMaxAge   = 30
	defaultDpkgDeb     = "dpkg-deb"
	defaultDpkgScan    = "dpkg-scanpackages"
	defaultAr          = "ar"
	defaultGpg         = "gpg"
	currentDirectory   = "."
	sourceArchitecture = "source"
)

// Path to the directory of the system aptrepo.yaml configuration file.
// Defined at build time, see magefile.
var defaultConfigPath = "/etc/aptrepo"

// GetDefaultCliOpts returns `CliOpts` filled with default values.
func GetDefaultCliOpts() *config.CliOpts {
	return &config.CliOpts{
		Repo: &config.RepoOpts{
			Directory:     defaultRepoDir,
			TopLevel:      defaultTopLevel,
			Name:          defaultRepoName,
			Platforms:     []string{"stable", "unstable", "testing"},
			Components:    []string{"main"},
			Architectures: []string{arch.Host(), sourceArchitecture},
		},
		Package: &config.PackageOpts{
			Directory:  currentDirectory,
			Maintainer: []string{util.GetHostname()},
		},
		Build: &config.BuildOpts{
			OutputDir: currentDirectory,
		},
		Tools: &config.ToolsOpts{
			DpkgDeb:          defaultDpkgDeb,
			DpkgScanpackages: defaultDpkgScan,
			Ar:               defaultAr,
			Gpg:              defaultGpg,
		},
		Log: &config.LogOpts{
			MaxSize:    defaultLogMaxSize,
			MaxBackups: defaultLogBackups,
			MaxAge:     defaultLogMaxAge,
		},
	}
}

// adjustPathWithConfigLocation adjust provided filePath with configDir.
// Absolute filePath is returned as is. Relative filePath is calculated relative to configDir.
// If filePath is empty, defaultDirName is appended to configDir.
func adjustPathWithConfigLocation(filePath, configDir string,
	defaultDirName string,
) (string, error) {
	if filePath == "" {
		if defaultDirName == "" {
			return "", nil
		}
		return filepath.Abs(filepath.Join(configDir, defaultDirName))
	}
	if filepath.IsAbs(filePath) {
		return filePath, nil
	}
	return filepath.Abs(filepath.Join(configDir, filePath))
}

// updateCliOpts resolves all paths in config relative to specified location, and
// sets uninitialized values to defaults.
func updateCliOpts(cliOpts *config.CliOpts, configDir string) error {
	defaults := GetDefaultCliOpts()
	if cliOpts.Repo == nil {
		cliOpts.Repo = defaults.Repo
	}
	if cliOpts.Package == nil {
		cliOpts.Package = defaults.Package
	}
	if cliOpts.Build == nil {
		cliOpts.Build = defaults.Build
	}
	if cliOpts.Tools == nil {
		cliOpts.Tools = defaults.Tools
	}
	if cliOpts.Log == nil {
		cliOpts.Log = defaults.Log
	}

	for _, value := range []struct {
		target       *string
		defaultValue string
	}{
		{&cliOpts.Repo.TopLevel, defaults.Repo.TopLevel},
		{&cliOpts.Repo.Name, defaults.Repo.Name},
		{&cliOpts.Tools.DpkgDeb, defaults.Tools.DpkgDeb},
		{&cliOpts.Tools.DpkgScanpackages, defaults.Tools.DpkgScanpackages},
		{&cliOpts.Tools.Ar, defaults.Tools.Ar},
		{&cliOpts.Tools.Gpg, defaults.Tools.Gpg},
	} {
		if *value.target == "" {
			*value.target = value.defaultValue
		}
	}
	for _, value := range []struct {
		target       *int
		defaultValue int
	}{
		{&cliOpts.Log.MaxSize, defaults.Log.MaxSize},
		{&cliOpts.Log.MaxBackups, defaults.Log.MaxBackups},
		{&cliOpts.Log.MaxAge, defaults.Log.MaxAge},
	} {
		if *value.target <= 0 {
			*value.target = value.defaultValue
		}
	}
	for _, list := range []struct {
		target       *[]string
		defaultValue []string
	}{
		{&cliOpts.Repo.Platforms, defaults.Repo.Platforms},
		{&cliOpts.Repo.Components, defaults.Repo.Components},
		{&cliOpts.Repo.Architectures, defaults.Repo.Architectures},
		{&cliOpts.Package.Maintainer, defaults.Package.Maintainer},
	} {
		if len(*list.target) == 0 {
			*list.target = list.defaultValue
		}
	}

	var err error
	for _, dir := range []struct {
		path       *string
		defaultDir string
	}{
		{&cliOpts.Repo.Directory, defaultRepoDir},
		{&cliOpts.Package.Directory, currentDirectory},
		{&cliOpts.Build.OutputDir, currentDirectory},
		{&cliOpts.Log.File, ""},
	} {
		if *dir.path, err = adjustPathWithConfigLocation(*dir.path, configDir,
			dir.defaultDir); err != nil {
			return err
		}
	}
	return nil
}

// decodeStringAsArrayField accepts a scalar string where a list is expected.
func decodeStringAsArrayField(from, to reflect.Type, value interface{}) (
	interface{}, error,
) {
	if to != reflect.TypeOf([]string{}) || from.Kind() != reflect.String {
		return value, nil
	}
	return util.SplitList(value.(string)), nil
}

func decodeConfig(input map[string]any, cfg *config.Config) error {
	decoderConfig := mapstructure.DecoderConfig{
		Result:     cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(decodeStringAsArrayField),
	}
	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// GetCliOpts returns aptrepo options from the config file located at path
// configurePath. Unset options get default values. An empty path yields
// defaults relative to the current directory.
func GetCliOpts(configurePath string) (*config.CliOpts, error) {
	var cfg config.Config

	var configDir string
	if configurePath == "" {
		var err error
		if configDir, err = os.Getwd(); err != nil {
			return nil, err
		}
		cfg.CliConfig = &config.CliOpts{}
	} else {
		configPath, err := filepath.Abs(configurePath)
		if err != nil {
			return nil, fmt.Errorf("cannot determine config file path: %s", err)
		}
		rawConfigOpts, err := util.ParseYAML(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse aptrepo configuration: %s", err)
		}
		if err := decodeConfig(rawConfigOpts, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse aptrepo configuration: %s", err)
		}
		if cfg.CliConfig == nil {
			return nil,
				fmt.Errorf("failed to parse aptrepo configuration: missing aptrepo section")
		}
		configDir = filepath.Dir(configPath)
	}

	if err := updateCliOpts(cfg.CliConfig, configDir); err != nil {
		return nil, err
	}
	return cfg.CliConfig, nil
}

// getSystemConfigPath returns system config path.
func getSystemConfigPath() string {
	if configPathFromEnv := os.Getenv(systemConfigDirEnvName); configPathFromEnv != "" {
		return filepath.Join(configPathFromEnv, ConfigName)
	}
	return filepath.Join(defaultConfigPath, ConfigName)
}

// getConfigPath looks for the aptrepo.yaml configuration file. Tries the
// following locations in order:
// 1) APTREPO_CFG environment variable;
// 2) aptrepo.yaml in the current directory;
// 3) the system configuration directory.
// An empty path is returned if nothing is found.
func getConfigPath() (string, error) {
	if configPath := os.Getenv(ConfigPathEnvName); configPath != "" {
		return configPath, nil
	}

	curDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to detect current directory: %s", err)
	}
	for _, configPath := range []string{
		filepath.Join(curDir, ConfigName),
		getSystemConfigPath(),
	} {
		_, err := os.Stat(configPath)
		if err == nil {
			return configPath, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to get access to configuration file: %s", err)
		}
	}
	return "", nil
}

// Cli performs initial CLI configuration.
func Cli(cmdCtx *cmdcontext.CmdCtx) error {
	var err error
	if cmdCtx.Cli.ConfigPath != "" {
		if _, err = os.Stat(cmdCtx.Cli.ConfigPath); err != nil {
			return fmt.Errorf("specified path to the configuration file is invalid: %s", err)
		}
	} else if cmdCtx.Cli.ConfigPath, err = getConfigPath(); err != nil {
		return err
	}

	if cmdCtx.Cli.ConfigPath != "" {
		if cmdCtx.Cli.ConfigPath, err = filepath.Abs(cmdCtx.Cli.ConfigPath); err != nil {
			return err
		}
		cmdCtx.Cli.ConfigDir = filepath.Dir(cmdCtx.Cli.ConfigPath)
		log.Debugf("Configuration file: %s", cmdCtx.Cli.ConfigPath)
	}
	return nil
}
