// Package config contains aptrepo configuration structures.
package config

// Config used to store all information from the
// aptrepo.yaml configuration file.
type Config struct {
	CliConfig *CliOpts `mapstructure:"aptrepo" yaml:"aptrepo"`
}

// CliOpts stores information about aptrepo configuration.
// Filled in when parsing the aptrepo.yaml configuration file.
//
// aptrepo.yaml file format:
// aptrepo:
//   repo:
//     directory: path
//     toplevel: name
//     name: name
//     description: text
//     platforms: [names]
//     components: [names]
//     architectures: [names]
//   package:
//     directory: path
//     maintainer: [names]
//   build:
//     output_dir: path
//     show_output: bool
//   tools:
//     dpkg_deb: path
//     dpkg_scanpackages: path
//     ar: path
//     gpg: path
//   log:
//     file: path
//     max_size: num (MB)
//     max_backups: num
//     max_age: num (Days)
type CliOpts struct {
	// Repo contains repository layout defaults.
	Repo *RepoOpts
	// Package contains package descriptor defaults.
	Package *PackageOpts
	// Build contains build options.
	Build *BuildOpts
	// Tools contains paths to external programs.
	Tools *ToolsOpts
	// Log contains log file options.
	Log *LogOpts
}

// RepoOpts is used to store repository layout options.
type RepoOpts struct {
	// Directory is the directory containing the repository.
	Directory string `mapstructure:"directory" yaml:"directory"`
	// TopLevel is the repository directory name.
	TopLevel string `mapstructure:"toplevel" yaml:"toplevel"`
	// Name is the repository Origin, Label and Codename.
	Name string `mapstructure:"name" yaml:"name"`
	// Description is the repository description.
	Description string `mapstructure:"description" yaml:"description"`
	// Platforms are distribution names.
	Platforms []string `mapstructure:"platforms" yaml:"platforms"`
	// Components are restriction names.
	Components []string `mapstructure:"components" yaml:"components"`
	// Architectures are architecture names.
	Architectures []string `mapstructure:"architectures" yaml:"architectures"`
}

// PackageOpts is used to store package options.
type PackageOpts struct {
	// Directory is the parent directory of package directories.
	Directory string `mapstructure:"directory" yaml:"directory"`
	// Maintainer is the default package maintainer list.
	Maintainer []string `mapstructure:"maintainer" yaml:"maintainer"`
}

// BuildOpts is used to store build options.
type BuildOpts struct {
	// OutputDir receives built artifacts.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	// ShowOutput shows output of external programs.
	ShowOutput bool `mapstructure:"show_output" yaml:"show_output"`
}

// ToolsOpts is used to store paths to external programs.
type ToolsOpts struct {
	DpkgDeb          string `mapstructure:"dpkg_deb" yaml:"dpkg_deb"`
	DpkgScanpackages string `mapstructure:"dpkg_scanpackages" yaml:"dpkg_scanpackages"`
	Ar               string `mapstructure:"ar" yaml:"ar"`
	Gpg              string `mapstructure:"gpg" yaml:"gpg"`
}

// LogOpts is used to store log file options.
type LogOpts struct {
	// File is the log file. Empty disables file logging.
	File string `mapstructure:"file" yaml:"file"`
	// MaxSize is a maximum size in MB of the log file before
	// it gets rotated.
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`
	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `mapstructure:"max_age" yaml:"max_age"`
}
