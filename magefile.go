//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apex/log"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	goPackageName = "github.com/peondevelopments/aptrepo/cli"

	asmflags = "all=-trimpath=${PWD}"
	gcflags  = "all=-trimpath=${PWD}"

	packagePath = "./cli"

	generateModePath = "cli/codegen/generate_code.go"

	defaultLinuxConfigPath  = "/etc/aptrepo"
	defaultDarwinConfigPath = "/usr/local/etc/aptrepo"
)

var (
	ldflags = []string{
		"-X ${PACKAGE}/version.gitTag=${GIT_TAG}",
		"-X ${PACKAGE}/version.gitCommit=${GIT_COMMIT}",
		"-X ${PACKAGE}/version.versionLabel=${VERSION_LABEL}",
		"-X ${PACKAGE}/configure.defaultConfigPath=${CONFIG_PATH}",
	}
	goExecutableName      = "go"
	aptrepoExecutableName = "aptrepo"

	Aliases = map[string]any{
		"build": Build.Release,
		"unit":  Unit.Default,
	}
)

func init() {
	if specifiedGoExe := os.Getenv("GOEXE"); specifiedGoExe != "" {
		goExecutableName = specifiedGoExe
	}
	os.Setenv("GO111MODULE", "on")
}

type optsUpdater func([]string) ([]string, error)

// appendFlags appends flags to go command arguments.
func appendFlags(flags ...string) optsUpdater {
	return func(args []string) ([]string, error) {
		return append(args, flags...), nil
	}
}

// buildAptrepo builds the aptrepo executable.
func buildAptrepo(argUpdaters ...optsUpdater) error {
	args := []string{
		"build",
		"-o", aptrepoExecutableName,
		"-ldflags", strings.Join(ldflags, " "),
		"-asmflags", asmflags,
		"-gcflags", gcflags,
	}
	var err error
	for _, update := range argUpdaters {
		if args, err = update(args); err != nil {
			return err
		}
	}
	args = append(args, packagePath)

	if err = sh.RunWith(getBuildEnvironment(), goExecutableName, args...); err != nil {
		return fmt.Errorf("failed to build aptrepo executable: %s", err)
	}
	return nil
}

// GenerateGoCode regenerates embedded template code.
func GenerateGoCode() error {
	fmt.Println("Generating Go code...")

	return sh.RunWith(getBuildEnvironment(), goExecutableName, "run", generateModePath)
}

type Build mg.Namespace

// Building aptrepo executable.
func (Build) Release() error {
	fmt.Println("Building aptrepo...")
	mg.Deps(GenerateGoCode)

	return buildAptrepo()
}

// Building aptrepo executable with debug information.
func (Build) Debug() error {
	fmt.Println("Building aptrepo with debug information...")

	return buildAptrepo(appendFlags("-gcflags", "all=-N -l"))
}

type Unit mg.Namespace

// runUnitTests runs unit tests of every package.
func runUnitTests(flags []string) error {
	args := append([]string{"test"}, flags...)
	args = append(args, fmt.Sprintf("%s/...", packagePath))
	return sh.RunV(goExecutableName, args...)
}

// Run unit tests.
func (Unit) Default() error {
	fmt.Println("Running unit tests...")

	return runUnitTests([]string{})
}

// Run unit tests with the race detector.
func (Unit) Race() error {
	fmt.Println("Running unit tests with the race detector...")

	return runUnitTests([]string{"-race"})
}

// Run unit tests with code coverage.
func (Unit) Coverage() error {
	fmt.Println("Running unit tests with code coverage...")

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	coverDir := filepath.Join(cwd, "coverage", "unit")
	if err := os.MkdirAll(coverDir, 0o750); err != nil {
		return err
	}
	return runUnitTests([]string{"-coverprofile", filepath.Join(coverDir, "cover.out")})
}

// Lint runs go vet over the module.
func Lint() error {
	fmt.Println("Running go vet...")

	return sh.RunV(goExecutableName, "vet", fmt.Sprintf("%s/...", packagePath))
}

// Clean removes build artifacts.
func Clean() {
	sh.Rm(aptrepoExecutableName)
	sh.Rm("coverage")
}

// getDefaultConfigPath returns the directory of the system configuration file.
func getDefaultConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		return defaultDarwinConfigPath
	default:
		return defaultLinuxConfigPath
	}
}

// getBuildEnvironment return map with build environment variables.
func getBuildEnvironment() map[string]string {
	var err error

	var currentDir string
	var gitTag string
	var gitCommit string

	if currentDir, err = os.Getwd(); err != nil {
		log.Warnf("Failed to get current directory: %s", err)
	}

	if _, err := exec.LookPath("git"); err == nil {
		gitTag, _ = sh.Output("git", "describe", "--tags")
		gitCommit, _ = sh.Output("git", "rev-parse", "--short", "HEAD")
	}

	return map[string]string{
		"PACKAGE":       goPackageName,
		"GIT_TAG":       gitTag,
		"GIT_COMMIT":    gitCommit,
		"VERSION_LABEL": os.Getenv("VERSION_LABEL"),
		"PWD":           currentDir,
		"CONFIG_PATH":   getDefaultConfigPath(),
	}
}
