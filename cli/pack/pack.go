// Package pack builds package artifacts from package descriptors.
package pack

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/otiai10/copy"

	"github.com/peondevelopments/aptrepo/cli/control"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// State is a stage of the build pipeline.
type State int

const (
	// Declared is the initial state.
	Declared State = iota
	// Staged means the package tree is copied to the staging directory.
	Staged
	// ControlWritten means the metadata directory of a profile is written.
	ControlWritten
	// Packaged means all artifacts are built.
	Packaged
	// Failed means a step of the pipeline failed.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Declared:
		return "declared"
	case Staged:
		return "staged"
	case ControlWritten:
		return "control written"
	case Packaged:
		return "packaged"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// stagingSuffix ends names of staging directories.
const stagingSuffix = "tmp"

// BuildError is reported when a builder fails. The staging directory is
// kept for inspection.
type BuildError struct {
	// Package is the package name.
	Package string
	// Profile is the failed profile.
	Profile descriptor.Profile
	// ExitCode is the builder exit status, -1 if unknown.
	ExitCode int
	// StagingDir is the kept staging directory.
	StagingDir string
	// Err is the builder error.
	Err error
}

// Error implements the [error] interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build %s package %s (exit code %d, staging directory %s): %s",
		e.Profile, e.Package, e.ExitCode, e.StagingDir, e.Err)
}

// Unwrap returns the builder error.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Pipeline builds artifacts of a single package.
type Pipeline struct {
	// Descriptor is the package to build.
	Descriptor *descriptor.Descriptor
	// Builders maps a profile to its builder.
	Builders map[descriptor.Profile]Builder
	// OutputDir receives the artifacts.
	OutputDir string

	state      State
	stagingDir string
	artifacts  []string
}

// NewPipeline creates a pipeline in the Declared state.
func NewPipeline(d *descriptor.Descriptor, builders map[descriptor.Profile]Builder,
	outputDir string) *Pipeline {
	return &Pipeline{Descriptor: d, Builders: builders, OutputDir: outputDir}
}

// State returns the current state.
func (p *Pipeline) State() State {
	return p.state
}

// StagingDir returns the staging directory. It is empty before staging and
// after a successful run.
func (p *Pipeline) StagingDir() string {
	return p.stagingDir
}

// Artifacts returns paths of built artifacts.
func (p *Pipeline) Artifacts() []string {
	return p.artifacts
}

// Run stages the package, writes its metadata and builds an artifact per
// profile. On failure the staging directory is kept and remaining profiles
// are skipped.
func (p *Pipeline) Run() error {
	if p.state != Declared {
		return fmt.Errorf("pipeline of %s is already %s", p.Descriptor.Name, p.state)
	}
	err := p.run()
	if err != nil {
		p.state = Failed
		return err
	}

	p.state = Packaged
	if err := os.RemoveAll(p.stagingDir); err != nil {
		log.Warnf("Failed to remove a staging directory %s: %s", p.stagingDir, err)
	}
	p.stagingDir = ""
	return nil
}

func (p *Pipeline) run() error {
	d := p.Descriptor
	if err := p.stage(); err != nil {
		return err
	}
	p.state = Staged

	if err := removeIgnoredFiles(p.stagingDir, nonDeployables); err != nil {
		return err
	}

	profiles, unknown := d.Profiles()
	for _, name := range unknown {
		log.Warnf("Unknown build profile %q of %s is skipped", name, d.Name)
	}
	if len(profiles) == 0 {
		log.Warnf("Package %s has no known build profiles, nothing is built", d.Name)
		return nil
	}

	if err := util.CreateDirectory(p.OutputDir, util.DirPermissions); err != nil {
		return err
	}

	for _, profile := range profiles {
		builder, found := p.Builders[profile]
		if !found || builder == nil {
			log.Warnf("No builder for profile %q, skipped", profile)
			continue
		}
		if err := p.buildProfile(profile, builder); err != nil {
			return err
		}
	}
	return nil
}

// buildProfile writes the metadata directory of profile, builds the artifact
// and removes the metadata directory, so it does not leak into the payload
// of the next profile.
func (p *Pipeline) buildProfile(profile descriptor.Profile, builder Builder) error {
	d := p.Descriptor
	format, metadataDir, hasMetadata := control.FormatFor(profile)
	if hasMetadata {
		if err := control.WriteControlDir(d, p.stagingDir, format, metadataDir); err != nil {
			return err
		}
	}
	p.state = ControlWritten

	log.Infof("Building %s package of %s", profile, d.Name)
	artifact, err := builder.Build(p.stagingDir, p.OutputDir, d)
	if err != nil {
		return &BuildError{
			Package:    d.Name,
			Profile:    profile,
			ExitCode:   util.ExitCode(err),
			StagingDir: p.stagingDir,
			Err:        err,
		}
	}
	p.artifacts = append(p.artifacts, artifact)

	if hasMetadata {
		if err := os.RemoveAll(filepath.Join(p.stagingDir, metadataDir)); err != nil {
			return err
		}
	}
	return nil
}

// stage creates the staging directory and copies Files, then Override
// entries into it.
func (p *Pipeline) stage() error {
	d := p.Descriptor
	if err := util.CreateDirectory(d.Path(), util.DirPermissions); err != nil {
		return err
	}

	stagingDir, err := os.MkdirTemp(d.Path(), d.Name+"*"+stagingSuffix)
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	p.stagingDir = stagingDir
	log.Debugf("A root for package is located in: %s", stagingDir)

	for _, mapping := range []descriptor.Mapping{d.Files, d.Override} {
		for _, src := range sortedKeys(mapping) {
			if err := p.copyEntry(src, mapping[src]); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyEntry copies src into the staging directory as dest.
func (p *Pipeline) copyEntry(src, dest string) error {
	d := p.Descriptor
	if !filepath.IsAbs(src) {
		src = filepath.Join(d.Path(), src)
	}
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return util.NewNotFoundError("source file", src)
		}
		return err
	}

	dest = filepath.Join(p.stagingDir, strings.TrimPrefix(filepath.Clean("/"+dest), "/"))
	log.Debugf("Stage %s as %s", src, dest)
	err := copy.Copy(src, dest, copy.Options{
		PreserveTimes: true,
		Skip: func(srcinfo os.FileInfo, src, dest string) (bool, error) {
			// Staging directories, including ones kept by failed runs, are
			// created inside the package directory.
			return srcinfo.IsDir() && p.isStagingDir(src), nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", src, err)
	}
	return nil
}

// isStagingDir checks whether path is a staging directory of the package.
func (p *Pipeline) isStagingDir(path string) bool {
	path = filepath.Clean(path)
	if path == p.stagingDir {
		return true
	}
	if filepath.Dir(path) != p.Descriptor.Path() {
		return false
	}
	base := filepath.Base(path)
	random, found := strings.CutPrefix(base, p.Descriptor.Name)
	if !found {
		return false
	}
	random, found = strings.CutSuffix(random, stagingSuffix)
	if !found || random == "" {
		return false
	}
	for _, r := range random {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortedKeys(m descriptor.Mapping) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
