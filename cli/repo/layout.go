// Package repo maintains the on-disk layout of a package repository: the
// platform x component x architecture directory grid, its Release documents
// and the package artifacts placed into grid leaves.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/mitchellh/mapstructure"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	// DefaultTopLevel is the default name of the repository directory.
	DefaultTopLevel = "debian"
	// DistsDir holds the directory grid.
	DistsDir = "dists"
	// PoolDir holds per-component pools.
	PoolDir = "pool"
	// LayoutFileName is the persisted layout of a repository.
	LayoutFileName = "layout.yaml"
)

// Extensions are file extensions of package artifacts kept in leaves.
var Extensions = []string{".deb", ".ipk", ".opk"}

// Layout describes a repository directory grid.
type Layout struct {
	// Root is the directory containing the repository.
	Root string `mapstructure:"-" yaml:"-"`
	// TopLevel is the repository directory name inside Root.
	TopLevel string `mapstructure:"-" yaml:"-"`
	// Platforms are distribution names, e.g. stable.
	Platforms []string `mapstructure:"platforms" yaml:"platforms"`
	// Components are restriction names, e.g. main.
	Components []string `mapstructure:"components" yaml:"components"`
	// Architectures are architecture names. They are normalized when
	// leaf names are built.
	Architectures []string `mapstructure:"architectures" yaml:"architectures"`
	// Name is the repository Origin, Label and Codename.
	Name string `mapstructure:"name" yaml:"name"`
	// Description is the repository description.
	Description string `mapstructure:"description" yaml:"description"`
}

// Leaf is a cell of the directory grid.
type Leaf struct {
	Platform  string
	Component string
	// Arch is the normalized architecture name.
	Arch string
	// Path is the leaf directory.
	Path string
}

// Base returns the repository directory.
func (l *Layout) Base() string {
	return filepath.Join(l.Root, l.TopLevel)
}

// Dists returns the directory grid root.
func (l *Layout) Dists() string {
	return filepath.Join(l.Base(), DistsDir)
}

// Pool returns the pool directory.
func (l *Layout) Pool() string {
	return filepath.Join(l.Base(), PoolDir)
}

// LeafPath returns the directory of a grid cell.
func (l *Layout) LeafPath(platform, component, architecture string) string {
	return filepath.Join(l.Dists(), platform, component, arch.DirName(architecture))
}

// layoutPath returns the persisted layout location.
func (l *Layout) layoutPath() string {
	return filepath.Join(l.Base(), LayoutFileName)
}

// LeafCells returns grid cells of the given architectures ordered by
// platform, then component, then architecture. Empty architectures select
// all architectures of the layout.
func LeafCells(l *Layout, architectures []string) []Leaf {
	if len(architectures) == 0 {
		architectures = l.Architectures
	}
	architectures = arch.NormalizeAll(architectures)

	leaves := make([]Leaf, 0, len(l.Platforms)*len(l.Components)*len(architectures))
	for _, platform := range l.Platforms {
		for _, component := range l.Components {
			for _, name := range architectures {
				leaves = append(leaves, Leaf{
					Platform:  platform,
					Component: component,
					Arch:      name,
					Path:      l.LeafPath(platform, component, name),
				})
			}
		}
	}
	return leaves
}

// Leaves returns leaf directories of the given architectures in LeafCells
// order.
func Leaves(l *Layout, architectures []string) []string {
	cells := LeafCells(l, architectures)
	paths := make([]string, 0, len(cells))
	for _, cell := range cells {
		paths = append(paths, cell.Path)
	}
	return paths
}

// Create idempotently creates pools, the directory grid, Release documents
// and the persisted layout.
func Create(l *Layout) error {
	if len(l.Platforms) == 0 || len(l.Components) == 0 || len(l.Architectures) == 0 {
		return util.NewArgError("platforms, components and architectures must not be empty")
	}

	for _, component := range l.Components {
		if err := util.CreateDirectory(filepath.Join(l.Pool(), component),
			util.DirPermissions); err != nil {
			return err
		}
	}
	for _, leaf := range Leaves(l, nil) {
		if err := util.CreateDirectory(leaf, util.DirPermissions); err != nil {
			return err
		}
	}
	if err := util.WriteYaml(l.layoutPath(), l); err != nil {
		return fmt.Errorf("failed to save repository layout: %w", err)
	}
	if err := WriteReleases(l); err != nil {
		return err
	}
	log.Infof("Repository layout is created in %s", l.Base())
	return nil
}

// Load reads the persisted layout of the repository at root/topLevel.
func Load(root, topLevel string) (*Layout, error) {
	l := &Layout{Root: root, TopLevel: topLevel}
	path := l.layoutPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, util.NewNotFoundError("repository layout", path)
		}
		return nil, err
	}

	raw, err := util.ParseYAML(path)
	if err != nil {
		return nil, err
	}
	if err := mapstructure.Decode(raw, l); err != nil {
		return nil, &util.ValidationError{Path: path, Reason: err.Error()}
	}
	return l, nil
}

// Delete removes the repository directory.
func Delete(l *Layout) error {
	if !util.IsDir(l.Base()) {
		return util.NewNotFoundError("repository", l.Base())
	}
	log.Infof("Removing repository %s", l.Base())
	return os.RemoveAll(l.Base())
}
