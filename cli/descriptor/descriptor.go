// Package descriptor implements the package descriptor: a typed record of
// package metadata stored as an INI document at <path>/<name>/<name>.
package descriptor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/apex/log"
	"github.com/go-ini/ini"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// Section names of the descriptor document.
const (
	SectionPackage  = "Package"
	SectionBuild    = "Build"
	SectionOverride = "Override"
	SectionFiles    = "Files"
	SectionControl  = "Control"
	SectionUser     = "User"
)

// SectionNames lists all sections in document order.
var SectionNames = []string{
	SectionPackage, SectionBuild, SectionOverride, SectionFiles, SectionControl, SectionUser,
}

const (
	defaultVersion          = "0.1"
	defaultShortDescription = "No Description Set"
)

// loadOptions are shared by reading and writing, so values quoted on write
// are unquoted on read.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:      true,
	KeyValueDelimiters:       "=",
	KeyValueDelimiterOnWrite: "=",
}

// Mapping is a free form key to value section.
type Mapping map[string]string

// Fields are named values for Update. Names are section keys without the
// section name.
type Fields map[string]string

// PackageSection holds control metadata of the package.
type PackageSection struct {
	Version          string
	Provides         []string
	Directory        string
	Essential        bool
	ShortDescription string
	LongDescription  []string
	Depends          []string
	Recommends       []string
	Suggests         []string
	Replaces         []string
	Section          string
	Architecture     []string
}

// BuildSection holds build settings.
type BuildSection struct {
	Profiles []string
}

// UserSection describes the people behind the package.
type UserSection struct {
	Author     string
	Maintainer []string
	Homepage   string
}

// Descriptor is a package descriptor.
type Descriptor struct {
	// Name is the package name.
	Name string
	// Package is the control metadata.
	Package PackageSection
	// Build contains build settings.
	Build BuildSection
	// Override maps a source path to a staging destination. Applied after Files.
	Override Mapping
	// Files maps a source path to a staging destination.
	Files Mapping
	// Control maps a control document name to a file which replaces the
	// synthesized document.
	Control Mapping
	// User describes package authors.
	User UserSection

	path string
}

func isFixedSection(section string) bool {
	switch section {
	case SectionPackage, SectionBuild, SectionUser:
		return true
	}
	return false
}

// newDefault creates a descriptor with default values.
func newDefault(path, name string) *Descriptor {
	directory, err := filepath.Abs(path)
	if err != nil {
		directory = path
	}
	return &Descriptor{
		Name: name,
		Package: PackageSection{
			Version:          defaultVersion,
			Provides:         []string{name},
			Directory:        directory,
			ShortDescription: defaultShortDescription,
			Section:          DefaultArchiveSection,
			Architecture:     []string{arch.Host()},
		},
		Build: BuildSection{
			Profiles: []string{string(ProfileDeb)},
		},
		Override: Mapping{},
		Files:    Mapping{},
		Control:  Mapping{},
		User: UserSection{
			Maintainer: []string{util.GetHostname()},
		},
		path: path,
	}
}

// DocumentPath returns the location of the descriptor document of package
// name under path.
func DocumentPath(path, name string) string {
	return filepath.Join(path, name, name)
}

// Exists checks whether the descriptor document of package name exists.
func Exists(path, name string) bool {
	return util.IsRegularFile(DocumentPath(path, name))
}

// New creates a descriptor with default values, applies fields and
// overlays the stored document, if there is one.
func New(path, name string, fields Fields) (*Descriptor, error) {
	d := newDefault(path, name)
	if _, err := d.Update(fields); err != nil {
		return nil, err
	}
	if err := d.load(); err != nil {
		return nil, err
	}
	return d, nil
}

// Read reads the descriptor of package name. A missing document yields a
// descriptor with default values.
func Read(path, name string) (*Descriptor, error) {
	return New(path, name, nil)
}

// Path returns the package directory.
func (d *Descriptor) Path() string {
	return filepath.Join(d.path, d.Name)
}

// DocumentPath returns the descriptor document location.
func (d *Descriptor) DocumentPath() string {
	return DocumentPath(d.path, d.Name)
}

// mappingSection returns the mapping stored as section.
func (d *Descriptor) mappingSection(section string) (Mapping, bool) {
	switch section {
	case SectionOverride:
		return d.Override, true
	case SectionFiles:
		return d.Files, true
	case SectionControl:
		return d.Control, true
	}
	return nil, false
}

// load overlays the stored document on the descriptor field by field.
func (d *Descriptor) load() error {
	docPath := d.DocumentPath()
	cfg, err := loadDocument(docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("No descriptor document at %s, using defaults", docPath)
			return nil
		}
		return err
	}

	for _, section := range SectionNames {
		iniSection, err := cfg.GetSection(section)
		if err != nil {
			continue
		}
		if mapping, isMapping := d.mappingSection(section); isMapping {
			for _, key := range iniSection.Keys() {
				mapping[key.Name()] = key.Value()
			}
			continue
		}
		for _, key := range iniSection.Keys() {
			f, found := lookupField(section, key.Name())
			if !found {
				log.Warnf("Unknown field %q in section %q of %s is skipped",
					key.Name(), section, docPath)
				continue
			}
			if err := f.decode(d, key.Value()); err != nil {
				return &util.ValidationError{
					Path:   docPath,
					Reason: fmt.Sprintf("field %q: %s", key.Name(), err),
				}
			}
		}
	}
	return nil
}

// loadDocument parses the document at docPath.
func loadDocument(docPath string) (*ini.File, error) {
	if _, err := os.Stat(docPath); err != nil {
		return nil, err
	}
	cfg, err := ini.LoadSources(loadOptions, docPath)
	if err != nil {
		return nil, &util.ValidationError{Path: docPath, Reason: err.Error()}
	}
	return cfg, nil
}

// encode builds the INI document of the descriptor.
func (d *Descriptor) encode() (*ini.File, error) {
	cfg := ini.Empty(loadOptions)
	for _, section := range SectionNames {
		iniSection, err := cfg.NewSection(section)
		if err != nil {
			return nil, err
		}
		if mapping, isMapping := d.mappingSection(section); isMapping {
			for _, key := range sortedKeys(mapping) {
				if _, err := iniSection.NewKey(key, mapping[key]); err != nil {
					return nil, err
				}
			}
			continue
		}
		for _, f := range fieldTable {
			if f.section != section {
				continue
			}
			if _, err := iniSection.NewKey(f.key, f.encode(d)); err != nil {
				return nil, err
			}
		}
	}
	return cfg, nil
}

// Write stores the descriptor, replacing the previous document. Values the
// document can't hold without loss are rejected with a ValidationError.
func (d *Descriptor) Write() error {
	if err := d.checkEncodable(); err != nil {
		return err
	}
	cfg, err := d.encode()
	if err != nil {
		return fmt.Errorf("failed to encode descriptor of %s: %w", d.Name, err)
	}
	if err := util.CreateDirectory(d.Path(), util.DirPermissions); err != nil {
		return err
	}
	return util.WriteAtomic(d.DocumentPath(), util.FilePermissions, func(w io.Writer) error {
		_, err := cfg.WriteTo(w)
		return err
	})
}

// Update applies fields whose names exist in exactly one section. It returns
// names of applied fields. Other fields are ignored. Values which can't be
// written back without loss are rejected.
func (d *Descriptor) Update(fields Fields) ([]string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		var sections []string
		for _, section := range SectionNames {
			if mapping, isMapping := d.mappingSection(section); isMapping {
				if _, found := mapping[name]; found {
					sections = append(sections, section)
				}
			} else if _, found := lookupField(section, name); found {
				sections = append(sections, section)
			}
		}
		if len(sections) != 1 {
			log.Debugf("Field %q matches %d sections, ignored", name, len(sections))
			continue
		}

		section := sections[0]
		if mapping, isMapping := d.mappingSection(section); isMapping {
			mapping[name] = fields[name]
		} else {
			f, _ := lookupField(section, name)
			err := f.decode(d, fields[name])
			if err == nil && f.check != nil {
				err = f.check(d)
			}
			if err != nil {
				return applied, &util.ValidationError{
					Path:   d.DocumentPath(),
					Reason: fmt.Sprintf("field %q: %s", name, err),
				}
			}
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// Validate checks the stored document. It must contain exactly the declared
// sections and a non-empty architecture list.
func (d *Descriptor) Validate() error {
	docPath := d.DocumentPath()
	cfg, err := loadDocument(docPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return util.NewNotFoundError("package descriptor", docPath)
		}
		return err
	}

	present := map[string]bool{}
	var unknown []string
	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}
		present[name] = true
		if !isDeclaredSection(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return &util.ValidationError{Path: docPath, Reason: "unknown sections", Sections: unknown}
	}

	var missing []string
	for _, name := range SectionNames {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &util.ValidationError{Path: docPath, Reason: "missing sections", Sections: missing}
	}

	stored, err := Read(d.path, d.Name)
	if err != nil {
		return err
	}
	if len(stored.Package.Architecture) == 0 {
		return &util.ValidationError{Path: docPath, Reason: "architecture list is empty"}
	}
	if _, unknownProfiles := stored.Profiles(); len(unknownProfiles) > 0 {
		log.Warnf("Unknown build profiles in %s: %v", docPath, unknownProfiles)
	}
	return nil
}

func isDeclaredSection(name string) bool {
	for _, section := range SectionNames {
		if section == name {
			return true
		}
	}
	return false
}

// Profiles splits the build profiles into supported and unknown ones.
func (d *Descriptor) Profiles() ([]Profile, []string) {
	var known []Profile
	var unknown []string
	for _, name := range d.Build.Profiles {
		if profile, found := ParseProfile(name); found {
			known = append(known, profile)
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}

// Delete removes the package directory including the descriptor document.
func Delete(path, name string) error {
	dir := filepath.Join(path, name)
	if !util.IsDir(dir) {
		return util.NewNotFoundError("package directory", dir)
	}
	return os.RemoveAll(dir)
}
