// Package control synthesizes package control documents from a descriptor
// and a staged package tree.
package control

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/otiai10/copy"

	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// Format selects the field set of a control document.
type Format int

const (
	// Full is the control document of Debian packages.
	Full Format = iota
	// Reduced is the control document of ipk and opk packages.
	Reduced
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case Full:
		return "full"
	case Reduced:
		return "reduced"
	}
	return "unknown"
}

const (
	// DebianDir is the metadata directory of deb packages.
	DebianDir = "DEBIAN"
	// ControlDir is the metadata directory of ipk and opk packages.
	ControlDir = "CONTROL"

	// ControlFileName is the name of the synthesized control document.
	ControlFileName = "control"
	// Md5sumsFileName is the name of the payload checksums document.
	Md5sumsFileName = "md5sums"

	scriptPermissions = 0o755
)

// MetadataDirs lists metadata directory names of all formats.
var MetadataDirs = []string{DebianDir, ControlDir}

// WellKnown lists control document names recognized by package managers.
var WellKnown = []string{
	"control", "preinst", "postinst", "prerm", "postrm", "conffiles", "md5sums",
	"templates", "config", "triggers", "shlibs", "symbols",
}

// FormatFor returns the control format and the metadata directory of the
// profile. Profiles without metadata report false.
func FormatFor(profile descriptor.Profile) (Format, string, bool) {
	switch profile {
	case descriptor.ProfileDeb:
		return Full, DebianDir, true
	case descriptor.ProfileIpk, descriptor.ProfileOpk:
		return Reduced, ControlDir, true
	}
	return 0, "", false
}

// Field is a single control document entry.
type Field struct {
	Name  string
	Value string
}

// Document is an ordered control document.
type Document struct {
	Fields []Field
	// Description holds long description lines following the Description field.
	Description []string
}

// String renders the document.
func (doc *Document) String() string {
	var sb strings.Builder
	for _, field := range doc.Fields {
		fmt.Fprintf(&sb, "%s: %s\n", field.Name, field.Value)
		if field.Name == "Description" {
			for _, line := range doc.Description {
				if strings.TrimSpace(line) == "" {
					line = "."
				}
				fmt.Fprintf(&sb, " %s\n", line)
			}
		}
	}
	return sb.String()
}

type documentBuilder struct {
	doc *Document
}

func (b documentBuilder) add(name, value string) {
	b.doc.Fields = append(b.doc.Fields, Field{Name: name, Value: value})
}

func (b documentBuilder) addOptional(name string, values []string) {
	if len(values) > 0 {
		b.add(name, strings.Join(values, ", "))
	}
}

// Synthesize builds the control document of the package staged at stagedRoot.
func Synthesize(d *descriptor.Descriptor, stagedRoot string, format Format) (*Document, error) {
	depends, err := renderDeps(d, "depends", d.Package.Depends)
	if err != nil {
		return nil, err
	}

	doc := &Document{Description: d.Package.LongDescription}
	b := documentBuilder{doc: doc}
	b.add("Package", d.Name)
	b.add("Version", d.Package.Version)
	b.add("Architecture", strings.Join(d.Package.Architecture, " "))

	switch format {
	case Full:
		recommends, err := renderDeps(d, "recommends", d.Package.Recommends)
		if err != nil {
			return nil, err
		}
		suggests, err := renderDeps(d, "suggests", d.Package.Suggests)
		if err != nil {
			return nil, err
		}
		replaces, err := renderDeps(d, "replaces", d.Package.Replaces)
		if err != nil {
			return nil, err
		}
		size, err := InstalledSize(stagedRoot, MetadataDirs...)
		if err != nil {
			return nil, err
		}

		b.add("Section", descriptor.ArchiveSectionOrMisc(d.Package.Section))
		b.add("Essential", yesNo(d.Package.Essential))
		b.addOptional("Depends", depends)
		b.addOptional("Recommends", recommends)
		b.addOptional("Suggests", suggests)
		b.addOptional("Replaces", replaces)
		b.add("Provides", strings.Join(d.Package.Provides, ", "))
		b.add("Installed-Size", strconv.FormatInt(size, 10))
		if d.User.Homepage != "" {
			b.add("Homepage", d.User.Homepage)
		}
		b.add("Package-Type", string(descriptor.ProfileDeb))
		b.addOptional("Maintainer", d.User.Maintainer)
	case Reduced:
		b.add("Maintainer", strings.Join(d.User.Maintainer, ", "))
		b.add("Depends", strings.Join(depends, ", "))
	default:
		return nil, fmt.Errorf("unknown control format %d", format)
	}
	b.add("Description", d.Package.ShortDescription)
	return doc, nil
}

func renderDeps(d *descriptor.Descriptor, field string, deps []string) ([]string, error) {
	rendered, err := RenderDependencies(deps)
	if err != nil {
		return nil, &util.ValidationError{
			Path:   d.DocumentPath(),
			Reason: fmt.Sprintf("field %q: %s", field, err),
		}
	}
	return rendered, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// WriteControlDir creates the metadata directory of the staged package. Files
// named in the Control mapping are copied into it and replace synthesized
// documents of the same name.
func WriteControlDir(d *descriptor.Descriptor, stagedRoot string, format Format,
	metadataDir string) error {
	destDir := filepath.Join(stagedRoot, metadataDir)
	log.Debugf("Create control directory %s", destDir)
	if err := util.CreateDirectory(destDir, util.DirPermissions); err != nil {
		return err
	}

	for _, name := range sortedNames(d.Control) {
		if !isWellKnown(name) {
			log.Debugf("Control document %q is not a well-known name", name)
		}
		if err := copyControlFile(d, name, destDir); err != nil {
			return err
		}
	}

	if _, overridden := d.Control[ControlFileName]; !overridden {
		doc, err := Synthesize(d, stagedRoot, format)
		if err != nil {
			return err
		}
		if err := util.WriteFileAtomic(filepath.Join(destDir, ControlFileName),
			[]byte(doc.String()), util.FilePermissions); err != nil {
			return err
		}
		log.Infof("Created %s in %s", ControlFileName, destDir)
	}

	if _, overridden := d.Control[Md5sumsFileName]; !overridden && format == Full {
		if err := writeMd5sums(stagedRoot, destDir); err != nil {
			return err
		}
	}
	return nil
}

// copyControlFile copies a Control mapping entry into destDir.
func copyControlFile(d *descriptor.Descriptor, name, destDir string) error {
	src := d.Control[name]
	if !filepath.IsAbs(src) {
		src = filepath.Join(d.Path(), src)
	}
	if !util.IsRegularFile(src) {
		return util.NewNotFoundError(fmt.Sprintf("control document %q", name), src)
	}

	dest := filepath.Join(destDir, name)
	if err := copy.Copy(src, dest); err != nil {
		return fmt.Errorf("failed to copy control document %q: %w", name, err)
	}
	if err := os.Chmod(dest, scriptPermissions); err != nil {
		return err
	}
	log.Debugf("Copied %s to %s", src, dest)
	return nil
}

// writeMd5sums writes checksums of payload files.
func writeMd5sums(stagedRoot, destDir string) error {
	stagedRoot = filepath.Clean(stagedRoot)
	return util.WriteAtomic(filepath.Join(destDir, Md5sumsFileName), util.FilePermissions,
		func(w io.Writer) error {
			return filepath.WalkDir(stagedRoot, func(path string, entry fs.DirEntry,
				err error) error {
				if err != nil {
					return err
				}
				if entry.IsDir() {
					if filepath.Dir(path) == stagedRoot && isMetadataDir(entry.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if !entry.Type().IsRegular() {
					return nil
				}
				sum, err := util.FileMD5Hex(path)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(stagedRoot, path)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s  %s\n", sum, filepath.ToSlash(rel))
				return err
			})
		})
}

func isMetadataDir(name string) bool {
	for _, dir := range MetadataDirs {
		if dir == name {
			return true
		}
	}
	return false
}

func isWellKnown(name string) bool {
	for _, known := range WellKnown {
		if known == name {
			return true
		}
	}
	return false
}

func sortedNames(m descriptor.Mapping) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
