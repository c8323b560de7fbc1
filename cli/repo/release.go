package repo

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/security"
	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	// ReleaseFileName is the name of Release documents.
	ReleaseFileName = "Release"
	// ReleaseDateFormat is the format of the Release Date field.
	ReleaseDateFormat = "Mon, 02 Jan 2006 15:04:05 UTC"

	packagesFileName   = "Packages"
	packagesGzFileName = "Packages.gz"
)

// now returns the Release timestamp.
var now = func() time.Time {
	return time.Now().UTC()
}

// releaseField is a single Release document line.
type releaseField struct {
	name  string
	value string
}

// Release is an ordered Release document.
type Release struct {
	fields []releaseField
	md5    []security.ChecksumLine
	sha256 []security.ChecksumLine
}

func (r *Release) add(name, value string) {
	r.fields = append(r.fields, releaseField{name: name, value: value})
}

// String renders the document.
func (r *Release) String() string {
	var sb strings.Builder
	for _, field := range r.fields {
		fmt.Fprintf(&sb, "%s: %s\n", field.name, field.value)
	}
	writeChecksums(&sb, "MD5Sum", r.md5)
	writeChecksums(&sb, "SHA256", r.sha256)
	return sb.String()
}

func writeChecksums(sb *strings.Builder, title string, lines []security.ChecksumLine) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, line := range lines {
		sb.WriteString(line.String() + "\n")
	}
}

// addChecksums hashes files relative to dir.
func (r *Release) addChecksums(dir string, files []string) error {
	for _, file := range files {
		md5Line, err := security.MD5SumLine(dir, file)
		if err != nil {
			return err
		}
		shaLine, err := security.SHA256Line(dir, file)
		if err != nil {
			return err
		}
		r.md5 = append(r.md5, md5Line)
		r.sha256 = append(r.sha256, shaLine)
	}
	return nil
}

// LeafRelease builds the Release document of a grid leaf.
func LeafRelease(l *Layout, leaf Leaf) (*Release, error) {
	r := &Release{}
	r.add("Archive", leaf.Platform)
	r.add("Component", leaf.Component)
	r.add("Origin", l.Name)
	r.add("Label", l.Name)
	r.add("Architecture", leaf.Arch)

	var indexes []string
	for _, name := range []string{packagesFileName, packagesGzFileName} {
		if util.IsRegularFile(filepath.Join(leaf.Path, name)) {
			indexes = append(indexes, name)
		}
	}
	if err := r.addChecksums(leaf.Path, indexes); err != nil {
		return nil, err
	}
	return r, nil
}

// TopRelease builds the top-level Release document. Index files and leaf
// Release documents found under the grid are hashed.
func TopRelease(l *Layout, date time.Time) (*Release, error) {
	r := &Release{}
	r.add("Origin", l.Name)
	r.add("Label", l.Name)
	r.add("Suite", strings.Join(l.Platforms, " "))
	r.add("Codename", l.Name)
	r.add("Date", date.UTC().Format(ReleaseDateFormat))
	r.add("Architectures", strings.Join(arch.NormalizeAll(l.Architectures), " "))
	r.add("Components", strings.Join(l.Components, " "))
	r.add("Description", l.Description)

	dists := l.Dists()
	var files []string
	err := filepath.WalkDir(dists, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || filepath.Dir(path) == dists {
			return nil
		}
		switch entry.Name() {
		case packagesFileName, packagesGzFileName, ReleaseFileName:
			rel, err := filepath.Rel(dists, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect index files of %s: %w", dists, err)
	}
	if err := r.addChecksums(dists, files); err != nil {
		return nil, err
	}
	return r, nil
}

// WriteReleases regenerates leaf Release documents of existing leaves and the
// top-level Release document.
func WriteReleases(l *Layout) error {
	for _, leaf := range LeafCells(l, nil) {
		if !util.IsDir(leaf.Path) {
			continue
		}
		release, err := LeafRelease(l, leaf)
		if err != nil {
			return err
		}
		if err := util.WriteFileAtomic(filepath.Join(leaf.Path, ReleaseFileName),
			[]byte(release.String()), util.FilePermissions); err != nil {
			return err
		}
	}

	release, err := TopRelease(l, now())
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(filepath.Join(l.Dists(), ReleaseFileName),
		[]byte(release.String()), util.FilePermissions)
}
