package descriptor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/util"
)

func writeDocument(t *testing.T, path, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(path, name), 0o755))
	require.NoError(t, os.WriteFile(DocumentPath(path, name), []byte(content), 0o644))
}

const validDocument = `[Package]
version = 1.2
architecture = amd64

[Build]
profiles = deb

[Override]

[Files]
bin/foo = usr/bin/foo

[Control]

[User]
maintainer = Jane Doe <jane@example.com>
`

func TestNewDefaults(t *testing.T) {
	tempDir := t.TempDir()

	d, err := New(tempDir, "foo", nil)
	require.NoError(t, err)

	assert.Equal(t, "foo", d.Name)
	assert.Equal(t, "0.1", d.Package.Version)
	assert.Equal(t, []string{"foo"}, d.Package.Provides)
	assert.Equal(t, tempDir, d.Package.Directory)
	assert.False(t, d.Package.Essential)
	assert.Equal(t, "No Description Set", d.Package.ShortDescription)
	assert.Equal(t, "misc", d.Package.Section)
	assert.Equal(t, []string{arch.Host()}, d.Package.Architecture)
	assert.Equal(t, []string{"deb"}, d.Build.Profiles)
	assert.Equal(t, []string{util.GetHostname()}, d.User.Maintainer)
	assert.Empty(t, d.Files)
	assert.Equal(t, filepath.Join(tempDir, "foo", "foo"), d.DocumentPath())
	assert.False(t, Exists(tempDir, "foo"))
}

func TestNewAppliesFieldsAndOverlaysDocument(t *testing.T) {
	tempDir := t.TempDir()
	writeDocument(t, tempDir, "foo", validDocument)

	d, err := New(tempDir, "foo", Fields{"version": "9.9", "author": "John"})
	require.NoError(t, err)

	// Stored values win over explicit fields.
	assert.Equal(t, "1.2", d.Package.Version)
	assert.Equal(t, "John", d.User.Author)
	assert.Equal(t, []string{"amd64"}, d.Package.Architecture)
	assert.Equal(t, Mapping{"bin/foo": "usr/bin/foo"}, d.Files)
	assert.Equal(t, []string{"Jane Doe <jane@example.com>"}, d.User.Maintainer)
}

func TestWriteReadRoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	d, err := New(tempDir, "foo", nil)
	require.NoError(t, err)
	d.Package.Version = "2.0.1"
	d.Package.Essential = true
	d.Package.ShortDescription = "Foo tool"
	d.Package.LongDescription = []string{"First line, with comma", "Second line"}
	d.Package.Depends = []string{"libc6 (>= 2.31)", "bar"}
	d.Package.Recommends = []string{"baz"}
	d.Package.Suggests = []string{"qux"}
	d.Package.Replaces = []string{"old-foo"}
	d.Package.Section = "utils"
	d.Package.Architecture = []string{"amd64", "source"}
	d.Build.Profiles = []string{"deb", "tar.gz"}
	d.Files["build/foo"] = "usr/bin/foo"
	d.Files["share"] = "usr/share/foo"
	d.Override["etc/foo.conf"] = "etc/foo/foo.conf"
	d.Control["postinst"] = "scripts/postinst"
	d.User.Author = "Jane Doe"
	d.User.Homepage = "https://example.com/foo"
	require.NoError(t, d.Write())
	assert.True(t, Exists(tempDir, "foo"))

	read, err := Read(tempDir, "foo")
	require.NoError(t, err)
	assert.Equal(t, d, read)
	require.NoError(t, read.Validate())
}

func TestRoundTripBlankLinesAndPadding(t *testing.T) {
	tempDir := t.TempDir()

	d, err := New(tempDir, "foo", nil)
	require.NoError(t, err)
	d.Package.ShortDescription = "  padded  "
	d.Package.LongDescription = []string{"Para one", "", "Para two uses a.b", ". leading dot"}
	require.NoError(t, d.Write())

	read, err := Read(tempDir, "foo")
	require.NoError(t, err)
	assert.Equal(t, d, read)
}

func TestWriteRejectsLossyValues(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(d *Descriptor)
	}{
		{"separator in line", func(d *Descriptor) {
			d.Package.LongDescription = []string{"uses a . b"}
		}},
		{"dot line", func(d *Descriptor) { d.Package.LongDescription = []string{"."} }},
		{"trailing dot", func(d *Descriptor) {
			d.Package.LongDescription = []string{"ends with .", "next"}
		}},
		{"padded line", func(d *Descriptor) { d.Package.LongDescription = []string{" indented"} }},
		{"comma in element", func(d *Descriptor) { d.Package.Depends = []string{"a, b"} }},
		{"empty element", func(d *Descriptor) { d.Package.Depends = []string{"a", ""} }},
		{"comment key", func(d *Descriptor) { d.Files["#weird"] = "usr/share/weird" }},
		{"semicolon key", func(d *Descriptor) { d.Override[";weird"] = "etc/weird" }},
		{"section key", func(d *Descriptor) { d.Files["[x]"] = "usr/share/x" }},
		{"generated key", func(d *Descriptor) { d.Control["-"] = "scripts/x" }},
		{"padded key", func(d *Descriptor) { d.Files[" bin"] = "usr/bin" }},
		{"multiline value", func(d *Descriptor) { d.Files["bin"] = "usr/bin\nusr/sbin" }},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			d, err := New(t.TempDir(), "foo", nil)
			require.NoError(t, err)
			d.Files["ok"] = "usr/share/ok"
			testCase.modify(d)

			var validationErr *util.ValidationError
			require.True(t, errors.As(d.Write(), &validationErr))
			assert.False(t, Exists(filepath.Dir(d.Path()), "foo"))
		})
	}
}

func TestRoundTripNormalizesEmptyToDefaults(t *testing.T) {
	tempDir := t.TempDir()

	d, err := New(tempDir, "foo", nil)
	require.NoError(t, err)
	d.Package.Provides = nil
	d.Build.Profiles = nil
	require.NoError(t, d.Write())

	read, err := Read(tempDir, "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, read.Package.Provides)
	assert.Equal(t, []string{"deb"}, read.Build.Profiles)
	assert.Nil(t, read.Package.Depends)
}

func TestWriteOverwritesDocument(t *testing.T) {
	tempDir := t.TempDir()

	d, err := New(tempDir, "foo", nil)
	require.NoError(t, err)
	d.Files["a"] = "b"
	require.NoError(t, d.Write())

	delete(d.Files, "a")
	require.NoError(t, d.Write())

	content, err := os.ReadFile(d.DocumentPath())
	require.NoError(t, err)
	assert.NotContains(t, string(content), "a = b")

	entries, err := os.ReadDir(d.Path())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdate(t *testing.T) {
	d, err := New(t.TempDir(), "foo", nil)
	require.NoError(t, err)
	d.Files["bin/foo"] = "usr/bin/foo"
	d.Control["version"] = "scripts/version"

	applied, err := d.Update(Fields{
		"author":  "Jane",
		"bin/foo": "usr/local/bin/foo",
		"depends": "a, b",
		// Exists both in Package and Control.
		"version": "3.0",
		// Exists nowhere.
		"unknown": "value",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"author", "bin/foo", "depends"}, applied)
	assert.Equal(t, "Jane", d.User.Author)
	assert.Equal(t, "usr/local/bin/foo", d.Files["bin/foo"])
	assert.Equal(t, []string{"a", "b"}, d.Package.Depends)
	assert.Equal(t, "0.1", d.Package.Version)
	assert.NotContains(t, d.Files, "unknown")
}

func TestUpdateDescription(t *testing.T) {
	d, err := New(t.TempDir(), "foo", nil)
	require.NoError(t, err)

	_, err = d.Update(Fields{"description": "Para one . . . Para two"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Para one", "", "Para two"}, d.Package.LongDescription)

	_, err = d.Update(Fields{"description": "Para one . ends with ."})
	var validationErr *util.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestDecodeBool(t *testing.T) {
	testCases := []struct {
		value    string
		expected bool
		isErr    bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{" True ", true, false},
		{"false", false, false},
		{"False", false, false},
		{"", false, false},
		{"yes", false, true},
		{"1", false, true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.value, func(t *testing.T) {
			actual, err := decodeBool(testCase.value)
			if testCase.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, actual)
		})
	}
}

func TestReadMalformedBool(t *testing.T) {
	tempDir := t.TempDir()
	writeDocument(t, tempDir, "foo", "[Package]\nessential = maybe\n")

	_, err := Read(tempDir, "foo")
	var validationErr *util.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Reason, "essential")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name     string
		document string
		isValid  bool
		sections []string
	}{
		{
			name:     "exactly six sections",
			document: validDocument,
			isValid:  true,
		},
		{
			name:     "bogus section",
			document: validDocument + "\n[Bogus]\nkey = value\n",
			sections: []string{"Bogus"},
		},
		{
			name:     "missing sections",
			document: "[Package]\nversion = 1.0\n",
			sections: []string{"Build", "Override", "Files", "Control", "User"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeDocument(t, tempDir, "foo", testCase.document)

			d, err := New(tempDir, "foo", nil)
			require.NoError(t, err)
			err = d.Validate()
			if testCase.isValid {
				assert.NoError(t, err)
				return
			}
			var validationErr *util.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, testCase.sections, validationErr.Sections)
		})
	}
}

func TestValidateMissingDocument(t *testing.T) {
	d, err := New(t.TempDir(), "foo", nil)
	require.NoError(t, err)

	var notFound *util.NotFoundError
	assert.True(t, errors.As(d.Validate(), &notFound))
}

func TestUnknownFieldIsSkipped(t *testing.T) {
	tempDir := t.TempDir()
	writeDocument(t, tempDir, "foo", strings.Replace(validDocument,
		"[Build]", "[Build]\ncompiler = gcc", 1))

	d, err := Read(tempDir, "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"deb"}, d.Build.Profiles)
}

func TestProfiles(t *testing.T) {
	d, err := New(t.TempDir(), "foo", Fields{"profiles": "deb, rpm, tar.gz"})
	require.NoError(t, err)

	known, unknown := d.Profiles()
	assert.Equal(t, []Profile{ProfileDeb, ProfileTgz}, known)
	assert.Equal(t, []string{"rpm"}, unknown)
}

func TestArchiveSectionOrMisc(t *testing.T) {
	assert.Equal(t, "utils", ArchiveSectionOrMisc("utils"))
	assert.Equal(t, "misc", ArchiveSectionOrMisc("toys"))
	assert.Equal(t, "misc", ArchiveSectionOrMisc(""))
}

func TestDelete(t *testing.T) {
	tempDir := t.TempDir()
	writeDocument(t, tempDir, "foo", validDocument)

	require.NoError(t, Delete(tempDir, "foo"))
	assert.NoDirExists(t, filepath.Join(tempDir, "foo"))

	var notFound *util.NotFoundError
	assert.True(t, errors.As(Delete(tempDir, "foo"), &notFound))
}

func TestFieldTable(t *testing.T) {
	names := FieldNames()
	assert.Contains(t, names, "Package.version")
	assert.Contains(t, names, "Build.profiles")
	assert.Contains(t, names, "User.homepage")
	for _, name := range names {
		section := strings.SplitN(name, ".", 2)[0]
		assert.True(t, isFixedSection(section), name)
	}
}

func TestValues(t *testing.T) {
	tempDir := t.TempDir()
	writeDocument(t, tempDir, "foo", validDocument)

	d, err := Read(tempDir, "foo")
	require.NoError(t, err)

	values := d.Values()
	assert.Equal(t, FieldValue{SectionPackage, "version", "1.2"}, values[0])
	assert.Contains(t, values, FieldValue{SectionFiles, "bin/foo", "usr/bin/foo"})
	assert.Contains(t, values, FieldValue{SectionUser, "maintainer",
		"Jane Doe <jane@example.com>"})
	assert.Contains(t, values, FieldValue{SectionBuild, "profiles", "deb"})
	assert.Equal(t, SectionUser, values[len(values)-1].Section)
}
