package descriptor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	listSeparator        = ","
	listJoiner           = ", "
	descriptionSeparator = " . "
	// blankLine stands for an empty description line.
	blankLine = "."
)

// field describes how a single typed value of a fixed section is stored
// in the descriptor document.
type field struct {
	section string
	key     string
	encode  func(d *Descriptor) string
	decode  func(d *Descriptor, value string) error
	// check reports values which can't be stored without loss. Nil means
	// every value can.
	check func(d *Descriptor) error
}

// fieldTable enumerates every field of the fixed sections. The order is
// the order of keys in the written document.
var fieldTable = []field{
	stringField(SectionPackage, "version", func(d *Descriptor) *string { return &d.Package.Version }),
	listField(SectionPackage, "provides",
		func(d *Descriptor) *[]string { return &d.Package.Provides },
		func(d *Descriptor) []string { return []string{d.Name} }),
	stringField(SectionPackage, "directory",
		func(d *Descriptor) *string { return &d.Package.Directory }),
	boolField(SectionPackage, "essential", func(d *Descriptor) *bool { return &d.Package.Essential }),
	stringField(SectionPackage, "desc",
		func(d *Descriptor) *string { return &d.Package.ShortDescription }),
	linesField(SectionPackage, "description",
		func(d *Descriptor) *[]string { return &d.Package.LongDescription }),
	listField(SectionPackage, "depends",
		func(d *Descriptor) *[]string { return &d.Package.Depends }, nil),
	listField(SectionPackage, "recommends",
		func(d *Descriptor) *[]string { return &d.Package.Recommends }, nil),
	listField(SectionPackage, "suggests",
		func(d *Descriptor) *[]string { return &d.Package.Suggests }, nil),
	listField(SectionPackage, "replaces",
		func(d *Descriptor) *[]string { return &d.Package.Replaces }, nil),
	stringField(SectionPackage, "section", func(d *Descriptor) *string { return &d.Package.Section }),
	listField(SectionPackage, "architecture",
		func(d *Descriptor) *[]string { return &d.Package.Architecture },
		func(d *Descriptor) []string { return []string{arch.Host()} }),

	listField(SectionBuild, "profiles",
		func(d *Descriptor) *[]string { return &d.Build.Profiles },
		func(d *Descriptor) []string { return []string{string(ProfileDeb)} }),

	stringField(SectionUser, "author", func(d *Descriptor) *string { return &d.User.Author }),
	listField(SectionUser, "maintainer",
		func(d *Descriptor) *[]string { return &d.User.Maintainer }, nil),
	stringField(SectionUser, "homepage", func(d *Descriptor) *string { return &d.User.Homepage }),
}

// fieldIndex maps a section name and a key to the field.
var fieldIndex = map[string]map[string]*field{}

func init() {
	if err := buildFieldIndex(); err != nil {
		panic(err)
	}
}

// buildFieldIndex checks the field table and fills fieldIndex.
func buildFieldIndex() error {
	for i := range fieldTable {
		f := &fieldTable[i]
		if !isFixedSection(f.section) {
			return fmt.Errorf("field %q belongs to undeclared or mapping section %q",
				f.key, f.section)
		}
		keys, found := fieldIndex[f.section]
		if !found {
			keys = map[string]*field{}
			fieldIndex[f.section] = keys
		}
		if _, dup := keys[f.key]; dup {
			return fmt.Errorf("field %q is declared twice in section %q", f.key, f.section)
		}
		keys[f.key] = f
	}
	return nil
}

// lookupField returns the field declared in section under key.
func lookupField(section, key string) (*field, bool) {
	f, found := fieldIndex[section][key]
	return f, found
}

// FieldNames returns "section.key" names of all fixed fields.
func FieldNames() []string {
	names := make([]string, 0, len(fieldTable))
	for _, f := range fieldTable {
		names = append(names, f.section+"."+f.key)
	}
	return names
}

func stringField(section, key string, ref func(d *Descriptor) *string) field {
	return field{
		section: section,
		key:     key,
		encode:  func(d *Descriptor) string { return *ref(d) },
		decode: func(d *Descriptor, value string) error {
			*ref(d) = value
			return nil
		},
	}
}

// listField declares a comma separated sequence field. Empty values decode
// to fallback, if it is set.
func listField(section, key string, ref func(d *Descriptor) *[]string,
	fallback func(d *Descriptor) []string) field {
	return field{
		section: section,
		key:     key,
		encode:  func(d *Descriptor) string { return strings.Join(*ref(d), listJoiner) },
		decode: func(d *Descriptor, value string) error {
			items := util.SplitList(value)
			if len(items) == 0 && fallback != nil {
				items = fallback(d)
			}
			*ref(d) = items
			return nil
		},
		check: func(d *Descriptor) error {
			for _, item := range *ref(d) {
				switch {
				case item == "":
					return errors.New("empty element")
				case strings.TrimSpace(item) != item:
					return fmt.Errorf("element %q has surrounding spaces", item)
				case strings.ContainsAny(item, listSeparator+"\n"):
					return fmt.Errorf("element %q contains a separator", item)
				}
			}
			return nil
		},
	}
}

// linesField declares a sequence of text lines joined with " . ". Blank
// lines are stored as ".".
func linesField(section, key string, ref func(d *Descriptor) *[]string) field {
	return field{
		section: section,
		key:     key,
		encode: func(d *Descriptor) string {
			lines := make([]string, 0, len(*ref(d)))
			for _, line := range *ref(d) {
				if line == "" {
					line = blankLine
				}
				lines = append(lines, line)
			}
			return strings.Join(lines, descriptionSeparator)
		},
		decode: func(d *Descriptor, value string) error {
			*ref(d) = decodeLines(value)
			return nil
		},
		check: func(d *Descriptor) error {
			for _, line := range *ref(d) {
				switch {
				case line == blankLine:
					return fmt.Errorf("line %q is reserved for blank lines", line)
				case strings.TrimSpace(line) != line:
					return fmt.Errorf("line %q has surrounding spaces", line)
				case strings.Contains(line, descriptionSeparator),
					strings.HasSuffix(line, " "+blankLine), strings.Contains(line, "\n"):
					return fmt.Errorf("line %q contains a separator", line)
				}
			}
			return nil
		},
	}
}

func decodeLines(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(value, descriptionSeparator) {
		if line = strings.TrimSpace(line); line == blankLine {
			line = ""
		}
		lines = append(lines, line)
	}
	return lines
}

// checkMappingKey reports keys the INI codec reads back as comments, section
// headers or generated keys.
func checkMappingKey(key string) error {
	switch {
	case key == "" || key == "-":
		return fmt.Errorf("key %q is reserved", key)
	case strings.TrimSpace(key) != key:
		return fmt.Errorf("key %q has surrounding spaces", key)
	case strings.ContainsAny(key[:1], "[#;"):
		return fmt.Errorf("key %q starts with %q", key, key[:1])
	case strings.Contains(key, "\n"):
		return fmt.Errorf("key %q contains a line break", key)
	}
	return nil
}

// checkEncodable reports the first value the document can't store.
func (d *Descriptor) checkEncodable() error {
	for _, f := range fieldTable {
		if f.check == nil {
			continue
		}
		if err := f.check(d); err != nil {
			return &util.ValidationError{
				Path:   d.DocumentPath(),
				Reason: fmt.Sprintf("field %q: %s", f.key, err),
			}
		}
	}
	for _, section := range SectionNames {
		mapping, isMapping := d.mappingSection(section)
		if !isMapping {
			continue
		}
		for _, key := range sortedKeys(mapping) {
			if err := checkMappingKey(key); err != nil {
				return &util.ValidationError{
					Path:   d.DocumentPath(),
					Reason: fmt.Sprintf("section %q: %s", section, err),
				}
			}
			if strings.Contains(mapping[key], "\n") {
				return &util.ValidationError{
					Path:   d.DocumentPath(),
					Reason: fmt.Sprintf("section %q: value of %q contains a line break",
						section, key),
				}
			}
		}
	}
	return nil
}

func boolField(section, key string, ref func(d *Descriptor) *bool) field {
	return field{
		section: section,
		key:     key,
		encode:  func(d *Descriptor) string { return encodeBool(*ref(d)) },
		decode: func(d *Descriptor, value string) error {
			parsed, err := decodeBool(value)
			if err != nil {
				return err
			}
			*ref(d) = parsed
			return nil
		},
	}
}

func encodeBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

// decodeBool accepts "true" and "false" in any case. An empty value is false.
func decodeBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	switch {
	case strings.EqualFold(value, "true"):
		return true, nil
	case value == "" || strings.EqualFold(value, "false"):
		return false, nil
	}
	return false, fmt.Errorf("malformed boolean %q", value)
}

// sortedKeys returns mapping keys in a stable order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FieldValue is an encoded value of a descriptor section key.
type FieldValue struct {
	Section string
	Key     string
	Value   string
}

// Values returns encoded values of every section in document order.
func (d *Descriptor) Values() []FieldValue {
	var values []FieldValue
	for _, section := range SectionNames {
		if mapping, isMapping := d.mappingSection(section); isMapping {
			for _, key := range sortedKeys(mapping) {
				values = append(values, FieldValue{section, key, mapping[key]})
			}
			continue
		}
		for _, f := range fieldTable {
			if f.section == section {
				values = append(values, FieldValue{section, f.key, f.encode(d)})
			}
		}
	}
	return values
}
