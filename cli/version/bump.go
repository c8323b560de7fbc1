package version

import (
	"fmt"
	"strconv"
	"strings"

	goVersion "github.com/hashicorp/go-version"
)

// segmentCount returns the number of release segments written in version.
func segmentCount(version string) int {
	core := strings.TrimPrefix(version, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return len(strings.Split(core, "."))
}

// Bump increments the last release segment of version. The number of
// segments, the "v" prefix, pre-release and metadata parts are kept.
func Bump(version string) (string, error) {
	parsed, err := goVersion.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("failed to parse version %q: %w", version, err)
	}

	segments := parsed.Segments()
	count := segmentCount(parsed.Original())
	if count > len(segments) {
		count = len(segments)
	}
	segments = segments[:count]
	segments[count-1]++

	numbers := make([]string, 0, len(segments))
	for _, num := range segments {
		numbers = append(numbers, strconv.Itoa(num))
	}

	bumped := strings.Join(numbers, ".")
	if strings.HasPrefix(parsed.Original(), "v") {
		bumped = "v" + bumped
	}
	if pre := parsed.Prerelease(); pre != "" {
		bumped += "-" + pre
	}
	if meta := parsed.Metadata(); meta != "" {
		bumped += "+" + meta
	}
	return bumped, nil
}

// Compare compares two versions. Versions which can't be parsed are
// compared as strings and sort after parsable ones.
func Compare(a, b string) int {
	va, errA := goVersion.NewVersion(a)
	vb, errB := goVersion.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

