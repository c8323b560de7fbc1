// Package arch maps host reported CPU architectures to Debian architecture
// names and to repository directory names.
package arch

const (
	// SourceArch is a pseudo architecture of source packages. Its directory
	// name is never prefixed.
	SourceArch = "source"
	// DirPrefix is prepended to binary architecture directory names.
	DirPrefix = "binary-"
)

// archTable maps `uname -m` style names to Debian architecture names.
var archTable = map[string]string{
	"x86_64":  "amd64",
	"x86":     "i386",
	"i386":    "i386",
	"i586":    "i386",
	"i686":    "i386",
	"armv6l":  "armhf",
	"armv7l":  "armhf",
	"aarch64": "arm64",
}

// Normalize returns the Debian name of the host architecture. Unknown names
// are returned unchanged.
func Normalize(hostArch string) string {
	if name, found := archTable[hostArch]; found {
		return name
	}
	return hostArch
}

// DirName returns the name of the repository directory holding packages of
// the passed architecture.
func DirName(arch string) string {
	if arch == SourceArch {
		return arch
	}
	return DirPrefix + Normalize(arch)
}

// NormalizeAll normalizes every architecture, dropping duplicates and keeping
// the first occurrence order.
func NormalizeAll(archs []string) []string {
	seen := make(map[string]struct{}, len(archs))
	result := make([]string, 0, len(archs))
	for _, a := range archs {
		name := Normalize(a)
		if _, found := seen[name]; found {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

// Host returns the Debian name of the current machine architecture.
func Host() string {
	return Normalize(machine())
}
