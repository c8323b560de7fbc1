package pack

import (
	"fmt"
	"path/filepath"

	"github.com/peondevelopments/aptrepo/cli/arch"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
)

const archAll = "all"

// artifactArch returns the first binary architecture of the package or
// "all" if the package declares none.
func artifactArch(d *descriptor.Descriptor) string {
	for _, name := range d.Package.Architecture {
		if name != arch.SourceArch {
			return arch.Normalize(name)
		}
	}
	return archAll
}

// ArtifactName returns the file name of the package artifact built with
// profile: <name>-<version>_<arch>.<ext>.
func ArtifactName(d *descriptor.Descriptor, profile descriptor.Profile) string {
	return fmt.Sprintf("%s-%s_%s.%s", d.Name, d.Package.Version, artifactArch(d),
		profile.Extension())
}

// artifactPath returns the artifact location in outputDir.
func artifactPath(outputDir string, d *descriptor.Descriptor,
	profile descriptor.Profile) (string, error) {
	path, err := filepath.Abs(filepath.Join(outputDir, ArtifactName(d, profile)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve artifact path: %w", err)
	}
	return path, nil
}
