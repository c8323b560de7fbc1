package pack

import (
	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// debBuilder is a structure that implements Builder interface
// with dpkg-deb packing behavior.
type debBuilder struct {
	tools Tools
}

// Build packs the staged tree with its DEBIAN directory into a deb package.
func (builder *debBuilder) Build(stagedRoot, outputDir string,
	d *descriptor.Descriptor) (string, error) {
	packagePath, err := artifactPath(outputDir, d, descriptor.ProfileDeb)
	if err != nil {
		return "", err
	}

	log.Infof("Building %s", packagePath)
	err = builder.tools.Runner.Run(util.Command{
		Program: builder.tools.DpkgDeb,
		Args:    []string{"--build", stagedRoot, packagePath},
	})
	if err != nil {
		return "", err
	}

	log.Infof("Created result DEB package: %s", packagePath)
	return packagePath, nil
}
