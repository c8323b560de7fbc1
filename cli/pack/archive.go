package pack

import (
	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/control"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

// archiveBuilder is a structure that implements Builder interface
// with tarball packing behavior.
type archiveBuilder struct {
}

// Build packs the staged payload into a tarball. Metadata directories are
// not archived.
func (builder *archiveBuilder) Build(stagedRoot, outputDir string,
	d *descriptor.Descriptor) (string, error) {
	tarName, err := artifactPath(outputDir, d, descriptor.ProfileTgz)
	if err != nil {
		return "", err
	}

	log.Infof("Creating tarball.")
	if err = util.WriteTgzArchive(stagedRoot, tarName, control.MetadataDirs...); err != nil {
		return "", err
	}
	log.Infof("Package is packed successfully to %s.", tarName)
	return tarName, nil
}
