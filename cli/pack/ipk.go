package pack

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"

	"github.com/peondevelopments/aptrepo/cli/control"
	"github.com/peondevelopments/aptrepo/cli/descriptor"
	"github.com/peondevelopments/aptrepo/cli/util"
)

const (
	dataArchiveName    = "data.tar.gz"
	controlArchiveName = "control.tar.gz"

	debianBinaryFileName    = "debian-binary"
	debianBinaryFileContent = "2.0\n"
)

// arBuilder is a structure that implements Builder interface
// with ipk and opk packing behavior.
//
// An ipk package is an ar archive that contains debian-binary, control.tar.gz
// and data.tar.gz files:
//
//	debian-binary  : contains format version string (2.0)
//	control.tar.gz : control files (control, preinst etc.)
//	data.tar.gz    : package files
type arBuilder struct {
	profile descriptor.Profile
	tools   Tools
}

// Build packs the staged tree with its CONTROL directory into an ar archive.
func (builder *arBuilder) Build(stagedRoot, outputDir string,
	d *descriptor.Descriptor) (string, error) {
	controlDirPath := filepath.Join(stagedRoot, control.ControlDir)
	if !util.IsDir(controlDirPath) {
		return "", util.NewNotFoundError("control directory", controlDirPath)
	}

	packagePath, err := artifactPath(outputDir, d, builder.profile)
	if err != nil {
		return "", err
	}

	// Create a directory, where the package members will be built.
	packageDir, err := os.MkdirTemp("", "aptrepo_"+string(builder.profile))
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(packageDir); err != nil {
			log.Warnf("Failed to remove a temporary directory %s: %s", packageDir, err)
		}
	}()
	log.Debugf("Members of the package are located in: %s", packageDir)

	// Create data.tar.gz.
	dataArchivePath := filepath.Join(packageDir, dataArchiveName)
	err = util.WriteTgzArchive(stagedRoot, dataArchivePath, control.MetadataDirs...)
	if err != nil {
		return "", err
	}

	// Create control.tar.gz.
	controlArchivePath := filepath.Join(packageDir, controlArchiveName)
	if err = util.WriteTgzArchive(controlDirPath, controlArchivePath); err != nil {
		return "", err
	}

	// Create debian-binary.
	err = util.WriteFileAtomic(filepath.Join(packageDir, debianBinaryFileName),
		[]byte(debianBinaryFileContent), util.FilePermissions)
	if err != nil {
		return "", err
	}

	// ar r appends to an existing archive.
	if err := os.Remove(packagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to remove previous package %s: %w", packagePath, err)
	}

	// Create result archive.
	err = builder.tools.Runner.Run(util.Command{
		Program: builder.tools.Ar,
		Args: []string{
			"r", packagePath, debianBinaryFileName, controlArchiveName, dataArchiveName,
		},
		Dir: packageDir,
	})
	if err != nil {
		return "", err
	}

	log.Infof("Created result %s package: %s", builder.profile, packagePath)
	return packagePath, nil
}
