package pack

import "github.com/peondevelopments/aptrepo/cli/descriptor"

// Builder turns a staged package tree into a package artifact.
type Builder interface {
	// Build creates an artifact of d from stagedRoot in outputDir and
	// returns the artifact path.
	Build(stagedRoot, outputDir string, d *descriptor.Descriptor) (string, error)
}
