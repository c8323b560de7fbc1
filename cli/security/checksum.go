package security

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/peondevelopments/aptrepo/cli/util"
)

// ChecksumLine is a Release checksum entry of a file.
type ChecksumLine struct {
	Sum  string
	Size int64
	Path string
}

// String renders the entry as a Release document line.
func (line ChecksumLine) String() string {
	return fmt.Sprintf(" %s %d %s", line.Sum, line.Size, line.Path)
}

// MD5SumLine returns the MD5Sum entry of file relpath inside dir.
func MD5SumLine(dir, relpath string) (ChecksumLine, error) {
	return checksumLine(dir, relpath, util.FileMD5Hex)
}

// SHA256Line returns the SHA256 entry of file relpath inside dir.
func SHA256Line(dir, relpath string) (ChecksumLine, error) {
	return checksumLine(dir, relpath, util.FileSHA256Hex)
}

func checksumLine(dir, relpath string, sum func(string) (string, error)) (ChecksumLine, error) {
	path := filepath.Join(dir, relpath)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ChecksumLine{}, util.NewNotFoundError("file to hash", path)
		}
		return ChecksumLine{}, err
	}
	hexSum, err := sum(path)
	if err != nil {
		return ChecksumLine{}, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return ChecksumLine{Sum: hexSum, Size: info.Size(), Path: filepath.ToSlash(relpath)}, nil
}
