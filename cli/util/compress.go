package util

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

const (
	defaultFileUser  = "root"
	defaultFileGroup = "root"
)

// WriteTgzArchive creates a gzip compressed tar archive of srcDirPath.
// Top level directories whose base name is in skipDirs are not archived.
func WriteTgzArchive(srcDirPath string, destFilePath string, skipDirs ...string) error {
	return WriteAtomic(destFilePath, FilePermissions, func(w io.Writer) error {
		gzipWriter, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return err
		}
		if err = WriteTarArchive(srcDirPath, gzipWriter, skipDirs...); err != nil {
			gzipWriter.Close()
			return err
		}
		return gzipWriter.Close()
	})
}

// WriteTarArchive creates Tar archive of specified path using specified writer.
// Entry names are relative to srcDirPath and start with "./".
func WriteTarArchive(srcDirPath string, compressWriter io.Writer, skipDirs ...string) error {
	tarWriter := tar.NewWriter(compressWriter)
	srcDirPath = filepath.Clean(srcDirPath)

	err := filepath.WalkDir(srcDirPath, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() && filepath.Dir(filePath) == srcDirPath {
			for _, skip := range skipDirs {
				if entry.Name() == skip {
					return filepath.SkipDir
				}
			}
		}

		fileInfo, err := entry.Info()
		if err != nil {
			return err
		}

		linkTarget := ""
		if fileInfo.Mode().Type() == os.ModeSymlink {
			if linkTarget, err = os.Readlink(filePath); err != nil {
				return err
			}
		}
		tarHeader, err := tar.FileInfoHeader(fileInfo, linkTarget)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDirPath, filePath)
		if err != nil {
			return fmt.Errorf("failed to get relative path of %q: %s", filePath, err)
		}
		tarHeader.Name = "./" + filepath.ToSlash(relPath)
		if entry.IsDir() {
			tarHeader.Name += "/"
		}
		if relPath == "." {
			tarHeader.Name = "./"
		}
		tarHeader.Uname = defaultFileUser
		tarHeader.Gname = defaultFileGroup
		tarHeader.Uid = 0
		tarHeader.Gid = 0

		if err := tarWriter.WriteHeader(tarHeader); err != nil {
			return err
		}

		if fileInfo.Mode().IsRegular() {
			if err := writeFileToWriter(filePath, tarWriter); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		tarWriter.Close()
		return err
	}
	return tarWriter.Close()
}

// CompressGzip compresses data from src into dest with gzip.BestCompression level.
func CompressGzip(src io.Reader, dest io.Writer) error {
	gzipWriter, err := gzip.NewWriterLevel(dest, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("failed to create GZIP writer: %s", err)
	}

	if _, err := io.Copy(gzipWriter, src); err != nil {
		gzipWriter.Close()
		return err
	}

	return gzipWriter.Close()
}

func writeFileToWriter(filePath string, writer io.Writer) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Copy file data into writer.
	if _, err := io.Copy(writer, file); err != nil {
		return err
	}

	return nil
}
