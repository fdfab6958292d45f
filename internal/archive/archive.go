// Package archive unpacks downloaded source archives into a working
// directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Supported reports whether a file name is an archive quern can
// unpack.
func Supported(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// Unpack extracts a gzipped tarball into destDir and returns the path
// of the archive's top-level directory. Entries that would land
// outside destDir are rejected.
func Unpack(archivePath, destDir string) (string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return "", fmt.Errorf("decompressing %s: %w", archivePath, err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	root := ""

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", archivePath, err)
		}

		if !filepath.IsLocal(header.Name) {
			return "", fmt.Errorf("unpacking %s: unsafe path %q", archivePath, header.Name)
		}
		if root == "" {
			root = topLevel(header.Name)
		}

		target := filepath.Join(destDir, header.Name)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return "", err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return "", err
			}
			if _, err := io.Copy(f, tarReader); err != nil {
				f.Close()
				return "", err
			}
			f.Close()
		}
	}

	if root == "" {
		return "", fmt.Errorf("unpacking %s: empty archive", archivePath)
	}
	return filepath.Join(destDir, root), nil
}

func topLevel(name string) string {
	name = strings.TrimPrefix(name, "./")
	parts := strings.SplitN(name, "/", 2)
	return parts[0]
}
