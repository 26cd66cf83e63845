package location

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// IsArchive reports whether the path looks like a scannable archive.
func IsArchive(p string) bool {
	lower := strings.ToLower(p)
	return strings.HasSuffix(lower, ".jar") || strings.HasSuffix(lower, ".zip")
}

// archiveContains reports whether the archive's entry listing covers the
// relative path: an entry equal to it, equal to it as a directory, or nested
// under it. An empty relative path denotes the archive root and matches any
// archive with at least one entry.
func archiveContains(archivePath, relative string) (bool, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return false, fmt.Errorf("failed to open archive %s: %w", archivePath, err)
	}
	defer func() { _ = reader.Close() }()

	if relative == "" {
		return len(reader.File) > 0, nil
	}

	asDir := relative + "/"
	for _, entry := range reader.File {
		name := path.Clean(strings.TrimPrefix(entry.Name, "/"))
		if name == relative {
			return true, nil
		}
		if entry.Name == asDir || strings.HasPrefix(entry.Name, asDir) {
			return true, nil
		}
	}
	return false, nil
}
