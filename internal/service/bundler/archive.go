package bundler

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// PackageInfo is the identity read out of a packed archive.
type PackageInfo struct {
	// Name is the package name declared in the archive's metadata file.
	Name string `json:"name"`
	// Version is the exact version declared in the archive's metadata file.
	Version string `json:"version"`
}

// packageMetaEntry is where the package manager's pack format stores the
// metadata file inside the archive.
const packageMetaEntry = "package/package.json"

var (
	// errArchiveNoMetadata is returned when the archive lacks a metadata entry.
	errArchiveNoMetadata = errors.New("archive contains no package metadata")
	// errArchiveIncompleteMetadata is returned when name or version is empty.
	errArchiveIncompleteMetadata = errors.New("archive metadata is missing name or version")
)

// InspectArchive reads the package name and version out of a packed tar.gz
// archive without extracting it. Packing is heuristic about what it picks up,
// so the assembler verifies the archive's content before trusting it.
func InspectArchive(path string) (*PackageInfo, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}

	defer func() {
		_ = gzReader.Close()
	}()

	tarReader := tar.NewReader(gzReader)

	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, errArchiveNoMetadata)
		}

		if err != nil {
			return nil, fmt.Errorf("read archive %s: %w", path, err)
		}

		if header.Typeflag != tar.TypeReg || header.Name != packageMetaEntry {
			continue
		}

		var info PackageInfo
		if err := json.NewDecoder(tarReader).Decode(&info); err != nil {
			return nil, fmt.Errorf("decode %s in %s: %w", packageMetaEntry, path, err)
		}

		if info.Name == "" || info.Version == "" {
			return nil, fmt.Errorf("%s: %w", path, errArchiveIncompleteMetadata)
		}

		return &info, nil
	}
}
