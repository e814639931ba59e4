package fsutil

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

// ChecksumFunction is used to calculate distribution file hashes.
const ChecksumFunction crypto.Hash = crypto.SHA512

var errHashUnavailable = errors.New("hash function unavailable")

// FileChecksum returns checksum bytes for a file using ChecksumFunction.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !ChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := ChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// TreeChecksums maps every regular file under root, by slash-separated
// relative path, to its base64-encoded checksum.
func TreeChecksums(root string) (map[string]string, error) {
	files, err := FileIndex(root)
	if err != nil {
		return nil, err
	}

	checksums := make(map[string]string, len(files))

	for _, rel := range files {
		sum, err := FileChecksum(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("checksum %s: %w", rel, err)
		}

		checksums[rel] = base64.StdEncoding.EncodeToString(sum)
	}

	return checksums, nil
}
