package scanner

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// fingerprintChunkSize is how much of the head and tail of a file goes
// into the fingerprint. Reading 64KiB from each end keeps re-scans O(1)
// in file size while still catching truncation, re-encoding and
// replacement.
const fingerprintChunkSize = 64 * 1024

// Fingerprint computes a fast partial-content hash of a file: the first
// chunk, the last chunk when the file is larger than two chunks, and the
// literal decimal file size. It is a change-detection heuristic, not an
// integrity check.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	size := info.Size()

	h := md5.New()
	if _, err := io.CopyN(h, f, fingerprintChunkSize); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if size > fingerprintChunkSize*2 {
		if _, err := f.Seek(-fingerprintChunkSize, io.SeekEnd); err != nil {
			return "", fmt.Errorf("failed to seek %s: %w", path, err)
		}
		if _, err := io.CopyN(h, f, fingerprintChunkSize); err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read tail of %s: %w", path, err)
		}
	}

	// Size disambiguates files that share identical head/tail bytes.
	if _, err := io.WriteString(h, fmt.Sprintf("%d", size)); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
