package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// DefaultQuickHashBytes is how much of a file the quick stage reads. Eight
// KiB is enough to separate almost all same-size non-duplicates without
// paying for a full read.
const DefaultQuickHashBytes = 8 * 1024

const fullHashBufferSize = 64 * 1024

// emptySHA256 is the digest of zero bytes, used to key the zero-byte group
// without opening any file.
const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// QuickHash computes an xxHash64 digest over at most budget bytes from the
// start of the file. Files shorter than the budget are hashed in full.
func QuickHash(path string, budget int64) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("quick hashing %s: %w", path, err)
	}
	defer file.Close()

	digest := xxhash.New()
	if _, err := io.CopyN(digest, file, budget); err != nil && err != io.EOF {
		return 0, fmt.Errorf("quick hashing %s: %w", path, err)
	}
	return digest.Sum64(), nil
}

// FullHash computes the SHA-256 digest of the entire file content and
// returns it hex encoded.
func FullHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	buf := make([]byte, fullHashBufferSize)
	if _, err := io.CopyBuffer(hash, file, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
