// Package checksum provides the digest algorithms used to verify downloaded
// packages and the compare primitive the pre-flight resolver and transfer
// engine are built on.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"github.com/glorpus-work/repofetch/pkg/errors"
)

// Algorithm identifies a supported digest algorithm.
// Unknown means "do not verify".
type Algorithm int

// Supported algorithms.
const (
	Unknown Algorithm = iota
	MD5
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
)

// String returns the canonical lowercase name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case SHA224:
		return "sha224"
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// Parse maps an algorithm name to its Algorithm value. Names are matched
// case-insensitively. An unrecognized name yields Unknown and an error.
func Parse(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "md5":
		return MD5, nil
	case "sha1":
		return SHA1, nil
	case "sha224":
		return SHA224, nil
	case "sha256":
		return SHA256, nil
	case "sha384":
		return SHA384, nil
	case "sha512":
		return SHA512, nil
	case "", "unknown":
		return Unknown, nil
	default:
		return Unknown, errors.Wrapf(errors.ErrUnknownAlgorithm, "%q", name)
	}
}

// New returns a fresh hash.Hash for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA224:
		return sha256.New224(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA384:
		return sha512.New384(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownAlgorithm, "%d", int(a))
	}
}

// Compare hashes r from offset to EOF with the given algorithm and reports
// whether the digest equals expectedHex (case-insensitive). An error means
// the comparison could not be performed (I/O failure or unknown algorithm),
// never a mismatch.
func Compare(algo Algorithm, r io.ReadSeeker, expectedHex string, offset int64) (bool, error) {
	h, err := algo.New()
	if err != nil {
		return false, err
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return false, errors.Wrap(err, "seek before hashing")
	}
	if _, err := io.Copy(h, r); err != nil {
		return false, errors.Wrap(err, "hashing")
	}
	got := hex.EncodeToString(h.Sum(nil))
	return got == normalizeHex(expectedHex), nil
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
