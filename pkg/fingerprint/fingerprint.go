// Package fingerprint computes content identities for banner images: a short
// exact digest over the raw bytes and a perceptual hash over the decoded
// visual content. Both functions are pure and deterministic.
package fingerprint

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"math/bits"
	"strconv"

	// Registered decode formats. GIFs decode to their first frame.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/corona10/goimagehash"

	apperrors "adledger/pkg/errors"
)

// exactDigestLen is the number of hex characters kept from the full MD5.
// Truncated for compactness in the CSV store, not for security.
const exactDigestLen = 10

// ExactDigest returns a short fixed-length hex digest of the raw bytes,
// used only for byte-identical duplicate detection.
func ExactDigest(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])[:exactDigestLen]
}

// Fingerprint computes both the exact digest and the perceptual hash for an
// image. The perceptual hash is a 64-bit pHash of the decoded pixels,
// rendered as 16 lowercase hex characters: visually near-identical images
// produce hashes at small Hamming distance regardless of byte-level
// differences. Fails with a decode error when the bytes are not a supported
// raster format; callers must treat that as non-retryable.
func Fingerprint(imageBytes []byte) (exactDigest, similarityHash string, err error) {
	exactDigest = ExactDigest(imageBytes)

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrorTypeDecode, "unsupported or corrupt image", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrorTypeDecode, "perceptual hash failed", err)
	}

	return exactDigest, fmt.Sprintf("%016x", hash.GetHash()), nil
}

// Distance returns the Hamming distance between two hex-encoded perceptual
// hashes as produced by Fingerprint.
func Distance(a, b string) (int, error) {
	av, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid similarity hash %q: %w", a, err)
	}
	bv, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid similarity hash %q: %w", b, err)
	}
	return bits.OnesCount64(av ^ bv), nil
}
