// Package codec implements the transport format for the fund dataset.
//
// An artifact is the base64 text of IV(16) || AES-256-GCM ciphertext || tag(16),
// where the plaintext is gzip-compressed JSON. In chunked mode the compressed
// stream is split before encryption and every chunk is sealed with its own IV,
// so a chunk can be decrypted on its own but only the ordered concatenation of
// all decrypted chunks can be decompressed.
package codec

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the per-artifact random IV length in bytes.
	IVSize = 16
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
	// DefaultChunks is the chunk count used by the encoder when chunking is requested without a count.
	DefaultChunks = 6
)

// DefaultKey is the pre-shared key used by the encoder and the client.
var DefaultKey = []byte("0123456789abcdef0123456789abcdef")

// Codec seals and opens artifacts with a fixed key.
type Codec struct {
	aead cipher.AEAD
}

// New creates a Codec for the given 32-byte key.
func New(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("codec key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Seal encrypts plain with a fresh random IV and returns the base64 artifact text.
func (c *Codec) Seal(plain []byte) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	// Seal appends ciphertext||tag to iv, which is exactly the wire layout.
	sealed := c.aead.Seal(iv, iv, plain, nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

// Open reverses Seal. Surrounding whitespace in the artifact text is ignored.
//
// Returns:
//   - ErrMalformedArtifact if the text is not base64 or shorter than IV+tag
//   - ErrDecryption if the tag does not authenticate the ciphertext
func (c *Codec) Open(artifact []byte) ([]byte, error) {
	text := strings.TrimSpace(string(artifact))
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedArtifact, err)
	}
	if len(raw) < IVSize+TagSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than IV and tag", apperrors.ErrMalformedArtifact, len(raw))
	}

	iv := raw[:IVSize]
	plain, err := c.aead.Open(nil, iv, raw[IVSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecryption, err)
	}
	return plain, nil
}

// Encode serialises payload to JSON and produces n artifacts (n < 1 is treated as 1).
func (c *Codec) Encode(payload any, n int) ([][]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.EncodeRaw(raw, n)
}

// EncodeRaw compresses an already serialised JSON document and produces n artifacts.
func (c *Codec) EncodeRaw(raw []byte, n int) ([][]byte, error) {
	compressed, err := Compress(raw)
	if err != nil {
		return nil, err
	}

	parts := Split(compressed, n)
	artifacts := make([][]byte, len(parts))
	for i, part := range parts {
		sealed, err := c.Seal(part)
		if err != nil {
			return nil, fmt.Errorf("failed to seal chunk %d: %w", i+1, err)
		}
		artifacts[i] = sealed
	}
	return artifacts, nil
}

// Decode opens every artifact, concatenates the plaintexts in argument order,
// decompresses the result and checks that it is valid JSON.
func (c *Codec) Decode(artifacts ...[]byte) ([]byte, error) {
	plains := make([][]byte, len(artifacts))
	for i, a := range artifacts {
		plain, err := c.Open(a)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i+1, err)
		}
		plains[i] = plain
	}
	return Assemble(plains)
}

// DecodeInto decodes the artifacts and unmarshals the JSON document into v.
func (c *Codec) DecodeInto(v any, artifacts ...[]byte) error {
	raw, err := c.Decode(artifacts...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrParse, err)
	}
	return nil
}

// Assemble joins decrypted chunk plaintexts in slice order, decompresses them
// and validates the JSON document.
func Assemble(plains [][]byte) ([]byte, error) {
	raw, err := Decompress(bytes.Join(plains, nil))
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: decompressed payload is not valid JSON", apperrors.ErrParse)
	}
	return raw, nil
}

// Compress gzips b.
func Compress(b []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress gunzips b. Truncated or corrupted streams return ErrDecompression.
func Decompress(b []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecompression, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDecompression, err)
	}
	return out, nil
}

// Split slices b into n pieces of ceil(len/n) bytes; the last piece may be
// shorter and trailing pieces are empty when n exceeds len(b).
func Split(b []byte, n int) [][]byte {
	if n < 1 {
		n = 1
	}
	size := (len(b) + n - 1) / n

	parts := make([][]byte, n)
	for i := range parts {
		start := min(i*size, len(b))
		end := min((i+1)*size, len(b))
		parts[i] = b[start:end]
	}
	return parts
}

// ChunkName derives the name of the 1-based chunk i from the single-artifact
// name, e.g. "data.b64" -> "data_part3.b64".
func ChunkName(base string, i int) string {
	return fmt.Sprintf("%s_part%d.b64", strings.TrimSuffix(base, ".b64"), i)
}
