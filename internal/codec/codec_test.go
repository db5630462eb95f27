package codec_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/codec"
)

func newCodec(t *testing.T) *codec.Codec {
	t.Helper()
	c, err := codec.New(codec.DefaultKey)
	require.NoError(t, err)
	return c
}

func samplePayload() map[string]any {
	return map[string]any{
		"u": map[string]any{
			"n9": []any{
				[]any{"F1", 1.0, 1.0, "", 0.0, 10.5, "2024-01-01", 0.1, 5.0, 6.0, 7.0, 8.0, 9.0, 1.2},
			},
			"FC": []any{[]any{"AMC_X", "https://example.com/fs.pdf", "AMC X Mutual Fund"}},
		},
		"s": map[string]any{
			"n9": []any{
				[]any{"F1", "AMC_X", "Fund One - Direct Plan", 1000.0, 100.0, 500.0, 1.0, 1.0, "G", nil,
					"equity", "large cap", 1.0, "T+1", "2020-05-01", "1% for 1 year", 365.0, 1.5, 1.0, "Jane Doe", 0.0, 3.0},
			},
		},
	}
}

func TestNew_RejectsWrongKeySize(t *testing.T) {
	_, err := codec.New([]byte("short"))
	assert.Error(t, err)
}

// TestRoundTrip checks decode(encode(P, N)) == P for several chunk counts.
func TestRoundTrip(t *testing.T) {
	c := newCodec(t)
	payload := samplePayload()

	for _, n := range []int{1, 2, 3, 6, 50} {
		t.Run(fmt.Sprintf("chunks=%d", n), func(t *testing.T) {
			artifacts, err := c.Encode(payload, n)
			require.NoError(t, err)
			require.Len(t, artifacts, n)

			var got map[string]any
			require.NoError(t, c.DecodeInto(&got, artifacts...))
			assert.Equal(t, payload, got)
		})
	}
}

func TestEncode_ZeroChunksMeansOne(t *testing.T) {
	c := newCodec(t)
	artifacts, err := c.Encode(samplePayload(), 0)
	require.NoError(t, err)
	assert.Len(t, artifacts, 1)
}

func TestSeal_LayoutAndFreshIV(t *testing.T) {
	c := newCodec(t)
	plain := []byte("hello fund data")

	a1, err := c.Seal(plain)
	require.NoError(t, err)
	a2, err := c.Seal(plain)
	require.NoError(t, err)

	raw1, err := base64.StdEncoding.DecodeString(string(a1))
	require.NoError(t, err)
	raw2, err := base64.StdEncoding.DecodeString(string(a2))
	require.NoError(t, err)

	assert.Len(t, raw1, codec.IVSize+len(plain)+codec.TagSize)
	assert.NotEqual(t, raw1[:codec.IVSize], raw2[:codec.IVSize], "every artifact gets its own IV")

	opened, err := c.Open(append(a1, '\n'))
	require.NoError(t, err)
	assert.Equal(t, plain, opened)
}

func TestDecode_Errors(t *testing.T) {
	c := newCodec(t)

	t.Run("malformed base64", func(t *testing.T) {
		_, err := c.Decode([]byte("not base64 !!!"))
		assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)
	})

	t.Run("too short", func(t *testing.T) {
		short := base64.StdEncoding.EncodeToString(make([]byte, 20))
		_, err := c.Decode([]byte(short))
		assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)
	})

	t.Run("tampered tag", func(t *testing.T) {
		artifacts, err := c.Encode(samplePayload(), 1)
		require.NoError(t, err)
		raw, err := base64.StdEncoding.DecodeString(string(artifacts[0]))
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xFF
		tampered := []byte(base64.StdEncoding.EncodeToString(raw))

		_, err = c.Decode(tampered)
		assert.ErrorIs(t, err, apperrors.ErrDecryption)
	})

	t.Run("wrong key", func(t *testing.T) {
		artifacts, err := c.Encode(samplePayload(), 1)
		require.NoError(t, err)
		other, err := codec.New(bytes.Repeat([]byte("k"), codec.KeySize))
		require.NoError(t, err)

		_, err = other.Decode(artifacts...)
		assert.ErrorIs(t, err, apperrors.ErrDecryption)
	})

	t.Run("not gzip", func(t *testing.T) {
		sealed, err := c.Seal([]byte(`{"u":{}}`))
		require.NoError(t, err)
		_, err = c.Decode(sealed)
		assert.ErrorIs(t, err, apperrors.ErrDecompression)
	})

	t.Run("not json", func(t *testing.T) {
		artifacts, err := c.EncodeRaw([]byte("{not json"), 1)
		require.NoError(t, err)
		_, err = c.Decode(artifacts...)
		assert.ErrorIs(t, err, apperrors.ErrParse)
	})

	t.Run("missing chunk", func(t *testing.T) {
		artifacts, err := c.Encode(samplePayload(), 4)
		require.NoError(t, err)
		_, err = c.Decode(artifacts[:3]...)
		assert.ErrorIs(t, err, apperrors.ErrDecompression)
	})
}

func TestSplit(t *testing.T) {
	b := []byte("0123456789")

	parts := codec.Split(b, 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "0123", string(parts[0]))
	assert.Equal(t, "4567", string(parts[1]))
	assert.Equal(t, "89", string(parts[2]))

	parts = codec.Split([]byte("abc"), 6)
	require.Len(t, parts, 6)
	assert.Equal(t, "abc", string(bytes.Join(parts, nil)))
	assert.Empty(t, parts[5])
}

// TestChunkOrderInvariance decrypts chunks in reverse order but reassembles by index.
func TestChunkOrderInvariance(t *testing.T) {
	c := newCodec(t)
	raw, err := json.Marshal(samplePayload())
	require.NoError(t, err)

	artifacts, err := c.EncodeRaw(raw, codec.DefaultChunks)
	require.NoError(t, err)

	sequential := make([][]byte, len(artifacts))
	for i, a := range artifacts {
		sequential[i], err = c.Open(a)
		require.NoError(t, err)
	}

	reversed := make([][]byte, len(artifacts))
	for i := len(artifacts) - 1; i >= 0; i-- {
		reversed[i], err = c.Open(artifacts[i])
		require.NoError(t, err)
	}

	a, err := codec.Assemble(sequential)
	require.NoError(t, err)
	b, err := codec.Assemble(reversed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.JSONEq(t, string(raw), string(a))
}

func TestChunkName(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/data_part1.b64", codec.ChunkName("https://cdn.example.com/data.b64", 1))
	assert.Equal(t, "data_part6.b64", codec.ChunkName("data", 6))
}
