package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundwallet/fundwallet-backend/internal/apperrors"
	"github.com/fundwallet/fundwallet-backend/internal/codec"
	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/testutil"
)

func writeExports(t *testing.T, dir string) (string, string) {
	t.Helper()
	payload := testutil.EndToEndPayload().Build()

	daily, err := json.Marshal(payload.Daily)
	require.NoError(t, err)
	meta, err := json.Marshal(payload.Meta)
	require.NoError(t, err)

	dailyPath := filepath.Join(dir, "u.json")
	metaPath := filepath.Join(dir, "s.json")
	require.NoError(t, os.WriteFile(dailyPath, daily, 0o644))
	require.NoError(t, os.WriteFile(metaPath, meta, 0o644))
	return dailyPath, metaPath
}

func TestEncodeDecode(t *testing.T) {
	for _, chunks := range []int{1, 6} {
		t.Run(map[int]string{1: "single", 6: "chunked"}[chunks], func(t *testing.T) {
			dir := t.TempDir()
			daily, meta := writeExports(t, dir)
			out := filepath.Join(dir, "data.b64")

			files, err := runEncode(encodeOptions{daily: daily, meta: meta, out: out, chunks: chunks, key: string(codec.DefaultKey)})
			require.NoError(t, err)
			require.Len(t, files, chunks)
			if chunks > 1 {
				assert.Equal(t, filepath.Join(dir, "data_part1.b64"), files[0])
				assert.Equal(t, filepath.Join(dir, "data_part6.b64"), files[5])
			}
			for _, f := range files {
				assert.FileExists(t, f)
			}

			var stdout bytes.Buffer
			_, err = runDecode(decodeOptions{in: out, chunks: chunks, key: string(codec.DefaultKey)}, &stdout)
			require.NoError(t, err)

			var got model.Payload
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
			require.Len(t, got.Daily.Rows, 1)
			require.Len(t, got.Meta.Rows, 1)
			assert.JSONEq(t, string(testutil.EndToEndDailyRow), string(got.Daily.Rows[0]))
			assert.JSONEq(t, string(testutil.EndToEndMetaRow), string(got.Meta.Rows[0]))
		})
	}
}

func TestDecode_ToFileWithIndent(t *testing.T) {
	dir := t.TempDir()
	daily, meta := writeExports(t, dir)
	in := filepath.Join(dir, "data.b64")
	_, err := runEncode(encodeOptions{daily: daily, meta: meta, out: in, chunks: 1, key: string(codec.DefaultKey)})
	require.NoError(t, err)

	out := filepath.Join(dir, "combined.json")
	_, err = runDecode(decodeOptions{in: in, out: out, chunks: 1, key: string(codec.DefaultKey), indent: true}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Contains(t, string(data), "\n  ")
}

func TestDecode_WrongKey(t *testing.T) {
	dir := t.TempDir()
	daily, meta := writeExports(t, dir)
	in := filepath.Join(dir, "data.b64")
	_, err := runEncode(encodeOptions{daily: daily, meta: meta, out: in, chunks: 1, key: string(codec.DefaultKey)})
	require.NoError(t, err)

	_, err = runDecode(decodeOptions{in: in, chunks: 1, key: "ffffffffffffffffffffffffffffffff"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, apperrors.ErrDecryption)
}

func TestEncode_Errors(t *testing.T) {
	dir := t.TempDir()
	daily, meta := writeExports(t, dir)
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	out := filepath.Join(dir, "data.b64")
	key := string(codec.DefaultKey)

	tests := []struct {
		name string
		opts encodeOptions
	}{
		{name: "zero chunks", opts: encodeOptions{daily: daily, meta: meta, out: out, chunks: 0, key: key}},
		{name: "short key", opts: encodeOptions{daily: daily, meta: meta, out: out, chunks: 1, key: "short"}},
		{name: "missing daily", opts: encodeOptions{daily: filepath.Join(dir, "nope.json"), meta: meta, out: out, chunks: 1, key: key}},
		{name: "invalid meta", opts: encodeOptions{daily: daily, meta: bad, out: out, chunks: 1, key: key}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runEncode(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	daily, meta := writeExports(t, dir)
	out := filepath.Join(dir, "data.b64")

	root := newRootCmd(zerolog.Nop())
	root.SetArgs([]string{"encode", "--daily", daily, "--meta", meta, "--out", out, "--chunks", "2"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, filepath.Join(dir, "data_part2.b64"))

	var stdout bytes.Buffer
	root = newRootCmd(zerolog.Nop())
	root.SetOut(&stdout)
	root.SetArgs([]string{"decode", "--in", out, "--chunks", "2"})
	require.NoError(t, root.Execute())
	assert.True(t, json.Valid(stdout.Bytes()))
}
