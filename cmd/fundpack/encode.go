package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fundwallet/fundwallet-backend/internal/codec"
)

type encodeOptions struct {
	daily  string
	meta   string
	out    string
	chunks int
	key    string
}

func newEncodeCmd(logger zerolog.Logger) *cobra.Command {
	opts := encodeOptions{}
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Combine the daily and meta exports into artifact files",
		Long: `Combine the daily (u.json) and meta (s.json) exports into one document,
gzip it and seal it with AES-256-GCM. With --chunks N > 1 the compressed
stream is split into N pieces written as <out>_part1.b64 ... <out>_partN.b64.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := runEncode(opts)
			if err != nil {
				return err
			}
			for _, f := range files {
				logger.Info().Str("file", f).Msg("artifact written")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.daily, "daily", "u.json", "daily instruments export")
	flags.StringVar(&opts.meta, "meta", "s.json", "scheme metadata export")
	flags.StringVar(&opts.out, "out", "data.b64", "artifact file, or the base name of the chunk files")
	flags.IntVar(&opts.chunks, "chunks", 1, "number of chunks")
	flags.StringVar(&opts.key, "key", string(codec.DefaultKey), "32-byte encryption key")
	return cmd
}

// runEncode writes the artifacts and returns their paths in chunk order.
func runEncode(opts encodeOptions) ([]string, error) {
	if opts.chunks < 1 {
		return nil, errors.New("--chunks must be at least 1")
	}
	c, err := codec.New([]byte(opts.key))
	if err != nil {
		return nil, err
	}

	daily, err := readJSON(opts.daily)
	if err != nil {
		return nil, err
	}
	meta, err := readJSON(opts.meta)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(map[string]json.RawMessage{"u": daily, "s": meta})
	if err != nil {
		return nil, fmt.Errorf("failed to combine exports: %w", err)
	}
	artifacts, err := c.EncodeRaw(raw, opts.chunks)
	if err != nil {
		return nil, err
	}

	names := artifactNames(opts.out, opts.chunks)
	for i, a := range artifacts {
		if err := os.WriteFile(names[i], a, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", names[i], err)
		}
	}
	return names, nil
}

func readJSON(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return data, nil
}

// artifactNames returns base itself for a single artifact, otherwise the chunk names.
func artifactNames(base string, n int) []string {
	if n <= 1 {
		return []string{base}
	}
	names := make([]string, n)
	for i := range names {
		names[i] = codec.ChunkName(base, i+1)
	}
	return names
}
