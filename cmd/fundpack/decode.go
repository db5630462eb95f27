package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fundwallet/fundwallet-backend/internal/codec"
)

type decodeOptions struct {
	in     string
	out    string
	chunks int
	key    string
	indent bool
}

func newDecodeCmd(logger zerolog.Logger) *cobra.Command {
	opts := decodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode artifact files back into the combined JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := runDecode(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Info().Int("bytes", n).Int("chunks", opts.chunks).Msg("artifact decoded")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.in, "in", "data.b64", "artifact file, or the base name of the chunk files")
	flags.StringVar(&opts.out, "out", "", "output file (default stdout)")
	flags.IntVar(&opts.chunks, "chunks", 1, "number of chunks")
	flags.StringVar(&opts.key, "key", string(codec.DefaultKey), "32-byte encryption key")
	flags.BoolVar(&opts.indent, "indent", false, "pretty-print the JSON")
	return cmd
}

// runDecode writes the decoded document to opts.out, or to stdout when it is
// empty, and returns the number of bytes written.
func runDecode(opts decodeOptions, stdout io.Writer) (int, error) {
	if opts.chunks < 1 {
		return 0, errors.New("--chunks must be at least 1")
	}
	c, err := codec.New([]byte(opts.key))
	if err != nil {
		return 0, err
	}

	names := artifactNames(opts.in, opts.chunks)
	artifacts := make([][]byte, len(names))
	for i, name := range names {
		if artifacts[i], err = os.ReadFile(name); err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	raw, err := c.Decode(artifacts...)
	if err != nil {
		return 0, err
	}
	if opts.indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return 0, fmt.Errorf("failed to indent: %w", err)
		}
		raw = buf.Bytes()
	}

	if opts.out == "" {
		return stdout.Write(raw)
	}
	if err := os.WriteFile(opts.out, raw, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	return len(raw), nil
}
