// Package framing implements the invite protocol's compress-if-smaller
// envelope and chunk/separator insertion used to make encoded payloads
// safe to embed in URLs and chat-client-recognized slugs.
package framing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

// compressedMarker prefixes a payload that was DEFLATE-compressed by
// CompressIfSmaller. Payloads without this leading byte are taken to be
// stored uncompressed.
const compressedMarker = 0x78

// minCompressionInputSize is the smallest input CompressIfSmaller will
// attempt to compress; shorter inputs pass through unchanged since
// DEFLATE's framing overhead would grow them.
const minCompressionInputSize = 100

// MaxDecompressedSize bounds the size Decompress will ever return,
// guarding against decompression-bomb inputs.
const MaxDecompressedSize = 1 << 20 // 1 MiB

// ErrDecompressionBomb is returned when inflating a payload would
// exceed MaxDecompressedSize.
var ErrDecompressionBomb = errors.New("framing: decompressed payload exceeds maximum allowed size")

// ChunkSize is the character length of each chunk inserted by Chunk.
const ChunkSize = 300

// ChunkSeparator joins consecutive chunks.
const ChunkSeparator = "*"

// CompressIfSmaller DEFLATE-compresses data when doing so, plus the
// one-byte marker, yields output strictly smaller than the input.
// Inputs shorter than minCompressionInputSize are never compressed.
func CompressIfSmaller(data []byte) ([]byte, error) {
	if len(data) < minCompressionInputSize {
		return data, nil
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("framing: create flate writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("framing: flate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("framing: flate close: %w", err)
	}

	if buf.Len()+1 < len(data) {
		out := make([]byte, 0, buf.Len()+1)
		out = append(out, compressedMarker)
		out = append(out, buf.Bytes()...)
		return out, nil
	}
	return data, nil
}

// Decompress inspects the leading byte of data: if it is the
// compressedMarker, the remainder is inflated (subject to
// MaxDecompressedSize); otherwise data is returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 || data[0] != compressedMarker {
		return data, nil
	}

	r := flate.NewReader(bytes.NewReader(data[1:]))
	defer r.Close()

	limited := io.LimitReader(r, MaxDecompressedSize+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("framing: flate read: %w", err)
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrDecompressionBomb
	}
	return out, nil
}

// Chunk splits s into ChunkSize-character pieces joined by
// ChunkSeparator, purely so certain messenger clients recognize slug
// boundaries within an otherwise opaque token.
func Chunk(s string) string {
	if len(s) <= ChunkSize {
		return s
	}
	var chunks []string
	for len(s) > 0 {
		n := ChunkSize
		if n > len(s) {
			n = len(s)
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return strings.Join(chunks, ChunkSeparator)
}

// Unchunk strips every ChunkSeparator character from s, inverting
// Chunk.
func Unchunk(s string) string {
	return strings.ReplaceAll(s, ChunkSeparator, "")
}
