// Package snapshot compresses the periodic stats/GC snapshots an
// mvcc.Manager can export for operators to ship to a log aggregator. It
// is an export-only utility: there is no decompress-and-restore path,
// since feeding a snapshot back in would reintroduce the persistence and
// crash-recovery Non-goals the engine explicitly excludes.
//
// Grounded on the teacher's pkg/compression, trimmed to the two codecs
// worth offering for a small, infrequently-written JSON blob (zstd for
// ratio, gzip for universal compatibility) instead of the teacher's full
// snappy/zstd/gzip/zlib menu aimed at hot-path document storage.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Algorithm selects the compression codec used by a Codec.
type Algorithm int

const (
	// AlgorithmNone writes the snapshot uncompressed.
	AlgorithmNone Algorithm = iota
	// AlgorithmGzip is standard, universally readable compression.
	AlgorithmGzip
	// AlgorithmZstd gives a better ratio at comparable speed; the
	// recommended default for snapshots shipped off-box.
	AlgorithmZstd
)

// String returns the algorithm's name.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmGzip:
		return "gzip"
	case AlgorithmZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Codec compresses snapshot payloads with a fixed algorithm and level.
// Not safe for concurrent use: callers exporting from multiple goroutines
// should each hold their own Codec.
type Codec struct {
	algorithm Algorithm
	level     int
	zstdEnc   *zstd.Encoder
}

// NewCodec builds a Codec for algorithm. level is ignored for
// AlgorithmNone and AlgorithmGzip uses it directly (compress/gzip's
// NoCompression..BestCompression range); AlgorithmZstd maps it onto
// zstd's own speed/ratio levels, defaulting to the balanced level 3 when
// out of range.
func NewCodec(algorithm Algorithm, level int) (*Codec, error) {
	c := &Codec{algorithm: algorithm, level: level}

	if algorithm == AlgorithmZstd {
		if level < 1 || level > 19 {
			level = 3
		}
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		if err != nil {
			return nil, fmt.Errorf("snapshot: create zstd encoder: %w", err)
		}
		c.zstdEnc = enc
	}

	return c, nil
}

// Compress returns data compressed with the codec's algorithm.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmNone:
		return data, nil

	case AlgorithmZstd:
		return c.zstdEnc.EncodeAll(data, nil), nil

	case AlgorithmGzip:
		var buf bytes.Buffer
		level := c.level
		if level < gzip.NoCompression || level > gzip.BestCompression {
			level = gzip.DefaultCompression
		}
		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("snapshot: create gzip writer: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("snapshot: write gzip data: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("snapshot: close gzip writer: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("snapshot: unsupported algorithm %v", c.algorithm)
	}
}

// Decompress reverses Compress, for tests and operators inspecting an
// exported snapshot; the engine itself never calls this.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	switch c.algorithm {
	case AlgorithmNone:
		return data, nil

	case AlgorithmZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decode zstd: %w", err)
		}
		return out, nil

	case AlgorithmGzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("snapshot: create gzip reader: %w", err)
		}
		defer r.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			return nil, fmt.Errorf("snapshot: read gzip data: %w", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("snapshot: unsupported algorithm %v", c.algorithm)
	}
}

// Close releases any resources held by the codec (the zstd encoder).
func (c *Codec) Close() error {
	if c.zstdEnc != nil {
		return c.zstdEnc.Close()
	}
	return nil
}
