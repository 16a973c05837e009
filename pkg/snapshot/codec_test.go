package snapshot

import (
	"bytes"
	"testing"
)

func TestCodecNoneRoundTrips(t *testing.T) {
	c, err := NewCodec(AlgorithmNone, 0)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	defer c.Close()

	payload := []byte(`{"hello":"world"}`)
	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !bytes.Equal(compressed, payload) {
		t.Fatalf("AlgorithmNone must not transform data")
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", out, payload)
	}
}

func TestCodecGzipRoundTrips(t *testing.T) {
	c, err := NewCodec(AlgorithmGzip, 6)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	defer c.Close()

	payload := []byte(`{"generated_at":"2026-01-01T00:00:00Z","stats":{"committed":42}}`)
	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if bytes.Equal(compressed, payload) {
		t.Fatalf("gzip output should differ from input")
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", out, payload)
	}
}

func TestCodecZstdRoundTrips(t *testing.T) {
	c, err := NewCodec(AlgorithmZstd, 3)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	defer c.Close()

	payload := bytes.Repeat([]byte(`{"key":"value"}`), 64)
	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(payload) {
		t.Fatalf("expected repetitive payload to shrink, got %d >= %d", len(compressed), len(payload))
	}

	out, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("round trip mismatch")
	}
}

func TestAlgorithmString(t *testing.T) {
	cases := map[Algorithm]string{
		AlgorithmNone: "none",
		AlgorithmGzip: "gzip",
		AlgorithmZstd: "zstd",
		Algorithm(99): "unknown",
	}
	for alg, want := range cases {
		if got := alg.String(); got != want {
			t.Errorf("Algorithm(%d).String() = %q, want %q", alg, got, want)
		}
	}
}
