package mvcc

import (
	"time"

	"github.com/mnohosten/snapkv/pkg/audit"
)

// Config holds Manager configuration. Following the teacher's
// server.Config / DefaultConfig convention, but expressed as functional
// Options since the Manager is a library constructor, not a flag-parsed
// process config.
type Config struct {
	// MaxLiveTransactions caps the number of simultaneously active
	// transactions. Zero means unlimited.
	MaxLiveTransactions int

	// Fingerprint enables BLAKE2b commit fingerprinting (§4.7 of
	// SPEC_FULL.md). Disabled by default since it costs a hash over the
	// write set on every commit.
	Fingerprint bool

	// AuditSink receives lifecycle events from Begin, Read, Write, Delete,
	// Commit, Abort and GC. The default is audit.Nop{}, which discards
	// every event.
	AuditSink audit.Sink

	// GCInterval runs Manager.GC on a ticker in a background goroutine,
	// following the teacher's ttlCleanupLoop pattern. Zero (the default)
	// disables automatic GC; callers invoke GC themselves.
	GCInterval time.Duration
}

// DefaultConfig returns a Config with no limits, no fingerprinting, no
// audit sink, and no automatic GC.
func DefaultConfig() *Config {
	return &Config{
		MaxLiveTransactions: 0,
		Fingerprint:         false,
		AuditSink:           audit.Nop{},
		GCInterval:          0,
	}
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithMaxLiveTransactions caps the number of simultaneously active
// transactions; Begin returns ErrMaxLiveTransactions once the cap is hit.
func WithMaxLiveTransactions(max int) Option {
	return func(c *Config) { c.MaxLiveTransactions = max }
}

// WithFingerprinting enables or disables commit fingerprinting.
func WithFingerprinting(enabled bool) Option {
	return func(c *Config) { c.Fingerprint = enabled }
}

// WithGCInterval starts a background goroutine that calls GC every
// interval, following the teacher's ttlCleanupLoop convention. Zero (the
// default) leaves GC entirely manual. Manager.Close shuts the goroutine
// down.
func WithGCInterval(interval time.Duration) Option {
	return func(c *Config) { c.GCInterval = interval }
}

// WithAuditSink sets the sink that receives lifecycle events. Passing nil
// is equivalent to audit.Nop{}.
func WithAuditSink(sink audit.Sink) Option {
	return func(c *Config) {
		if sink == nil {
			sink = audit.Nop{}
		}
		c.AuditSink = sink
	}
}
