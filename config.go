// Package archivey is a uniform, read-oriented library over heterogeneous
// archive and compression containers. Open detects a source's format and
// returns an archivereader.Reader; the concrete per-format work lives in
// the format, archivereader, formats and stream packages.
package archivey

import (
	"github.com/sirupsen/logrus"

	"github.com/nabbar/archivey/archivereader"
	"github.com/nabbar/archivey/format"
)

// Config is an explicit, immutable value controlling how Open resolves and
// reads a source. It is built with functional Options and passed (or
// defaulted) per call — never mutated globally — resolving the "global
// mutable configuration" concern the teacher's older subsystems solve with
// a package-level singleton. Nesting/propagation through call chains is
// handled by context.go instead, riding on context.Context's own
// parent-chaining rather than a bespoke stack.
type Config struct {
	useRarStream      bool
	useLibarchive     bool
	useStoredMeta     bool
	tarCheckIntegrity bool
	password          string
	overwrite         archivereader.OverwriteMode
	filter            archivereader.Filter
	logger            *logrus.Entry
}

// Option mutates a Config under construction. Each With* constructor
// returns one, so call sites read as a flat options list:
// archivey.Open(src, archivey.WithRarStream(), archivey.WithOverwrite(archivereader.Skip)).
type Option func(*Config)

// defaultConfig is the baseline every Open call and NewConfig start from
// (it differs from the zero Config, whose filter is nil):
// no optional backends, Overwrite policy, archivereader.Data filter (the
// most conservative built-in), tar block-level integrity enforcement on
// (spec.md §4.8 tar_check_integrity default true), no logger.
func defaultConfig() Config {
	return Config{
		overwrite:         archivereader.Overwrite,
		filter:            archivereader.Data,
		tarCheckIntegrity: true,
	}
}

// NewConfig applies opts over the default baseline and returns the result,
// for callers that want to build a Config once and reuse it across
// multiple Open calls (directly, or threaded through a context.Context via
// WithConfig).
func NewConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithRarStream records a preference for streaming RAR decoding, exposed
// as Config.UseRarStream and passed on as archivereader.Options.UseRarStream.
// No RAR back-end reads it: formats/rar's Open returns ErrNotSupported
// whether or not it is set.
func WithRarStream() Option {
	return func(c *Config) { c.useRarStream = true }
}

// WithLibarchive records a preference for a libarchive back-end, exposed
// as Config.UseLibarchive and passed on as archivereader.Options.UseLibarchive.
// This module contains no libarchive back-end and no reader under formats/
// reads the flag; RAR and 7-Zip archives still fail with ErrNotSupported.
func WithLibarchive() Option {
	return func(c *Config) { c.useLibarchive = true }
}

// WithStoredMetadata makes Open name a gzip single-file member after the
// FNAME field stored in its gzip header, instead of deriving the name by
// trimming the outer archive filename's extension, per spec.md §4.8's
// use_single_file_stored_metadata. Only the name is taken from the header:
// the stored MTIME is not read, and the member's ModTime stays unset.
func WithStoredMetadata() Option {
	return func(c *Config) { c.useStoredMeta = true }
}

// WithTarCheckIntegrity toggles TAR block-header/checksum enforcement
// during scanning (default true). When false, a header error is treated
// as end of useful data — the members parsed so far are kept rather than
// the scan aborting — while compressor-layer errors still always
// propagate regardless of this flag, per spec.md §4.8/§9's resolution of
// tar_check_integrity's scope.
func WithTarCheckIntegrity(enabled bool) Option {
	return func(c *Config) { c.tarCheckIntegrity = enabled }
}

// WithPassword supplies the passphrase tried against every encrypted
// member a format adapter opens (ZIP traditional/AES, RAR).
func WithPassword(password string) Option {
	return func(c *Config) { c.password = password }
}

// WithOverwrite records an overwrite policy, exposed as Config.Overwrite;
// NewConfig defaults it to archivereader.Overwrite. Open does not pass it
// to the Reader: Extract and ExtractAll use the policy given as their own
// argument.
func WithOverwrite(mode archivereader.OverwriteMode) Option {
	return func(c *Config) { c.overwrite = mode }
}

// WithFilter records a member Filter, exposed as Config.Filter; NewConfig
// defaults it to archivereader.Data. Open does not pass it to the Reader:
// Extract and ExtractAll use the Filter given as their own argument.
func WithFilter(f archivereader.Filter) Option {
	return func(c *Config) { c.filter = f }
}

// WithLogger attaches the *logrus.Entry that receives the format
// detector's warnings, following the teacher's golog.go pattern of
// threading a *logrus.Entry rather than a bespoke interface. Nothing else
// writes to it: extraction logs neither filter decisions nor chown failures.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Config) { c.logger = l }
}

func (c Config) UseRarStream() bool                     { return c.useRarStream }
func (c Config) UseLibarchive() bool                    { return c.useLibarchive }
func (c Config) UseStoredMetadata() bool                { return c.useStoredMeta }
func (c Config) TarCheckIntegrity() bool                { return c.tarCheckIntegrity }
func (c Config) Password() string                       { return c.password }
func (c Config) Overwrite() archivereader.OverwriteMode { return c.overwrite }
func (c Config) Filter() archivereader.Filter           { return c.filter }
func (c Config) Logger() *logrus.Entry                  { return c.logger }

// detectLogger adapts Config's *logrus.Entry to the format package's
// narrower Logger seam. It returns nil when no logger is set, and
// format.Detect then falls back to its own no-op logger.
func (c Config) detectLogger() format.Logger {
	if c.logger == nil {
		return nil
	}
	return logrusDetectLogger{c.logger}
}

type logrusDetectLogger struct{ e *logrus.Entry }

func (l logrusDetectLogger) Warnf(format string, args ...any) {
	l.e.Warnf(format, args...)
}
