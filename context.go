package archivey

import "context"

// configKey is an unexported type so no other package can collide with it
// in a context.Context's value map, the standard idiom context.Context's
// own docs recommend.
type configKey struct{}

// WithConfig returns a child of ctx carrying cfg, retrievable with
// FromContext. This is the **[EXPANSION]** replacement for spec.md §9's
// flagged "global mutable configuration": rather than
// nabbar/golib/context's Config[T] (a context.Context-embedding,
// mutable, atomically-backed map with its own Store/Load/Merge surface),
// archivey rides directly on context.Context's existing parent-chaining —
// WithConfig(WithConfig(ctx, a), b) has b shadow a for any key looked up
// through the inner context, with no bespoke stack or map to maintain.
func WithConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the Config most recently attached to ctx via
// WithConfig. ok is false when ctx carries no Config, in which case
// callers should fall back to the default Config (NewConfig()) or their
// own explicit Options.
func FromContext(ctx context.Context) (cfg Config, ok bool) {
	cfg, ok = ctx.Value(configKey{}).(Config)
	return cfg, ok
}

// ConfigFromContext is like FromContext but always returns a usable
// Config, defaulting when ctx carries none — the common case for
// call sites that accept per-call Option overrides on top of whatever the
// ambient context provides.
func ConfigFromContext(ctx context.Context, opts ...Option) Config {
	cfg, ok := FromContext(ctx)
	if !ok {
		cfg = defaultConfig()
	}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
