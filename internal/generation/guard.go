package generation

import (
	"context"
	"log/slog"
)

// EntryGuard runs the plausibility check on new entries before they are
// stored, asking the remote provider first and degrading to the
// deterministic fallback when the remote call fails.
type EntryGuard struct {
	remote   Provider // may be nil
	fallback Provider
	logger   *slog.Logger
}

// NewEntryGuard creates an entry guard. remote may be nil, in which case
// only the fallback is consulted. If fallback is nil, the deterministic
// fallback provider is used. If logger is nil, a default logger will be used.
func NewEntryGuard(remote, fallback Provider, logger *slog.Logger) *EntryGuard {
	if fallback == nil {
		fallback = NewFallbackProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryGuard{
		remote:   remote,
		fallback: fallback,
		logger:   logger.With(slog.String("component", "entry_guard")),
	}
}

// ValidateEntry checks whether the term and meanings look plausible. The
// fallback never errors, so callers only see an error when both providers
// fail.
func (g *EntryGuard) ValidateEntry(ctx context.Context, term string, meanings []string) (*EntryValidation, error) {
	if g.remote != nil {
		validation, err := g.remote.ValidateEntry(ctx, term, meanings)
		if err == nil {
			return validation, nil
		}
		g.logger.WarnContext(ctx, "remote entry validation failed, using fallback", "error", err)
	}
	return g.fallback.ValidateEntry(ctx, term, meanings)
}
