package retention

import (
	"context"
	"log/slog"
	"time"

	"cleargate-hq/cleargate/pkg/audit"
	"cleargate-hq/cleargate/pkg/config"
)

// Pruner enforces retention policy on the audit log.
type Pruner struct {
	storage audit.Storage
	config  config.RetentionConfig
	logger  *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// NewPruner creates a retention pruner for the given storage backend.
func NewPruner(storage audit.Storage, cfg config.RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  cfg,
		logger:  slog.Default().With("component", "audit.retention"),
		now:     time.Now,
	}
}

// PruneOnce applies the retention policy a single time and returns the
// number of entries deleted.
func (p *Pruner) PruneOnce(ctx context.Context) (int64, error) {
	var deleted int64

	if p.config.Days > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.Days)
		n, err := p.storage.Delete(ctx, audit.Filter{Before: &cutoff})
		if err != nil {
			return deleted, err
		}
		deleted += n
	}

	if p.config.MaxEntries > 0 {
		count, err := p.storage.Count(ctx, audit.Filter{})
		if err != nil {
			return deleted, err
		}
		if excess := count - p.config.MaxEntries; excess > 0 {
			n, err := p.storage.Delete(ctx, audit.Filter{Limit: int(excess)})
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
	}

	if deleted > 0 {
		p.logger.Info("audit retention pruned entries",
			"deleted", deleted,
			"retention_days", p.config.Days,
			"max_entries", p.config.MaxEntries,
		)
	}

	return deleted, nil
}
