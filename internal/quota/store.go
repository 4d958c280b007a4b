package quota

import "context"

// Store tracks per-user daily question usage. CheckLimit reports whether the
// user may ask another question today and how many questions remain;
// IncrementUsage records one answered question. The limit is advisory:
// IncrementUsage does not refuse to count past it, callers are expected to
// consult CheckLimit first.
type Store interface {
	CheckLimit(ctx context.Context, userID int64) (canAsk bool, remaining int, err error)
	IncrementUsage(ctx context.Context, userID int64) error
	Close() error
}
