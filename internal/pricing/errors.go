package pricing

import "errors"

// Error taxonomy for the pricing engine. Handlers map these onto HTTP status
// codes; the bulk executor converts per-item ErrInvalidPrice /
// ErrInvalidParameter into skips instead of failing the batch.
var (
	// ErrInvalidPrice marks a negative or otherwise unusable selling price.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidParameter marks a strategy parameter outside its domain
	// (e.g. target margin >= 100, unknown competitor average).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound marks an unknown SKU, rule or pending-update id.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyResolved marks a workflow transition attempted on a
	// pending update that is no longer pending.
	ErrAlreadyResolved = errors.New("already resolved")

	// ErrInvalidRule marks a rule definition that fails validation.
	ErrInvalidRule = errors.New("invalid rule")
)
