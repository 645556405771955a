package repository

import "context"

// RepositoryInterface is the cart collaborator. The saga's call into it is
// best-effort and idempotent: a leftover cart line is a cosmetic problem,
// not a consistency one.
type RepositoryInterface interface {
	// RemoveOrderedLines deletes the user's cart lines for the given product
	// options. Removing lines that are already gone is a no-op.
	RemoveOrderedLines(ctx context.Context, userID int64, productOptionIDs []int64) error
}
