// Package refreshtokens declares the server-side repository contract for
// managing refresh-token records in persistent storage.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

// Repository defines operations over refresh-token records. Records are
// never deleted here; a consumed token is marked used and kept.
type Repository interface {
	// Create persists a new record and returns its store-assigned id.
	Create(ctx context.Context, token *models.RefreshToken) (string, error)

	// Find looks a record up by its opaque token string.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// MarkUsed flips is_used on the record with the given id, but only if it
	// is currently unused. It reports whether this call made the transition:
	// false with a nil error means the record was already used, which is a
	// no-op here and lets exactly one of two concurrent rotations win.
	MarkUsed(ctx context.Context, id string) (bool, error)
}
