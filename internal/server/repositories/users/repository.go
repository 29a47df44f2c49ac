// Package users declares the server-side repository contract for the
// identity store backing authentication.
package users

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

// Repository defines lookups and creation for user records.
// Implementations return common.ErrorNotFound when a user is absent.
type Repository interface {
	// Create persists a new user and returns it with the store-assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail looks a user up by email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID looks a user up by id.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
