package repositories

import (
	"context"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access, including the
// pending verification code of each user.
type UserRepository interface {
	Create(ctx context.Context, user *models.User, code string) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string, withAddresses bool) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	UpdateEmail(ctx context.Context, id, email, code string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	SetToken(ctx context.Context, userID, code string) error
	GetToken(ctx context.Context, code string) (*models.VerificationToken, error)
	GetTokenByUser(ctx context.Context, userID string) (*models.VerificationToken, error)
	MarkVerified(ctx context.Context, userID string) error
	ResetPassword(ctx context.Context, userID, hash string) error
}

// AddressRepository defines the interface for address data access.
type AddressRepository interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id string) (*models.Address, error)
	Update(ctx context.Context, id string, patch models.AddressPatch) (*models.Address, error)
	Delete(ctx context.Context, id string) error
}
