package repositories

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/apperror"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts the user and its first verification code in one transaction.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User, code string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Addresses", "Token").Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("email already registered")
			}
			return err
		}
		return tx.Create(&models.VerificationToken{UserID: user.ID, Code: code}).Error
	})
	return wrapTxError("create user", err)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID, optionally with addresses.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string, withAddresses bool) (*models.User, error) {
	var user models.User
	q := r.db.WithContext(ctx)
	if withAddresses {
		q = q.Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") })
	}
	if err := q.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// Update changes the profile fields present in patch.
func (r *GORMUserRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name_first_name"] = patch.Name.FirstName
		updates["name_middle_name"] = patch.Name.MiddleName
		updates["name_last_name"] = patch.Name.LastName
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if len(updates) > 0 {
		if err := r.updateColumns(ctx, r.db, id, updates); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id, false)
}

// UpdateEmail switches the address, clears verification and replaces the
// pending code.
func (r *GORMUserRepository) UpdateEmail(ctx context.Context, id, email, code string) (*models.User, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := r.updateColumns(ctx, tx, id, map[string]interface{}{"email": email, "is_verified": false})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("email already registered")
		}
		if err != nil {
			return err
		}
		return replaceToken(tx, id, code)
	})
	if err != nil {
		return nil, wrapTxError("update email", err)
	}
	return r.GetByID(ctx, id, false)
}

// UpdatePassword stores a new password hash.
func (r *GORMUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return wrapTxError("update password", r.updateColumns(ctx, r.db, id, map[string]interface{}{"hash": hash}))
}

// SetToken replaces the pending code of a user.
func (r *GORMUserRepository) SetToken(ctx context.Context, userID, code string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceToken(tx, userID, code)
	})
	return wrapTxError("set verification code", err)
}

// GetToken finds a pending code together with its user.
func (r *GORMUserRepository) GetToken(ctx context.Context, code string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	if err := r.db.WithContext(ctx).Preload("User").First(&token, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("verification code", code)
		}
		return nil, fmt.Errorf("failed to get verification code: %w", err)
	}
	return &token, nil
}

// GetTokenByUser finds the pending code of a user.
func (r *GORMUserRepository) GetTokenByUser(ctx context.Context, userID string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	if err := r.db.WithContext(ctx).First(&token, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("verification code for user", userID)
		}
		return nil, fmt.Errorf("failed to get verification code of user %s: %w", userID, err)
	}
	return &token, nil
}

// MarkVerified flags the user as verified and consumes the pending code.
func (r *GORMUserRepository) MarkVerified(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateColumns(ctx, tx, userID, map[string]interface{}{"is_verified": true}); err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error
	})
	return wrapTxError("verify user", err)
}

// ResetPassword stores a new hash and consumes the pending code.
func (r *GORMUserRepository) ResetPassword(ctx context.Context, userID, hash string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateColumns(ctx, tx, userID, map[string]interface{}{"hash": hash}); err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error
	})
	return wrapTxError("reset password", err)
}

func (r *GORMUserRepository) updateColumns(ctx context.Context, db *gorm.DB, id string, updates map[string]interface{}) error {
	res := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

func replaceToken(tx *gorm.DB, userID, code string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.VerificationToken{}).Error; err != nil {
		return err
	}
	return tx.Create(&models.VerificationToken{UserID: userID, Code: code}).Error
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{db: db}
}

func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *GORMAddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("address", id)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", id, err)
	}
	return &address, nil
}

func (r *GORMAddressRepository) Update(ctx context.Context, id string, patch models.AddressPatch) (*models.Address, error) {
	updates := map[string]interface{}{}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if patch.StreetName != nil {
		updates["street_name"] = *patch.StreetName
	}
	if patch.Landmark != nil {
		updates["landmark"] = *patch.Landmark
	}
	if patch.Locality != nil {
		updates["locality"] = *patch.Locality
	}
	if patch.Pincode != nil {
		updates["pincode"] = *patch.Pincode
	}
	if patch.City != nil {
		updates["city"] = *patch.City
	}
	if patch.State != nil {
		updates["state"] = *patch.State
	}
	if patch.AddressType != nil {
		updates["address_type"] = *patch.AddressType
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Address{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update address %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperror.NotFound("address", id)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *GORMAddressRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("address", id)
	}
	return nil
}
