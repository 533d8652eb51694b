package services

import (
	"context"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UserService manages profiles and the addresses owned by a user.
type UserService struct {
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, addressRepo repositories.AddressRepository) *UserService {
	return &UserService{userRepo: userRepo, addressRepo: addressRepo}
}

func (s *UserService) GetUser(ctx context.Context, userID string, withAddresses bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID, withAddresses)
	return user, apperror.FromStorage(err)
}

func (s *UserService) EditUser(ctx context.Context, userID string, patch models.UserPatch) (*models.User, error) {
	user, err := s.userRepo.Update(ctx, userID, patch)
	return user, apperror.FromStorage(err)
}

func (s *UserService) AddAddress(ctx context.Context, userID string, address *models.Address) error {
	address.ID = ""
	address.UserID = userID
	return apperror.FromStorage(s.addressRepo.Create(ctx, address))
}

// GetAddress returns an address of the caller. Addresses of other users are
// reported as unauthorized.
func (s *UserService) GetAddress(ctx context.Context, userID, addressID string) (*models.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}
	if address.UserID != userID {
		return nil, apperror.Unauthorized("address does not belong to user")
	}
	return address, nil
}

func (s *UserService) EditAddress(ctx context.Context, userID, addressID string, patch models.AddressPatch) (*models.Address, error) {
	if err := s.ownAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}
	address, err := s.addressRepo.Update(ctx, addressID, patch)
	return address, apperror.FromStorage(err)
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if err := s.ownAddress(ctx, userID, addressID); err != nil {
		return err
	}
	return apperror.FromStorage(s.addressRepo.Delete(ctx, addressID))
}

func (s *UserService) ownAddress(ctx context.Context, userID, addressID string) error {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return apperror.FromStorage(err)
	}
	if address.UserID != userID {
		return apperror.Forbidden("address does not belong to user")
	}
	return nil
}
