package services_test

import (
	"context"

	"storefront/internal/models"
	"storefront/pkg/rabbitmq"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) tokenResult(args mock.Arguments) (*models.VerificationToken, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationToken), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User, code string) error {
	args := m.Called(ctx, user, code)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string, withAddresses bool) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, withAddresses))
}

func (m *MockUserRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, patch))
}

func (m *MockUserRepository) UpdateEmail(ctx context.Context, id, email, code string) (*models.User, error) {
	return m.userResult(m.Called(ctx, id, email, code))
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) SetToken(ctx context.Context, userID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

func (m *MockUserRepository) GetToken(ctx context.Context, code string) (*models.VerificationToken, error) {
	return m.tokenResult(m.Called(ctx, code))
}

func (m *MockUserRepository) GetTokenByUser(ctx context.Context, userID string) (*models.VerificationToken, error) {
	return m.tokenResult(m.Called(ctx, userID))
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserRepository) ResetPassword(ctx context.Context, userID, hash string) error {
	return m.Called(ctx, userID, hash).Error(0)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, address *models.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id string) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Update(ctx context.Context, id string, patch models.AddressPatch) (*models.Address, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) CreateParent(ctx context.Context, category *models.ParentCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) CreateSub(ctx context.Context, category *models.SubCategory) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) GetParentByID(ctx context.Context, id string) (*models.ParentCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ParentCategory), args.Error(1)
}

func (m *MockCategoryRepository) GetSubByID(ctx context.Context, id string) (*models.SubCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubCategory), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]models.ParentCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ParentCategory), args.Error(1)
}

// MockBrandRepository is a mock implementation of repositories.BrandRepository
type MockBrandRepository struct {
	mock.Mock
}

func (m *MockBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	return m.Called(ctx, brand).Error(0)
}

func (m *MockBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

func (m *MockBrandRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Brand), args.Error(1)
}

// MockMailer records published mail events.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) PublishMail(ctx context.Context, event rabbitmq.MailEvent) error {
	return m.Called(ctx, event).Error(0)
}
