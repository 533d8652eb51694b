package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newAuthService(repo *MockUserRepository, mailer *MockMailer) *services.AuthService {
	return services.NewAuthService(repo, mailer, testJWTSecret, time.Hour, logger.Discard())
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Signup(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	var code string
	repo.On("Create", ctx, mock.AnythingOfType("*models.User"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*models.User)
			u.ID = "u1"
			code = args.String(2)
		}).Return(nil).Once()
	mailer.On("PublishMail", ctx, mock.MatchedBy(func(e rabbitmq.MailEvent) bool {
		return e.Template == rabbitmq.TemplateConfirm && e.To == "ada@example.com" && e.Code == code
	})).Return(nil).Once()

	res, err := svc.Signup(ctx, services.SignupInput{
		Email:    " Ada@Example.com ",
		Password: "password123",
		Name:     models.Name{FirstName: "Ada", LastName: "Lovelace"},
	})
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.Hash), []byte("password123")))

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestAuthService_SignupMailFailureIsNotFatal(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	mailer.On("PublishMail", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := svc.Signup(ctx, services.SignupInput{Email: "a@b.c", Password: "password123"})
	assert.NoError(t, err)
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockMailer))
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything, mock.Anything).Return(apperror.Conflict("email already registered")).Once()

	_, err := svc.Signup(ctx, services.SignupInput{Email: "a@b.c", Password: "password123"})
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)
	assert.Equal(t, 409, apperror.HTTPStatus(err))
}

func TestAuthService_Signin(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockMailer))
	ctx := context.Background()

	user := &models.User{Base: models.Base{ID: "u1"}, Email: "a@b.c", Hash: hashed(t, "secret123"), Role: models.RoleAdmin}
	repo.On("GetByEmail", ctx, "a@b.c").Return(user, nil)
	repo.On("GetByEmail", ctx, "nobody@b.c").Return(nil, apperror.NotFound("user", "nobody@b.c"))

	token, err := svc.Signin(ctx, "A@b.c", "secret123")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = svc.Signin(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, "Credentials invalid", apperror.Message(err))

	_, err = svc.Signin(ctx, "nobody@b.c", "secret123")
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestAuthService_Verify(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	owner := &models.User{Base: models.Base{ID: "u1"}, Email: "a@b.c"}
	repo.On("GetToken", ctx, "123456").Return(&models.VerificationToken{UserID: "u1", Code: "123456", User: owner}, nil)
	repo.On("GetToken", ctx, "000000").Return(nil, apperror.NotFound("verification code", "000000"))
	repo.On("MarkVerified", ctx, "u1").Return(nil).Once()
	mailer.On("PublishMail", ctx, mock.MatchedBy(func(e rabbitmq.MailEvent) bool {
		return e.Template == rabbitmq.TemplateConfirmed
	})).Return(nil).Once()

	require.NoError(t, svc.Verify(ctx, "u1", "123456"))

	err := svc.Verify(ctx, "u2", "123456")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	err = svc.Verify(ctx, "u1", "000000")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo, new(MockMailer))
	ctx := context.Background()

	repo.On("GetByID", ctx, "u1", false).Return(&models.User{Base: models.Base{ID: "u1"}, Hash: hashed(t, "old-password")}, nil)
	repo.On("UpdatePassword", ctx, "u1", mock.MatchedBy(func(h string) bool {
		return bcrypt.CompareHashAndPassword([]byte(h), []byte("new-password")) == nil
	})).Return(nil).Once()

	require.NoError(t, svc.UpdatePassword(ctx, "u1", "old-password", "new-password"))
	assert.ErrorIs(t, svc.UpdatePassword(ctx, "u1", "bad", "new-password"), apperror.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestAuthService_UpdateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	updated := &models.User{Base: models.Base{ID: "u1"}, Email: "new@b.c"}
	repo.On("UpdateEmail", ctx, "u1", "new@b.c", mock.AnythingOfType("string")).Return(updated, nil).Once()
	mailer.On("PublishMail", ctx, mock.Anything).Return(nil).Once()

	res, err := svc.UpdateEmail(ctx, "u1", "NEW@b.c")
	require.NoError(t, err)
	assert.Equal(t, "new@b.c", res.User.Email)
	assert.NotEmpty(t, res.AccessToken)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	user := &models.User{Base: models.Base{ID: "u1"}, Email: "a@b.c"}
	repo.On("GetByEmail", ctx, "a@b.c").Return(user, nil)
	repo.On("GetByEmail", ctx, "ghost@b.c").Return(nil, apperror.NotFound("user", "ghost@b.c"))
	repo.On("SetToken", ctx, "u1", mock.AnythingOfType("string")).Return(nil).Once()
	mailer.On("PublishMail", ctx, mock.Anything).Return(nil)

	require.NoError(t, svc.ForgotPasswordRequest(ctx, "a@b.c"))
	require.NoError(t, svc.ForgotPasswordRequest(ctx, "ghost@b.c"))

	repo.On("GetToken", ctx, "654321").Return(&models.VerificationToken{UserID: "u1", User: user}, nil)
	repo.On("GetToken", ctx, "111111").Return(nil, apperror.NotFound("verification code", "111111"))
	repo.On("ResetPassword", ctx, "u1", mock.AnythingOfType("string")).Return(nil).Once()

	token, err := svc.ForgotPasswordVerify(ctx, "654321", "brand-new-pass")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)

	_, err = svc.ForgotPasswordVerify(ctx, "111111", "brand-new-pass")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	repo.AssertExpectations(t)
}

func TestAuthService_ResendVerification(t *testing.T) {
	repo := new(MockUserRepository)
	mailer := new(MockMailer)
	svc := newAuthService(repo, mailer)
	ctx := context.Background()

	user := &models.User{Base: models.Base{ID: "u1"}, Email: "a@b.c"}
	repo.On("GetByEmail", ctx, "a@b.c").Return(user, nil)
	repo.On("GetTokenByUser", ctx, "u1").Return(&models.VerificationToken{UserID: "u1", Code: "424242"}, nil).Once()
	mailer.On("PublishMail", ctx, mock.MatchedBy(func(e rabbitmq.MailEvent) bool { return e.Code == "424242" })).Return(nil).Once()

	require.NoError(t, svc.ResendVerification(ctx, "a@b.c"))

	repo.On("GetTokenByUser", ctx, "u1").Return(nil, apperror.NotFound("verification code for user", "u1")).Once()
	assert.ErrorIs(t, svc.ResendVerification(ctx, "a@b.c"), apperror.ErrInvalidInput)
	mailer.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := newAuthService(new(MockUserRepository), new(MockMailer))

	_, err := svc.ValidateToken("invalid.jwt.token")
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "u1", ExpiresAt: time.Now().Add(-time.Hour).Unix()},
	})
	s, _ := expired.SignedString([]byte(testJWTSecret))
	_, err = svc.ValidateToken(s)
	assert.Error(t, err)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
		StandardClaims: jwt.StandardClaims{Subject: "u1", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	s, _ = other.SignedString([]byte("another-secret"))
	_, err = svc.ValidateToken(s)
	assert.Error(t, err)
}
