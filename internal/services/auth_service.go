package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"github.com/dgrijalva/jwt-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the payload of an access token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.StandardClaims
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email    string
	Password string
	Name     models.Name
	Phone    *string
}

// AuthResult is returned by operations that hand out a fresh token.
type AuthResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	mailer    Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logrus.Logger
	newCode   func() (string, error)
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mailer Mailer, jwtSecret string, tokenTTL time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		newCode:   verificationCode,
	}
}

// Signup creates an unverified account, sends its code and signs the user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email: normalizeEmail(in.Email),
		Hash:  string(hash),
		Name:  in.Name,
		Phone: in.Phone,
		Role:  models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user, code); err != nil {
		return nil, apperror.FromStorage(err)
	}

	s.sendMail(ctx, rabbitmq.TemplateConfirm, user, code)

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

// Signin checks the credentials and returns an access token.
func (s *AuthService) Signin(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Forbidden("Credentials invalid")
		}
		return "", apperror.FromStorage(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return "", apperror.Forbidden("Credentials invalid")
	}
	return s.GenerateToken(user)
}

// Verify consumes the code of userID and marks the account verified.
func (s *AuthService) Verify(ctx context.Context, userID, code string) error {
	token, err := s.userRepo.GetToken(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Unauthorized("invalid verification code")
		}
		return apperror.FromStorage(err)
	}
	if token.UserID != userID {
		return apperror.Unauthorized("invalid verification code")
	}
	if err := s.userRepo.MarkVerified(ctx, userID); err != nil {
		return apperror.FromStorage(err)
	}
	if token.User != nil {
		s.sendMail(ctx, rabbitmq.TemplateConfirmed, token.User, "")
	}
	return nil
}

// UpdateEmail moves the account to a new address that must be verified again.
func (s *AuthService) UpdateEmail(ctx context.Context, userID, email string) (*AuthResult, error) {
	code, err := s.newCode()
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.UpdateEmail(ctx, userID, normalizeEmail(email), code)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	s.sendMail(ctx, rabbitmq.TemplateConfirm, user, code)

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, AccessToken: token}, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, password, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Forbidden("Credentials invalid")
		}
		return apperror.FromStorage(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return apperror.Forbidden("Credentials invalid")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return apperror.FromStorage(s.userRepo.UpdatePassword(ctx, userID, string(hash)))
}

// ForgotPasswordRequest issues a reset code when the address is known. It
// succeeds for unknown addresses too so callers cannot probe for accounts.
func (s *AuthService) ForgotPasswordRequest(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return apperror.FromStorage(err)
	}
	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetToken(ctx, user.ID, code); err != nil {
		return apperror.FromStorage(err)
	}
	s.sendMail(ctx, rabbitmq.TemplateConfirm, user, code)
	return nil
}

// ForgotPasswordVerify resets the password of the code's owner and signs them in.
func (s *AuthService) ForgotPasswordVerify(ctx context.Context, code, newPassword string) (string, error) {
	token, err := s.userRepo.GetToken(ctx, code)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("invalid verification code")
		}
		return "", apperror.FromStorage(err)
	}
	if token.User == nil {
		return "", apperror.Unauthorized("invalid verification code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.ResetPassword(ctx, token.UserID, string(hash)); err != nil {
		return "", apperror.FromStorage(err)
	}
	s.sendMail(ctx, rabbitmq.TemplateConfirmed, token.User, "")
	return s.GenerateToken(token.User)
}

// ResendVerification mails the pending code again.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.InvalidInput("no pending verification for this email")
		}
		return apperror.FromStorage(err)
	}
	token, err := s.userRepo.GetTokenByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.InvalidInput("no pending verification for this email")
		}
		return apperror.FromStorage(err)
	}
	if err := s.mailer.PublishMail(ctx, mailEvent(rabbitmq.TemplateConfirm, user, token.Code)); err != nil {
		return apperror.InvalidInput("could not send verification code")
	}
	return nil
}

// GenerateToken signs an access token for user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// sendMail publishes best effort: the account change already happened.
func (s *AuthService) sendMail(ctx context.Context, template string, user *models.User, code string) {
	if err := s.mailer.PublishMail(ctx, mailEvent(template, user, code)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"template": template,
			"user_id":  user.ID,
		}).Warn("failed to publish mail event")
	}
}

func mailEvent(template string, user *models.User, code string) rabbitmq.MailEvent {
	return rabbitmq.MailEvent{
		Template: template,
		To:       user.Email,
		Name:     user.Name.FullName(),
		Code:     code,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// verificationCode returns a uniformly random six digit code.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
