package handlers

import (
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, g Guards) {
	var authRoutes fiber.Router
	if g.AuthLimit != nil {
		authRoutes = router.Group("/auth", g.AuthLimit)
	} else {
		authRoutes = router.Group("/auth")
	}
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/signin", h.HandleSignin)
	authRoutes.Post("/verify", g.Auth, h.HandleVerify)
	authRoutes.Post("/verification/resend", h.HandleResendVerification)
	authRoutes.Patch("/update/email/req", g.Auth, h.HandleUpdateEmail)
	authRoutes.Patch("/update/password", g.Auth, h.HandleUpdatePassword)
	authRoutes.Patch("/forgotpasswordreq", h.HandleForgotPasswordRequest)
	authRoutes.Patch("/forgotpasswordverify", h.HandleForgotPasswordVerify)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Name     models.Name `json:"name"`
	Phone    *string     `json:"phone" validate:"omitempty,e164"`
}

// SigninRequest represents the request body for login.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdatePasswordRequest struct {
	Password    string `json:"password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

type ForgotPasswordVerifyRequest struct {
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// HandleSignup creates an account and signs it in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	res, err := h.authService.Signup(c.UserContext(), services.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// HandleSignin handles user login and issues a JWT token.
func (h *AuthHandler) HandleSignin(c *fiber.Ctx) error {
	var req SigninRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	token, err := h.authService.Signin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"access_token": token})
}

func (h *AuthHandler) HandleVerify(c *fiber.Ctx) error {
	var req CodeRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.authService.Verify(c.UserContext(), currentUser(c), req.Code); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusAccepted, "Account verified")
}

func (h *AuthHandler) HandleUpdateEmail(c *fiber.Ctx) error {
	var req EmailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.authService.UpdateEmail(c.UserContext(), currentUser(c), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

func (h *AuthHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.authService.UpdatePassword(c.UserContext(), currentUser(c), req.Password, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Password updated")
}

func (h *AuthHandler) HandleForgotPasswordRequest(c *fiber.Ctx) error {
	var req EmailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.authService.ForgotPasswordRequest(c.UserContext(), req.Email); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Verification code sent")
}

func (h *AuthHandler) HandleForgotPasswordVerify(c *fiber.Ctx) error {
	var req ForgotPasswordVerifyRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	token, err := h.authService.ForgotPasswordVerify(c.UserContext(), req.Code, req.NewPassword)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"access_token": token})
}

func (h *AuthHandler) HandleResendVerification(c *fiber.Ctx) error {
	var req EmailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	if err := h.authService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Verification code sent")
}
