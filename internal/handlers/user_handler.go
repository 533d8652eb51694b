package handlers

import (
	"strconv"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves the profile and address routes of the signed in user.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service, validate: validator.New()}
}

// RegisterRoutes registers the user routes. Every route requires a token.
func (h *UserHandler) RegisterRoutes(router fiber.Router, g Guards) {
	userRoutes := router.Group("/user", g.Auth)
	userRoutes.Get("/me", h.HandleGetMe)
	userRoutes.Patch("/editUser", h.HandleEditUser)
	userRoutes.Post("/addaddress", h.HandleAddAddress)
	userRoutes.Get("/address/:id", h.HandleGetAddress)
	userRoutes.Patch("/editaddress/:id", h.HandleEditAddress)
	userRoutes.Delete("/deleteaddress/:id", h.HandleDeleteAddress)
}

type EditUserRequest struct {
	Name  *models.Name `json:"name"`
	Phone *string      `json:"phone" validate:"omitempty,e164"`
}

type AddressRequest struct {
	Address     string `json:"address" validate:"required,max=255"`
	StreetName  string `json:"street_name" validate:"required,max=255"`
	Landmark    string `json:"landmark" validate:"max=255"`
	Locality    string `json:"locality" validate:"max=255"`
	Pincode     int    `json:"pincode" validate:"required,gt=0"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"required,max=100"`
	AddressType bool   `json:"address_type"`
}

type EditAddressRequest struct {
	Address     *string `json:"address" validate:"omitempty,min=1,max=255"`
	StreetName  *string `json:"street_name" validate:"omitempty,min=1,max=255"`
	Landmark    *string `json:"landmark" validate:"omitempty,max=255"`
	Locality    *string `json:"locality" validate:"omitempty,max=255"`
	Pincode     *int    `json:"pincode" validate:"omitempty,gt=0"`
	City        *string `json:"city" validate:"omitempty,min=1,max=100"`
	State       *string `json:"state" validate:"omitempty,min=1,max=100"`
	AddressType *bool   `json:"address_type"`
}

// HandleGetMe returns the caller's profile, with addresses when ?address=true.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	withAddresses := false
	if raw := c.Query("address"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return writeError(c, apperror.InvalidInput("address must be a boolean"))
		}
		withAddresses = v
	}
	user, err := h.service.GetUser(c.UserContext(), currentUser(c), withAddresses)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleEditUser(c *fiber.Ctx) error {
	var req EditUserRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	user, err := h.service.EditUser(c.UserContext(), currentUser(c), models.UserPatch{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) HandleAddAddress(c *fiber.Ctx) error {
	var req AddressRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	address := &models.Address{
		Address:     req.Address,
		StreetName:  req.StreetName,
		Landmark:    req.Landmark,
		Locality:    req.Locality,
		Pincode:     req.Pincode,
		City:        req.City,
		State:       req.State,
		AddressType: req.AddressType,
	}
	if err := h.service.AddAddress(c.UserContext(), currentUser(c), address); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

func (h *UserHandler) HandleGetAddress(c *fiber.Ctx) error {
	address, err := h.service.GetAddress(c.UserContext(), currentUser(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(address)
}

func (h *UserHandler) HandleEditAddress(c *fiber.Ctx) error {
	var req EditAddressRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	address, err := h.service.EditAddress(c.UserContext(), currentUser(c), c.Params("id"), models.AddressPatch{
		Address:     req.Address,
		StreetName:  req.StreetName,
		Landmark:    req.Landmark,
		Locality:    req.Locality,
		Pincode:     req.Pincode,
		City:        req.City,
		State:       req.State,
		AddressType: req.AddressType,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(address)
}

func (h *UserHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(c.UserContext(), currentUser(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
