package handlers

import (
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler serves the category tree.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service, validate: validator.New()}
}

func (h *CategoryHandler) RegisterRoutes(router fiber.Router, g Guards) {
	categoryRoutes := router.Group("/category")
	categoryRoutes.Post("/addparentcategory", g.staff(h.HandleAddParentCategory)...)
	categoryRoutes.Post("/addsubcategory", g.staff(h.HandleAddSubCategory)...)
	categoryRoutes.Get("/categorynames", h.HandleListCategories)
}

type NameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type SubCategoryRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	ParentCategoryID string `json:"parent_category_id" validate:"required"`
}

func (h *CategoryHandler) HandleAddParentCategory(c *fiber.Ctx) error {
	var req NameRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	category, err := h.service.CreateParentCategory(c.UserContext(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleAddSubCategory(c *fiber.Ctx) error {
	var req SubCategoryRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	category, err := h.service.AddSubCategory(c.UserContext(), req.Name, req.ParentCategoryID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CategoryHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(categories)
}

// BrandHandler serves brands.
type BrandHandler struct {
	service  *services.BrandService
	validate *validator.Validate
}

func NewBrandHandler(service *services.BrandService) *BrandHandler {
	return &BrandHandler{service: service, validate: validator.New()}
}

func (h *BrandHandler) RegisterRoutes(router fiber.Router, g Guards) {
	brandRoutes := router.Group("/brand")
	brandRoutes.Post("/addbrand", g.staff(h.HandleAddBrand)...)
	brandRoutes.Delete("/removebrand/:id", g.staff(h.HandleRemoveBrand)...)
	brandRoutes.Get("/brandnames", h.HandleListBrands)
}

func (h *BrandHandler) HandleAddBrand(c *fiber.Ctx) error {
	var req NameRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	brand, err := h.service.AddBrand(c.UserContext(), req.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

func (h *BrandHandler) HandleRemoveBrand(c *fiber.Ctx) error {
	if err := h.service.RemoveBrand(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *BrandHandler) HandleListBrands(c *fiber.Ctx) error {
	brands, err := h.service.ListBrands(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(brands)
}
