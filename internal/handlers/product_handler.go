package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/search"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const maxTake = 100

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, g Guards) {
	productRoutes := router.Group("/product")
	productRoutes.Post("/addProduct", g.staff(h.HandleAddProduct)...)
	productRoutes.Patch("/updateProduct/addVariation/:id", g.staff(h.HandleAddVariation)...)
	productRoutes.Patch("/updateProduct/:id", g.staff(h.HandleUpdateProduct)...)
	productRoutes.Get("/getproduct/:id", h.HandleGetProduct)
	productRoutes.Patch("/updatetag/:id", g.staff(h.HandleUpdateTags)...)
	productRoutes.Get("/search", h.HandleSearch)
	productRoutes.Get("/searchcount", h.HandleSearchCount)
}

type DetailRequest struct {
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Discount *float64 `json:"discount" validate:"omitempty,gte=0"`
	Size     *string  `json:"size" validate:"omitempty,min=1,max=3"`
	Color    *string  `json:"color" validate:"omitempty,hexcolor"`
	Quantity int      `json:"quantity" validate:"required,min=1"`
}

func (d DetailRequest) model() models.ProductDetail {
	return models.ProductDetail{
		Price:    *d.Price,
		Discount: d.Discount,
		Size:     d.Size,
		Color:    d.Color,
		Quantity: d.Quantity,
	}
}

type ImageRequest struct {
	AssetID   string `json:"asset_id" validate:"required"`
	PublicID  string `json:"public_id" validate:"required"`
	Format    string `json:"format" validate:"required"`
	SecureURL string `json:"secure_url" validate:"required,url"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AddProductRequest struct {
	Name             string          `json:"name" validate:"required,max=255"`
	Description      string          `json:"description" validate:"required"`
	Details          []DetailRequest `json:"details" validate:"required,min=1,max=5,dive"`
	Images           []ImageRequest  `json:"images" validate:"required,min=1,max=10,dive"`
	Tags             []TagRequest    `json:"tags" validate:"required,min=1,max=10,dive"`
	ParentCategoryID *string         `json:"parent_category_id" validate:"omitempty,uuid"`
	SubCategoryID    *string         `json:"sub_category_id" validate:"omitempty,uuid"`
	BrandID          *string         `json:"brand_id" validate:"omitempty,uuid"`
}

type DetailPatchRequest struct {
	ID       string   `json:"id" validate:"required"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Discount *float64 `json:"discount" validate:"omitempty,gte=0"`
	Size     *string  `json:"size" validate:"omitempty,min=1,max=3"`
	Color    *string  `json:"color" validate:"omitempty,hexcolor"`
	Quantity *int     `json:"quantity" validate:"omitempty,min=1"`
}

type UpdateProductRequest struct {
	Name             *string              `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string              `json:"description"`
	Details          []DetailPatchRequest `json:"details" validate:"omitempty,min=1,max=5,dive"`
	ParentCategoryID *string              `json:"parent_category_id" validate:"omitempty,uuid"`
	SubCategoryID    *string              `json:"sub_category_id" validate:"omitempty,uuid"`
	BrandID          *string              `json:"brand_id" validate:"omitempty,uuid"`
}

type UpdateTagsRequest struct {
	Tags []TagRequest `json:"tags" validate:"required,min=1,max=10,dive"`
}

// HandleAddProduct creates a product with its details, images and tags.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var req AddProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		ParentCategoryID: req.ParentCategoryID,
		SubCategoryID:    req.SubCategoryID,
		BrandID:          req.BrandID,
	}
	for _, d := range req.Details {
		product.Details = append(product.Details, d.model())
	}
	for _, img := range req.Images {
		product.Images = append(product.Images, models.ProductImage{
			AssetID:   img.AssetID,
			PublicID:  img.PublicID,
			Format:    img.Format,
			SecureURL: img.SecureURL,
		})
	}
	for _, t := range req.Tags {
		product.Tags = append(product.Tags, models.Tag{Name: t.Name})
	}

	if err := h.service.AddProduct(c.UserContext(), product); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct patches a product and answers 202 Accepted.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req UpdateProductRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}

	patch := models.ProductPatch{
		Name:             req.Name,
		Description:      req.Description,
		ParentCategoryID: req.ParentCategoryID,
		SubCategoryID:    req.SubCategoryID,
		BrandID:          req.BrandID,
	}
	for _, d := range req.Details {
		patch.Details = append(patch.Details, models.DetailPatch{
			ID:       d.ID,
			Price:    d.Price,
			Discount: d.Discount,
			Size:     d.Size,
			Color:    d.Color,
			Quantity: d.Quantity,
		})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(product)
}

func (h *ProductHandler) HandleAddVariation(c *fiber.Ctx) error {
	var req DetailRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	detail := req.model()
	if err := h.service.AddVariation(c.UserContext(), c.Params("id"), &detail); err != nil {
		return writeError(c, err)
	}
	return c.JSON(detail)
}

func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleUpdateTags(c *fiber.Ctx) error {
	var req UpdateTagsRequest
	if err := bind(c, h.validate, &req); err != nil {
		return writeError(c, err)
	}
	names := make([]string, len(req.Tags))
	for i, t := range req.Tags {
		names[i] = t.Name
	}
	product, err := h.service.UpdateTags(c.UserContext(), c.Params("id"), names)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// HandleSearch returns one page of products matching the query string.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	params, err := parseSearchParams(c)
	if err != nil {
		return writeError(c, err)
	}
	hits, err := h.service.Search(c.UserContext(), params)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(hits)
}

// HandleSearchCount returns the number of products matching the filter.
func (h *ProductHandler) HandleSearchCount(c *fiber.Ctx) error {
	priceMin, err := intQuery(c, "greaterthan")
	if err != nil {
		return writeError(c, err)
	}
	priceMax, err := intQuery(c, "lessthan")
	if err != nil {
		return writeError(c, err)
	}
	n, err := h.service.SearchCount(c.UserContext(), strings.TrimSpace(c.Query("searchQuery")), float64(priceMin), float64(priceMax))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(n)
}

func parseSearchParams(c *fiber.Ctx) (search.Params, error) {
	var p search.Params

	priceMin, err := intQuery(c, "greaterthan")
	if err != nil {
		return p, err
	}
	priceMax, err := intQuery(c, "lessthan")
	if err != nil {
		return p, err
	}
	take, err := intQuery(c, "take")
	if err != nil {
		return p, err
	}
	if take < 1 || take > maxTake {
		return p, apperror.InvalidInput(fmt.Sprintf("take must be between 1 and %d", maxTake))
	}
	dir, err := search.ParseDirection(c.Query("sortbyViews"))
	if err != nil {
		return p, apperror.InvalidInput("sortbyViews must be asc or desc")
	}

	p.PriceMin = float64(priceMin)
	p.PriceMax = float64(priceMax)
	p.Limit = take
	p.Query = strings.TrimSpace(c.Query("searchQuery"))
	p.Cursor = c.Query("cursor")
	p.SortByViews = dir
	switch strings.ToLower(c.Query("sortbyPrice")) {
	case "true", "1":
		p.SortByPrice = true
	}
	return p, nil
}

// intQuery parses a required integer query parameter.
func intQuery(c *fiber.Ctx, key string) (int, error) {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0, apperror.InvalidInput(fmt.Sprintf("Validation failed (numeric string is expected) for %s", key))
	}
	return v, nil
}
