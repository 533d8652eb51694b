package handlers

import (
	"mime/multipart"

	"storefront/internal/apperror"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ImageHandler accepts product image uploads.
type ImageHandler struct {
	service *services.ImageService
}

func NewImageHandler(service *services.ImageService) *ImageHandler {
	return &ImageHandler{service: service}
}

func (h *ImageHandler) RegisterRoutes(router fiber.Router, g Guards) {
	imageRoutes := router.Group("/image")
	imageRoutes.Post("/upload", g.staff(h.HandleUpload)...)
	imageRoutes.Post("/uploads", g.staff(h.HandleUploadMany)...)
	imageRoutes.Delete("/delete/:publicId", g.staff(h.HandleDelete)...)
}

// HandleUpload stores the multipart field "file".
func (h *ImageHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, apperror.InvalidInput("file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, apperror.InvalidInput("file could not be read"))
	}
	defer f.Close()

	img, err := h.service.Upload(c.UserContext(), services.ImageFile{Filename: fh.Filename, Size: fh.Size, Content: f})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(img)
}

// HandleUploadMany stores every file of the multipart field "files".
func (h *ImageHandler) HandleUploadMany(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, apperror.InvalidInput("multipart form is required"))
	}
	headers := form.File["files"]

	files := make([]services.ImageFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return writeError(c, apperror.InvalidInput("file could not be read"))
		}
		opened = append(opened, f)
		files = append(files, services.ImageFile{Filename: fh.Filename, Size: fh.Size, Content: f})
	}

	imgs, err := h.service.UploadMany(c.UserContext(), files)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(imgs)
}

func (h *ImageHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("publicId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
