package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"storefront/internal/apperror"
	"storefront/internal/models"
	"storefront/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const imageFolder = "products"

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ImageFile is one uploaded file as received from the client.
type ImageFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadedImage describes a stored image. It maps onto models.ProductImage.
type UploadedImage struct {
	AssetID   string `json:"asset_id"`
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	SecureURL string `json:"secure_url"`
}

// ProductImage converts the upload into the row stored with a product.
func (u UploadedImage) ProductImage() models.ProductImage {
	return models.ProductImage{AssetID: u.AssetID, PublicID: u.PublicID, Format: u.Format, SecureURL: u.SecureURL}
}

// ImageService validates and stores product images.
type ImageService struct {
	store   storage.ObjectStore
	maxSize int64
	log     *logrus.Logger
}

// NewImageService creates a new ImageService.
func NewImageService(store storage.ObjectStore, maxSize int64, log *logrus.Logger) *ImageService {
	return &ImageService{store: store, maxSize: maxSize, log: log}
}

// Upload checks the size and the detected content type, then stores the file.
func (s *ImageService) Upload(ctx context.Context, file ImageFile) (*UploadedImage, error) {
	if file.Size > s.maxSize {
		return nil, apperror.InvalidInput(fmt.Sprintf("file %s exceeds %d bytes", file.Filename, s.maxSize))
	}
	data, err := io.ReadAll(io.LimitReader(file.Content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, apperror.InvalidInput(fmt.Sprintf("file %s exceeds %d bytes", file.Filename, s.maxSize))
	}

	mime := mimetype.Detect(data)
	format, ok := allowedImageTypes[mime.String()]
	if !ok {
		return nil, apperror.InvalidInput(fmt.Sprintf("file %s is not a supported image (%s)", file.Filename, mime.String()))
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."); ext != "" && ext != format && !(ext == "jpeg" && format == "jpg") {
		return nil, apperror.InvalidInput(fmt.Sprintf("file %s extension does not match its content", file.Filename))
	}

	assetID := uuid.NewString()
	url, err := s.store.Put(ctx, objectKey(assetID), mime.String(), data)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	s.log.WithFields(logrus.Fields{"public_id": assetID, "bytes": len(data)}).Info("image uploaded")
	return &UploadedImage{
		AssetID:   strings.ReplaceAll(assetID, "-", ""),
		PublicID:  assetID,
		Format:    format,
		SecureURL: url,
	}, nil
}

// UploadMany stores every file or none: files stored before a failure are removed.
func (s *ImageService) UploadMany(ctx context.Context, files []ImageFile) ([]UploadedImage, error) {
	if err := checkCount("images", len(files), 1, maxImages); err != nil {
		return nil, err
	}
	uploaded := make([]UploadedImage, 0, len(files))
	for _, f := range files {
		img, err := s.Upload(ctx, f)
		if err != nil {
			for _, done := range uploaded {
				if delErr := s.store.Delete(ctx, objectKey(done.PublicID)); delErr != nil {
					s.log.WithError(delErr).WithField("public_id", done.PublicID).Warn("failed to remove partial upload")
				}
			}
			return nil, err
		}
		uploaded = append(uploaded, *img)
	}
	return uploaded, nil
}

// Delete removes a stored image by its public id.
func (s *ImageService) Delete(ctx context.Context, publicID string) error {
	if _, err := uuid.Parse(publicID); err != nil {
		return apperror.InvalidInput("invalid public id")
	}
	if err := s.store.Delete(ctx, objectKey(publicID)); err != nil {
		return apperror.Storage(err)
	}
	return nil
}

func objectKey(publicID string) string {
	return imageFolder + "/" + publicID
}
