package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
)

// allowedTypes limits uploads to media Meta accepts for posts.
var allowedTypes = map[string]struct{}{
	"jpg":  {},
	"png":  {},
	"gif":  {},
	"mp4":  {},
	"mov":  {},
	"webp": {},
}

type MediaService interface {
	Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error)
	List(ctx context.Context, userID int64) ([]*models.MediaAsset, error)
	Remove(ctx context.Context, id, userID int64) error
}

type mediaService struct {
	r2 *R2Service
	ma repository.MediaAssetRepository
}

func NewMediaService(r2 *R2Service, ma repository.MediaAssetRepository) MediaService {
	return &mediaService{
		r2: r2,
		ma: ma,
	}
}

func (s *mediaService) Upload(ctx context.Context, userID int64, file *multipart.FileHeader) (*models.MediaAsset, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type")
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	key, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	key = key + "." + fileType.Extension

	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, err
	}

	asset := &models.MediaAsset{
		UserID:   userID,
		FileName: key,
		FileType: fileType.MIME.Value,
		FileSize: int64(len(fileBytes)),
		FileURL:  s.r2.PublicURL(key),
	}

	id, err := s.ma.Create(ctx, nil, asset)
	if err != nil {
		return nil, err
	}
	asset.ID = id

	return asset, nil
}

func (s *mediaService) List(ctx context.Context, userID int64) ([]*models.MediaAsset, error) {
	return s.ma.List(ctx, userID)
}

func (s *mediaService) Remove(ctx context.Context, id, userID int64) error {
	_, isExist, err := s.ma.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return fmt.Errorf("media asset not found")
	}
	return s.ma.Remove(ctx, id)
}
