package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/w3art/marko/configs"
)

const openAIBaseURL = "https://api.openai.com"

type ImageService interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type imageService struct {
	cfg    config.Config
	client *resty.Client
}

func NewImageService(cfg config.Config) ImageService {
	client := resty.New().
		SetBaseURL(openAIBaseURL).
		SetTimeout(60 * time.Second).
		SetAuthToken(cfg.OpenAIAPIKey).
		SetHeader("Content-Type", "application/json")

	return &imageService{
		cfg:    cfg,
		client: client,
	}
}

type imageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageGenerationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate renders an image for the prompt and stores it under the upload
// directory, returning the path it is served from.
func (s *imageService) Generate(ctx context.Context, prompt string) (string, error) {
	var result imageGenerationResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(imageGenerationRequest{
			Model:          "dall-e-3",
			Prompt:         prompt,
			N:              1,
			Size:           "1024x1024",
			ResponseFormat: "b64_json",
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/images/generations")
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("image generation request failed: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("image generation error: %s", result.Error.Message)
	}
	if resp.IsError() || len(result.Data) == 0 {
		return "", fmt.Errorf("image generation error: unexpected response (status %d)", resp.StatusCode())
	}

	imageBytes, err := base64.StdEncoding.DecodeString(result.Data[0].B64JSON)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	name, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	fileName := name + ".png"

	if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, fileName), imageBytes, 0o644); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return "/uploads/" + fileName, nil
}
