package cloudinary

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// avatarTransformation crops uploaded pictures to a square around the detected face.
const avatarTransformation = "c_fill,g_face,h_256,w_256"

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Service stores profile pictures on Cloudinary.
type Service struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary service instance.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Service{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the picture under publicID, replacing any previous version, and returns its secure URL.
func (s *Service) Upload(ctx context.Context, publicID string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicID,
		ResourceType:   "image",
		Transformation: avatarTransformation,
		Overwrite:      api.Bool(true),
		Invalidate:     api.Bool(true),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload profile picture: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("profile picture uploaded")
	return result.SecureURL, nil
}

// Remove deletes the picture stored under publicID.
func (s *Service) Remove(ctx context.Context, publicID string) error {
	fullID := publicID
	if s.folder != "" {
		fullID = s.folder + "/" + publicID
	}

	result, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     fullID,
		ResourceType: "image",
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to remove profile picture: %w", err)
	}

	s.logger.Info().Str("public_id", fullID).Str("result", result.Result).Msg("profile picture removed")
	return nil
}
