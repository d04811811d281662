package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// CloudinaryConfig contains credentials required to talk to Cloudinary.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// CloudinaryStore implements AudioStore on top of Cloudinary. References are
// the secure delivery URLs returned at upload time.
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
	http   *http.Client
	logger zerolog.Logger
}

// NewCloudinaryStore constructs a Cloudinary-backed audio store.
func NewCloudinaryStore(cfg CloudinaryConfig, logger zerolog.Logger) (*CloudinaryStore, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{
		client: cld,
		folder: cfg.Folder,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger.With().Str("component", "cloudinary_store").Logger(),
	}, nil
}

// Save uploads the audio stream and returns the secure URL.
func (s *CloudinaryStore) Save(ctx context.Context, name string, audio io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       strings.Trim(s.folder, "/"),
		PublicID:     buildPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, audio, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("audio uploaded to cloudinary")

	return result.SecureURL, nil
}

// Open fetches the artifact back from its delivery URL.
func (s *CloudinaryStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build artifact request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch artifact: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func buildPublicID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, base)

	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("audio-%d", time.Now().Unix())
	}

	return fmt.Sprintf("%s-%d", base, time.Now().Unix())
}
