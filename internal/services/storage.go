package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"vaulted/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxRehostedImageBytes is the ceiling for images fetched from third-party
// URLs. Exactly this many bytes is accepted; one more is rejected.
const MaxRehostedImageBytes = 8 << 20

// RehostedImage is the result of re-uploading a remote image into owned storage
type RehostedImage struct {
	URL string
	Key string
}

// StorageService provides object storage functionality
type StorageService struct {
	s3Client   *s3.S3
	bucket     string
	baseURL    string
	httpClient *http.Client
}

// NewStorageService creates a new storage service
func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("S3 configuration missing")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
		baseURL:  fmt.Sprintf("https://%s", cfg.Bucket),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// RehostImage downloads an externally hosted image and re-uploads it under
// the owner's path, returning a stable public URL. Every failure mode
// degrades to (nil, false) so callers can fall back to the original URL.
func (s *StorageService) RehostImage(ctx context.Context, rawURL string, userID uuid.UUID) (*RehostedImage, bool) {
	body, contentType, ok := s.fetchImage(ctx, rawURL)
	if !ok {
		return nil, false
	}

	ext := extensionForContentType(contentType)
	key := fmt.Sprintf("users/%s/rehosted/%d%s", userID, time.Now().UnixNano(), ext)

	if err := s.putObject(key, body, contentType); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Str("key", key).Msg("Failed to upload rehosted image")
		return nil, false
	}

	return &RehostedImage{URL: s.publicURL(key), Key: key}, true
}

// fetchImage downloads an image into memory, enforcing the size ceiling.
func (s *StorageService) fetchImage(ctx context.Context, rawURL string) ([]byte, string, bool) {
	// Third-party APIs occasionally return URLs wrapped in stray quotes
	cleanURL := strings.Trim(strings.TrimSpace(rawURL), `"'`)
	if cleanURL == "" {
		return nil, "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cleanURL, nil)
	if err != nil {
		log.Warn().Err(err).Str("url", cleanURL).Msg("Invalid image URL")
		return nil, "", false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("url", cleanURL).Msg("Failed to download image")
		return nil, "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("url", cleanURL).Msg("Image download returned non-success status")
		return nil, "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxRehostedImageBytes+1))
	if err != nil {
		log.Warn().Err(err).Str("url", cleanURL).Msg("Failed to read image body")
		return nil, "", false
	}
	if len(body) > MaxRehostedImageBytes {
		log.Warn().Str("url", cleanURL).Msg("Image exceeds size ceiling, skipping rehost")
		return nil, "", false
	}

	contentType := resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	return body, contentType, true
}

// UploadImage stores client-supplied image bytes under the owner's path and
// returns the public URL and storage key.
func (s *StorageService) UploadImage(userID uuid.UUID, filename string, data []byte) (string, string, error) {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", "", fmt.Errorf("file is not an image: %s", contentType)
	}

	ext := path.Ext(filename)
	if ext == "" {
		ext = extensionForContentType(contentType)
	}
	key := fmt.Sprintf("users/%s/uploads/%s%s", userID, uuid.New(), ext)

	if err := s.putObject(key, data, contentType); err != nil {
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s.publicURL(key), key, nil
}

// DeleteObject removes an object from storage
func (s *StorageService) DeleteObject(key string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *StorageService) putObject(key string, data []byte, contentType string) error {
	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	return err
}

func (s *StorageService) publicURL(key string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
