package storage

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hadfi53/rakb-sub004/internal/config"
)

// BlobStorage uploads binary content and returns a public URL.
type BlobStorage interface {
	// Upload stores the content under the given public ID and returns its URL.
	Upload(ctx context.Context, publicID string, content []byte) (string, error)
}

// CloudinaryStorage implements BlobStorage against the Cloudinary signed
// upload API.
type CloudinaryStorage struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string
	client    *http.Client
}

// NewCloudinaryStorage creates a CloudinaryStorage from config.
func NewCloudinaryStorage(cfg config.StorageConfig) *CloudinaryStorage {
	return &CloudinaryStorage{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload performs a signed upload and returns the secure URL.
func (s *CloudinaryStorage) Upload(ctx context.Context, publicID string, content []byte) (string, error) {
	if s.cloudName == "" || s.apiKey == "" || s.apiSecret == "" {
		return "", fmt.Errorf("cloudinary credentials not configured")
	}
	if len(content) == 0 {
		return "", fmt.Errorf("empty content")
	}

	finalPublicID := publicID
	if s.folder != "" {
		finalPublicID = s.folder + "/" + publicID
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := fmt.Sprintf("%x", sha1.Sum([]byte(
		fmt.Sprintf("public_id=%s&timestamp=%s%s", finalPublicID, timestamp, s.apiSecret))))

	form := url.Values{}
	form.Add("file", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(content))
	form.Add("api_key", s.apiKey)
	form.Add("public_id", finalPublicID)
	form.Add("timestamp", timestamp)
	form.Add("signature", signature)

	endpoint := "https://api.cloudinary.com/v1_1/" + s.cloudName + "/image/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed with status %d: %s", res.StatusCode, string(body))
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		URL       string `json:"url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if out.Error.Message != "" {
		return "", fmt.Errorf("upload rejected: %s", out.Error.Message)
	}

	uploadedURL := out.SecureURL
	if uploadedURL == "" {
		uploadedURL = out.URL
	}
	if uploadedURL == "" {
		return "", fmt.Errorf("upload response contained no URL")
	}
	return uploadedURL, nil
}
