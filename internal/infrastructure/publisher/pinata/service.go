package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
)

const (
	DefaultBaseUrl = "https://api.pinata.cloud"

	pinFileEndpoint = "/pinning/pinFileToIPFS"
	pinJSONEndpoint = "/pinning/pinJSONToIPFS"

	defaultJSONName = "nft-metadata"
)

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinataMetadata struct {
	Name string `json:"name"`
}

type pinataOptions struct {
	CidVersion int `json:"cidVersion"`
}

type service struct {
	baseUrl    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewService(baseUrl, apiKey, apiSecret string) (ports.ContentPublisher, error) {
	if len(apiKey) <= 0 || len(apiSecret) <= 0 {
		return nil, mintderrors.CONFIGURATION_MISSING.New("missing pinata api credentials").
			WithMetadata(mintderrors.ConfigMetadata{Field: "pinata-api-key"})
	}
	if len(baseUrl) <= 0 {
		baseUrl = DefaultBaseUrl
	}
	return &service{
		baseUrl:   strings.TrimRight(baseUrl, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: time.Minute,
		},
	}, nil
}

func (s *service) Publish(
	ctx context.Context, data []byte, displayName string,
) (*domain.PublishedAsset, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", displayName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writeJSONField(writer, "pinataMetadata", pinataMetadata{displayName}); err != nil {
		return nil, err
	}
	if err := writeJSONField(writer, "pinataOptions", pinataOptions{1}); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return s.pin(ctx, pinFileEndpoint, displayName, writer.FormDataContentType(), body)
}

func (s *service) PublishJSON(
	ctx context.Context, document any, name string,
) (*domain.PublishedAsset, error) {
	if len(name) <= 0 {
		name = defaultJSONName
	}
	payload, err := json.Marshal(map[string]any{
		"pinataContent":  document,
		"pinataMetadata": pinataMetadata{name},
		"pinataOptions":  pinataOptions{1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return s.pin(ctx, pinJSONEndpoint, name, "application/json", bytes.NewReader(payload))
}

func (s *service) pin(
	ctx context.Context, endpoint, name, contentType string, body io.Reader,
) (*domain.PublishedAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseUrl+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", s.apiKey)
	req.Header.Set("pinata_secret_api_key", s.apiSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, publishFailed(name, err)
	}
	// nolint:errcheck
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, publishFailed(name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, publishFailed(
			name, fmt.Errorf("pinata returned status %d: %s", resp.StatusCode, buf),
		)
	}

	var pinned pinResponse
	if err := json.Unmarshal(buf, &pinned); err != nil {
		return nil, publishFailed(name, fmt.Errorf("invalid pinata response: %w", err))
	}
	if len(pinned.IpfsHash) <= 0 {
		return nil, publishFailed(name, fmt.Errorf("pinata response has no content id"))
	}

	asset := domain.NewPublishedAsset(pinned.IpfsHash)
	return &asset, nil
}

func writeJSONField(writer *multipart.Writer, field string, value any) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return writer.WriteField(field, string(buf))
}

func publishFailed(name string, cause error) error {
	return mintderrors.PUBLISH_FAILED.Wrap(cause).
		WithMetadata(mintderrors.PublishMetadata{Name: name})
}
