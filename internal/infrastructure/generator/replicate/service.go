package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseUrl = "https://api.replicate.com/v1"

	statusSucceeded = "succeeded"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

type prediction struct {
	Id     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
	Urls   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type Option func(*service)

func WithBaseUrl(url string) Option {
	return func(s *service) {
		s.baseUrl = strings.TrimRight(url, "/")
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(s *service) {
		s.pollInterval = interval
	}
}

type service struct {
	baseUrl      string
	token        string
	pollInterval time.Duration
	httpClient   *http.Client
}

func NewService(token string, opts ...Option) (ports.AssetGenerator, error) {
	if len(token) <= 0 {
		return nil, mintderrors.CONFIGURATION_MISSING.New("missing replicate api token").
			WithMetadata(mintderrors.ConfigMetadata{Field: "replicate-api-token"})
	}
	svc := &service{
		baseUrl:      DefaultBaseUrl,
		token:        token,
		pollInterval: time.Second,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Run(
	ctx context.Context, model string, input map[string]any,
) (*ports.GeneratorOutput, error) {
	url, body := s.predictionRequest(model, input)

	var p prediction
	if err := s.do(ctx, http.MethodPost, url, body, &p); err != nil {
		return nil, err
	}

	for p.Status != statusSucceeded {
		switch p.Status {
		case statusFailed, statusCanceled:
			return nil, mintderrors.GENERATION_FAILED.New(
				"prediction %s %s: %v", p.Id, p.Status, p.Error,
			).WithMetadata(map[string]any{"prediction_id": p.Id, "status": p.Status})
		}
		if len(p.Urls.Get) <= 0 {
			return nil, fmt.Errorf("prediction %s has no polling url", p.Id)
		}

		log.WithField("prediction", p.Id).Debugf("prediction is %s, polling", p.Status)
		select {
		case <-time.After(s.pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if err := s.do(ctx, http.MethodGet, p.Urls.Get, nil, &p); err != nil {
			return nil, err
		}
	}

	return ParseOutput(p.Output)
}

func (s *service) predictionRequest(model string, input map[string]any) (string, map[string]any) {
	// owner/name:version pins a specific version
	if name, version, ok := strings.Cut(model, ":"); ok && len(version) > 0 {
		log.Debugf("running %s at version %s", name, version)
		return s.baseUrl + "/predictions", map[string]any{"version": version, "input": input}
	}
	return fmt.Sprintf("%s/models/%s/predictions", s.baseUrl, model), map[string]any{"input": input}
}

func (s *service) do(ctx context.Context, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return mintderrors.GENERATION_FAILED.Wrap(err)
	}
	// nolint:errcheck
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mintderrors.GENERATION_FAILED.New(
			"replicate returned status %d: %s", resp.StatusCode, buf,
		).WithMetadata(map[string]any{"statusCode": resp.StatusCode})
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("failed to parse replicate response: %w", err)
	}
	return nil
}

// ParseOutput maps the JSON prediction output into the generator tagged
// union. File objects ({"url": ...}) become lazy accessors, data URIs
// become bytes.
func ParseOutput(raw json.RawMessage) (*ports.GeneratorOutput, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to parse prediction output: %w", err)
	}

	out := parseValue(value)
	out.Raw = raw
	return &out, nil
}

func parseValue(value any) ports.GeneratorOutput {
	switch v := value.(type) {
	case string:
		if data, ok := decodeDataUri(v); ok {
			return ports.GeneratorOutput{Kind: ports.OutputBytes, Bytes: data}
		}
		return ports.GeneratorOutput{Kind: ports.OutputUrl, Url: v}
	case []any:
		list := make([]ports.GeneratorOutput, 0, len(v))
		for _, item := range v {
			list = append(list, parseValue(item))
		}
		return ports.GeneratorOutput{Kind: ports.OutputUrlList, UrlList: list}
	case map[string]any:
		if url, ok := v["url"].(string); ok {
			return ports.GeneratorOutput{
				Kind: ports.OutputLazyUrl,
				LazyUrl: func(context.Context) (string, error) {
					return url, nil
				},
			}
		}
	}
	return ports.GeneratorOutput{Kind: ports.OutputUnknown}
}

func decodeDataUri(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "data:") {
		return nil, false
	}
	_, encoded, ok := strings.Cut(s, ";base64,")
	if !ok {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, false
	}
	return data, true
}
