package application

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
)

// AssetNormalizer turns whatever the generator returned into raw image bytes.
// Resolution order: lazy url, literal url, first list element, raw bytes.
type AssetNormalizer struct {
	httpClient *http.Client
}

func NewAssetNormalizer(httpClient *http.Client) *AssetNormalizer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AssetNormalizer{httpClient}
}

func (n *AssetNormalizer) Normalize(ctx context.Context, output *ports.GeneratorOutput) ([]byte, error) {
	if output == nil {
		return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New("generator returned no output")
	}

	switch output.Kind {
	case ports.OutputLazyUrl, ports.OutputUrl:
		return n.resolveUrl(ctx, *output)
	case ports.OutputUrlList:
		if len(output.UrlList) <= 0 {
			return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New("generator returned an empty list")
		}
		first := output.UrlList[0]
		if first.Kind != ports.OutputLazyUrl && first.Kind != ports.OutputUrl {
			return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New(
				"unsupported list element in generator output",
			).WithMetadata(string(output.Raw))
		}
		return n.resolveUrl(ctx, first)
	case ports.OutputBytes:
		if len(output.Bytes) <= 0 {
			return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New("generator returned empty bytes")
		}
		return output.Bytes, nil
	default:
		return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New(
			"unrecognized generator output",
		).WithMetadata(string(output.Raw))
	}
}

func (n *AssetNormalizer) resolveUrl(ctx context.Context, output ports.GeneratorOutput) ([]byte, error) {
	url := output.Url
	if output.Kind == ports.OutputLazyUrl {
		if output.LazyUrl == nil {
			return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New("lazy output without accessor")
		}
		resolved, err := output.LazyUrl(ctx)
		if err != nil {
			return nil, errors.ASSET_DOWNLOAD_FAILED.Wrap(
				fmt.Errorf("failed to resolve output url: %w", err),
			)
		}
		url = resolved
	}
	if len(url) <= 0 {
		return nil, errors.UNRECOGNIZED_OUTPUT_SHAPE.New("generator returned an empty url")
	}
	return n.fetch(ctx, url)
}

func (n *AssetNormalizer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.ASSET_DOWNLOAD_FAILED.Wrap(err)
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, errors.ASSET_DOWNLOAD_FAILED.Wrap(err)
	}
	// nolint:errcheck
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ASSET_DOWNLOAD_FAILED.New(
			"failed to download image: %d", resp.StatusCode,
		).WithMetadata(errors.StatusCodeMetadata{StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ASSET_DOWNLOAD_FAILED.Wrap(err).
			WithMetadata(errors.StatusCodeMetadata{StatusCode: resp.StatusCode})
	}
	return data, nil
}
