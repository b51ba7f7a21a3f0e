package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/beastmint/mintd/internal/core/application"
	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/pkg/errors"
	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20

// decodeBody accepts an empty body, leaving dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.INVALID_REQUEST.New("invalid request body: %s", err)
	}
	return nil
}

func parseRequestId(r *http.Request) (string, error) {
	requestId := strings.TrimSpace(chi.URLParam(r, "requestId"))
	if len(requestId) <= 0 {
		return "", errors.INVALID_REQUEST.New("missing request id")
	}
	return requestId, nil
}

func parseMintRequest(req mintRequest) application.MintInput {
	model := req.Model
	if len(model) <= 0 {
		model = req.ReplicateModel
	}
	return application.MintInput{
		Prompt:       req.Prompt,
		Model:        model,
		Name:         req.Name,
		Description:  req.Description,
		OwnerAddress: req.OwnerAddress,
		Traits:       req.Traits,
	}
}

func toMintRecord(r *domain.MintRecord) mintRecord {
	return mintRecord{
		RequestId:      r.RequestId,
		Status:         string(r.Status),
		Name:           r.Name,
		Description:    r.Description,
		ImageReference: r.ImageReference,
		OwnerAddress:   r.OwnerAddress,
		Traits:         r.Traits,
		NftAddress:     r.NftAddress,
		NftIndex:       r.NftIndex,
		MarketplaceUrl: r.MarketplaceUrl,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
