package handlers

import (
	"net/http"

	"github.com/beastmint/mintd/internal/core/application"
	"github.com/beastmint/mintd/internal/interface/http/response"
)

type MintHandler struct {
	mintSvc application.MintService
}

func NewMintHandler(mintSvc application.MintService) *MintHandler {
	return &MintHandler{mintSvc}
}

func (h *MintHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.mintSvc.Mint(r.Context(), parseMintRequest(req))
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, mintResponse{
		Success:     true,
		RequestId:   result.RequestId,
		Status:      string(result.Status),
		Name:        result.Name,
		Description: result.Description,
		Traits:      result.Traits,
		ImageCid:    result.ImageCid,
		ImageUri:    result.ImageUri,
		MetadataCid: result.MetadataCid,
		MetadataUri: result.MetadataUri,
		Marketplace: result.Marketplace,
	})
}

func (h *MintHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	requestId, err := parseRequestId(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	status, err := h.mintSvc.GetMintStatus(r.Context(), requestId)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, status)
}

func (h *MintHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	requestId, err := parseRequestId(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	record, err := h.mintSvc.GetMintRecord(r.Context(), requestId)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, recordResponse{true, toMintRecord(record)})
}

func (h *MintHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	requestId, err := parseRequestId(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	record, err := h.mintSvc.RefreshMintRecord(r.Context(), requestId)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, recordResponse{true, toMintRecord(record)})
}
