package handlers

import (
	"net/http"

	"github.com/beastmint/mintd/internal/core/application"
	"github.com/beastmint/mintd/internal/interface/http/response"
)

type TransferHandler struct {
	transferSvc application.TransferService
}

func NewTransferHandler(transferSvc application.TransferService) *TransferHandler {
	return &TransferHandler{transferSvc}
}

func (h *TransferHandler) SendNft(w http.ResponseWriter, r *http.Request) {
	var req sendNftRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.transferSvc.SendNft(r.Context(), req.NftAddress, req.ToAddress)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, sendNftResponse{
		Success:    true,
		FromWallet: result.FromWallet,
		ToAddress:  result.ToAddress,
		NftAddress: result.NftAddress,
		Seqno:      result.Seqno,
	})
}

func (h *TransferHandler) SendJetton(w http.ResponseWriter, r *http.Request) {
	var req sendJettonRequest
	if err := decodeBody(w, r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	result, err := h.transferSvc.SendJetton(
		r.Context(), req.recipient(), string(req.Amount),
	)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, sendJettonResponse{
		Success:      true,
		FromWallet:   result.FromWallet,
		ToWallet:     result.ToWallet,
		JettonAmount: result.JettonAmount,
		Seqno:        result.Seqno,
	})
}

func (h *TransferHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	info, err := h.transferSvc.GetWalletInfo(r.Context())
	if err != nil {
		response.Error(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, walletResponse{
		Success:    true,
		Address:    info.Address,
		Balance:    info.Balance,
		BalanceTon: info.BalanceTon,
		Seqno:      info.Seqno,
	})
}
