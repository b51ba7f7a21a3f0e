package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/beastmint/mintd/internal/core/domain"
)

type mintRequest struct {
	Prompt         string         `json:"prompt"`
	Model          string         `json:"model"`
	ReplicateModel string         `json:"replicateModel"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	OwnerAddress   string         `json:"ownerAddress"`
	Traits         []domain.Trait `json:"traits"`
}

type sendNftRequest struct {
	NftAddress string `json:"nftAddress"`
	ToAddress  string `json:"toAddress"`
}

// sendJettonRequest takes the recipient as either userWallet or toAddress.
type sendJettonRequest struct {
	UserWallet string       `json:"userWallet"`
	ToAddress  string       `json:"toAddress"`
	Amount     jettonAmount `json:"amount"`
}

func (r sendJettonRequest) recipient() string {
	if len(r.UserWallet) > 0 {
		return r.UserWallet
	}
	return r.ToAddress
}

// jettonAmount is a decimal amount sent either as a JSON number or string.
// Numbers are kept verbatim so no precision is lost to float64.
type jettonAmount string

func (a *jettonAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*a = jettonAmount(str)
		return nil
	}

	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return fmt.Errorf("amount must be a number or a decimal string")
	}
	*a = jettonAmount(num.String())
	return nil
}

type mintResponse struct {
	Success     bool           `json:"success"`
	RequestId   string         `json:"requestId"`
	Status      string         `json:"status"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Traits      []domain.Trait `json:"traits"`
	ImageCid    string         `json:"imageCid"`
	ImageUri    string         `json:"imageUri"`
	MetadataCid string         `json:"metadataCid"`
	MetadataUri string         `json:"metadataUri"`
	Marketplace map[string]any `json:"marketplace,omitempty"`
}

type mintRecord struct {
	RequestId      string         `json:"requestId"`
	Status         string         `json:"status"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	ImageReference string         `json:"imageReference"`
	OwnerAddress   string         `json:"ownerAddress"`
	Traits         []domain.Trait `json:"traits"`
	NftAddress     string         `json:"nftAddress,omitempty"`
	NftIndex       *int64         `json:"nftIndex,omitempty"`
	MarketplaceUrl string         `json:"marketplaceUrl,omitempty"`
	CreatedAt      int64          `json:"createdAt"`
	UpdatedAt      int64          `json:"updatedAt"`
}

type recordResponse struct {
	Success bool       `json:"success"`
	Record  mintRecord `json:"record"`
}

type sendNftResponse struct {
	Success    bool   `json:"success"`
	FromWallet string `json:"fromWallet"`
	ToAddress  string `json:"toAddress"`
	NftAddress string `json:"nftAddress"`
	Seqno      uint32 `json:"seqno"`
}

type sendJettonResponse struct {
	Success      bool   `json:"success"`
	FromWallet   string `json:"fromWallet"`
	ToWallet     string `json:"toWallet"`
	JettonAmount string `json:"jettonAmount"`
	Seqno        uint32 `json:"seqno"`
}

type walletResponse struct {
	Success    bool   `json:"success"`
	Address    string `json:"address"`
	Balance    uint64 `json:"balance"`
	BalanceTon string `json:"balanceTon"`
	Seqno      uint32 `json:"seqno"`
}

type healthResponse struct {
	Success bool   `json:"success"`
	Version string `json:"version"`
}
