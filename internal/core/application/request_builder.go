package application

import (
	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/google/uuid"
)

// MintRequestBuilder gives every call a fresh request id. Callers retrying
// the same logical mint must reuse the request they already built.
type MintRequestBuilder struct {
	newId func() string
}

func NewMintRequestBuilder() *MintRequestBuilder {
	return &MintRequestBuilder{uuid.NewString}
}

func (b *MintRequestBuilder) Build(
	ownerAddress, name, description, imageReference string, traits []domain.Trait,
) domain.MintRequest {
	return domain.MintRequest{
		RequestId:      b.newId(),
		OwnerAddress:   ownerAddress,
		Name:           name,
		Description:    description,
		ImageReference: imageReference,
		Traits:         traits,
	}
}
