package domain

import "fmt"

const IpfsScheme = "ipfs"

// Trait is a single NFT attribute. Order of traits is preserved all the way
// into the published metadata document.
type Trait struct {
	TraitType   string `json:"trait_type"`
	Value       any    `json:"value"`
	DisplayType string `json:"display_type,omitempty"`
}

type GenerationRequest struct {
	PromptText      string
	ModelIdentifier string
	Traits          []Trait
}

// PublishedAsset is immutable once created.
type PublishedAsset struct {
	ContentId string
	Uri       string
}

func NewPublishedAsset(contentId string) PublishedAsset {
	return PublishedAsset{
		ContentId: contentId,
		Uri:       fmt.Sprintf("%s://%s", IpfsScheme, contentId),
	}
}

// MetadataDocument is the NFT metadata JSON pinned next to the image.
type MetadataDocument struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Attributes  []Trait `json:"attributes"`
}
