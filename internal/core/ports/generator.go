package ports

import (
	"context"
	"encoding/json"
)

// GeneratorOutputKind tags which shape the generator returned.
type GeneratorOutputKind int

const (
	OutputUnknown GeneratorOutputKind = iota
	OutputUrl
	OutputUrlList
	OutputLazyUrl
	OutputBytes
)

// GeneratorOutput is the tagged union of every output shape the image
// generator is known to return. Only the field matching Kind is set, except
// for UrlList whose elements are themselves GeneratorOutput values of kind
// OutputUrl or OutputLazyUrl.
type GeneratorOutput struct {
	Kind    GeneratorOutputKind
	Url     string
	UrlList []GeneratorOutput
	LazyUrl func(ctx context.Context) (string, error)
	Bytes   []byte
	// Raw keeps the undecoded payload for diagnostics.
	Raw json.RawMessage
}

type AssetGenerator interface {
	Run(ctx context.Context, model string, input map[string]any) (*GeneratorOutput, error)
}
