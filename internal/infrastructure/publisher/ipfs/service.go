package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
	shell "github.com/ipfs/go-ipfs-api"
	log "github.com/sirupsen/logrus"
)

// service pins content to a self hosted IPFS (kubo) node through its RPC api.
type service struct {
	sh *shell.Shell
}

func NewService(nodeUrl string) (ports.ContentPublisher, error) {
	if len(nodeUrl) <= 0 {
		return nil, mintderrors.CONFIGURATION_MISSING.New("missing ipfs node url").
			WithMetadata(mintderrors.ConfigMetadata{Field: "ipfs-url"})
	}
	return &service{shell.NewShell(nodeUrl)}, nil
}

func (s *service) Publish(
	ctx context.Context, data []byte, displayName string,
) (*domain.PublishedAsset, error) {
	cid, err := s.sh.Add(bytes.NewReader(data), shell.Pin(true), shell.CidVersion(1))
	if err != nil {
		return nil, mintderrors.PUBLISH_FAILED.Wrap(err).
			WithMetadata(mintderrors.PublishMetadata{Name: displayName})
	}

	log.WithField("name", displayName).Debugf("pinned %d bytes as %s", len(data), cid)
	asset := domain.NewPublishedAsset(cid)
	return &asset, nil
}

func (s *service) PublishJSON(
	ctx context.Context, document any, name string,
) (*domain.PublishedAsset, error) {
	buf, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return s.Publish(ctx, buf, name)
}
