package secrets

import (
	"context"
	"encoding/json"
	"os"

	"bendigotelco/connecthub/pkg/apperr"
)

type fileProvider struct {
	path string
}

// NewFileProvider reads the bundle from a JSON blob on disk, mirroring a
// mounted secret volume.
func NewFileProvider(path string) Provider {
	return &fileProvider{path: path}
}

func (p *fileProvider) Fetch(_ context.Context) (*Bundle, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSecrets, "failed to read secret blob", err)
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, apperr.Wrap(apperr.KindSecrets, "failed to parse secret blob", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
