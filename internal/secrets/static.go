package secrets

import "context"

type staticProvider struct {
	bundle Bundle
}

// NewStaticProvider serves a bundle supplied directly by configuration.
// Useful for local development against the mock backend.
func NewStaticProvider(bundle Bundle) Provider {
	return &staticProvider{bundle: bundle}
}

func (p *staticProvider) Fetch(_ context.Context) (*Bundle, error) {
	b := p.bundle
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
