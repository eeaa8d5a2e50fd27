package export

import (
	"fmt"

	"github.com/ecomops/privacy-engine/internal/domain/export"
)

// RendererStrategy resolves the configured export renderer by code. The
// resolution happens per call so a configuration reload takes effect without
// rebuilding the pipeline.
type RendererStrategy struct {
	code      string
	renderers map[string]export.Renderer
}

// NewRendererStrategy creates a strategy over the given renderer pool.
func NewRendererStrategy(code string, renderers map[string]export.Renderer) *RendererStrategy {
	return &RendererStrategy{code: code, renderers: renderers}
}

// Resolve returns the configured renderer. It fails with ErrUnknownRenderer
// when the configured code matches no registered renderer.
func (s *RendererStrategy) Resolve() (export.Renderer, error) {
	r, ok := s.renderers[s.code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", export.ErrUnknownRenderer, s.code)
	}
	return r, nil
}
