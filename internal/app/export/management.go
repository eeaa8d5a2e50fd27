// Package export assembles a customer's personal data into a document and
// serializes it for download.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ecomops/privacy-engine/internal/domain/export"
	"github.com/ecomops/privacy-engine/pkg/common/logger"
)

// Management aggregates per-domain personal data into a single document and
// renders it through the configured renderer. Sections are collected
// concurrently; a failing section fails the whole export since an incomplete
// disclosure is worse than none.
type Management struct {
	processors map[string]export.Processor
	renderers  *RendererStrategy
	dir        string

	logger *logger.Logger
	tracer trace.Tracer
}

// NewManagement creates an export pipeline writing documents under dir.
func NewManagement(renderers *RendererStrategy, dir string, log *logger.Logger, tracer trace.Tracer) *Management {
	log = log.With("component", "export_management")
	return &Management{
		processors: make(map[string]export.Processor),
		renderers:  renderers,
		dir:        dir,
		logger:     log,
		tracer:     tracer,
	}
}

// Register binds a data-domain collector to a section name.
func (m *Management) Register(name string, p export.Processor) {
	m.processors[name] = p
}

// Execute collects every registered section for the customer. Sections whose
// domain holds no data for the customer are omitted from the document.
func (m *Management) Execute(ctx context.Context, customerID int64) (export.Document, error) {
	ctx, span := m.tracer.Start(ctx, "export_management.execute",
		trace.WithAttributes(attribute.Int64("customer_id", customerID)),
	)
	defer span.End()

	var (
		mu  sync.Mutex
		doc = make(export.Document, len(m.processors))
	)

	g, ctx := errgroup.WithContext(ctx)
	for name, processor := range m.processors {
		name, processor := name, processor
		g.Go(func() error {
			section, err := processor.Export(ctx, customerID)
			if err != nil {
				return fmt.Errorf("exporting %q for customer %d: %w", name, customerID, err)
			}
			if section == nil {
				return nil
			}

			mu.Lock()
			doc[name] = section
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.logger.Debug(ctx, "Export document assembled", "customer_id", customerID, "sections", len(doc))
	return doc, nil
}

// SaveData renders the document and writes it under the export directory,
// returning the file path.
func (m *Management) SaveData(ctx context.Context, name string, doc export.Document) (string, error) {
	ctx, span := m.tracer.Start(ctx, "export_management.save_data",
		trace.WithAttributes(attribute.String("name", name)),
	)
	defer span.End()

	renderer, err := m.renderers.Resolve()
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	out, err := renderer.Render(doc)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(m.dir, fmt.Sprintf("%s.%s", name, renderer.Extension()))
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}

	m.logger.Info(ctx, "Export document written", "path", path)
	return path, nil
}
