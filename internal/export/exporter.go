package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Simplici0/quotedesk/internal/archive"
	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quote"
)

var (
	// ErrQuoteIDUnavailable is returned when the backend cannot issue a quote id.
	ErrQuoteIDUnavailable = errors.New("quote id unavailable")
	// ErrNotReady is returned when no project is selected or the total is zero.
	ErrNotReady = errors.New("quote is not ready for export")
)

// Snapshot is a consistent copy of a quote session taken for export.
type Snapshot struct {
	ProjectID      quote.ProjectID
	Customer       quote.Customer
	Categories     []quote.Category
	Selection      quote.Selection
	AdditionalCost string
	Totals         pricing.Totals
}

// Ready reports whether the snapshot can be exported.
func (s Snapshot) Ready() bool {
	return s.ProjectID != "" && !s.Totals.IsZero()
}

// QuoteIDSource issues sequential quote identifiers.
type QuoteIDSource interface {
	NextQuoteID(ctx context.Context) (string, error)
}

// QuoteSaver persists quote cost breakdowns.
type QuoteSaver interface {
	SaveQuote(ctx context.Context, payload any) (json.RawMessage, error)
}

// Renderer turns a document into printable bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// Archive keeps generated documents.
type Archive interface {
	Put(ctx context.Context, rec archive.Record) (archive.Record, error)
}

// Exporter generates quote documents and saves quote records.
type Exporter struct {
	ids      QuoteIDSource
	saver    QuoteSaver
	renderer Renderer
	archive  Archive
	branding Branding
}

// NewExporter wires an exporter with the default branding.
func NewExporter(ids QuoteIDSource, saver QuoteSaver, renderer Renderer, archive Archive) *Exporter {
	return &Exporter{ids: ids, saver: saver, renderer: renderer, archive: archive, branding: DefaultBranding}
}

// WithBranding returns a copy of the exporter printing the given branding.
func (e *Exporter) WithBranding(b Branding) *Exporter {
	cp := *e
	cp.branding = b
	return &cp
}

// Generate renders the snapshot as a document under a freshly issued quote
// id and archives it. No document is produced without an id.
func (e *Exporter) Generate(ctx context.Context, snap Snapshot) (archive.Record, error) {
	if !snap.Ready() {
		return archive.Record{}, ErrNotReady
	}

	quoteID, err := e.ids.NextQuoteID(ctx)
	if err != nil {
		log.Error().Err(err).Str("project_id", string(snap.ProjectID)).Msg("failed to obtain quote id")
		return archive.Record{}, fmt.Errorf("%w: %w", ErrQuoteIDUnavailable, err)
	}

	doc := e.branding.BuildDocument(quoteID, snap.Customer, snap.Categories, snap.Totals, snap.Totals.AdditionalCost)
	pdf, err := e.renderer.Render(doc)
	if err != nil {
		return archive.Record{}, fmt.Errorf("render quote %s: %w", quoteID, err)
	}

	rec, err := e.archive.Put(ctx, archive.Record{
		QuoteID:      quoteID,
		ProjectID:    string(snap.ProjectID),
		CustomerName: snap.Customer.Name,
		Total:        snap.Totals.Grand,
		PDF:          pdf,
	})
	if err != nil {
		return archive.Record{}, fmt.Errorf("archive quote %s: %w", quoteID, err)
	}

	log.Info().
		Str("quote_id", quoteID).
		Str("project_id", string(snap.ProjectID)).
		Str("total", snap.Totals.Grand.StringFixed(2)).
		Int("bytes", len(pdf)).
		Msg("quote generated")
	return rec, nil
}

// Save sends the snapshot's cost breakdown to the backend.
func (e *Exporter) Save(ctx context.Context, snap Snapshot) (json.RawMessage, error) {
	if !snap.Ready() {
		return nil, ErrNotReady
	}

	payload := BuildPayload(snap.ProjectID, snap.Customer, snap.Categories, &snap.Selection, snap.Totals.AdditionalCost, snap.Totals.Grand)
	reply, err := e.saver.SaveQuote(ctx, payload)
	if err != nil {
		log.Error().Err(err).Str("project_id", string(snap.ProjectID)).Msg("failed to save quote")
		return nil, fmt.Errorf("save quote: %w", err)
	}

	log.Info().Str("project_id", string(snap.ProjectID)).RawJSON("reply", reply).Msg("quote saved")
	return reply, nil
}
