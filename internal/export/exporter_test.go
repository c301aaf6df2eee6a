package export

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/quotedesk/internal/archive"
	"github.com/Simplici0/quotedesk/internal/quote"
)

type fakeIDs struct {
	id  string
	err error
}

func (f fakeIDs) NextQuoteID(context.Context) (string, error) {
	return f.id, f.err
}

type fakeSaver struct {
	payload any
	err     error
}

func (f *fakeSaver) SaveQuote(_ context.Context, payload any) (json.RawMessage, error) {
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

type fakeRenderer struct {
	docs []Document
}

func (f *fakeRenderer) Render(doc Document) ([]byte, error) {
	f.docs = append(f.docs, doc)
	return []byte("%PDF-fake"), nil
}

type fakeArchive struct {
	records []archive.Record
}

func (f *fakeArchive) Put(_ context.Context, rec archive.Record) (archive.Record, error) {
	rec.ID = int64(len(f.records) + 1)
	f.records = append(f.records, rec)
	return rec, nil
}

func readySnapshot(t *testing.T) Snapshot {
	return Snapshot{
		ProjectID:      "101",
		Customer:       quote.Customer{Name: "Asha Rao", Address: "Mangalore"},
		Categories:     testCategories,
		Selection:      *testSelection(t),
		AdditionalCost: "5",
		Totals:         testTotals(t),
	}
}

func TestGenerate_ArchivesRenderedDocument(t *testing.T) {
	renderer := &fakeRenderer{}
	arch := &fakeArchive{}
	e := NewExporter(fakeIDs{id: "1043"}, &fakeSaver{}, renderer, arch)

	rec, err := e.Generate(context.Background(), readySnapshot(t))
	require.NoError(t, err)

	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, "1043", rec.QuoteID)
	assert.Equal(t, "101", rec.ProjectID)
	assert.Equal(t, "Asha Rao", rec.CustomerName)
	assert.Equal(t, []byte("%PDF-fake"), rec.PDF)
	require.Len(t, renderer.docs, 1)
	assert.Equal(t, "1043", renderer.docs[0].QuoteID)
}

func TestGenerate_FailsWithoutQuoteID(t *testing.T) {
	renderer := &fakeRenderer{}
	arch := &fakeArchive{}
	backendErr := errors.New("connection refused")
	e := NewExporter(fakeIDs{err: backendErr}, &fakeSaver{}, renderer, arch)

	_, err := e.Generate(context.Background(), readySnapshot(t))

	assert.ErrorIs(t, err, ErrQuoteIDUnavailable)
	assert.ErrorIs(t, err, backendErr)
	assert.Empty(t, renderer.docs)
	assert.Empty(t, arch.records)
}

func TestGenerate_NotReady(t *testing.T) {
	e := NewExporter(fakeIDs{id: "1"}, &fakeSaver{}, &fakeRenderer{}, &fakeArchive{})

	snap := readySnapshot(t)
	snap.ProjectID = ""
	_, err := e.Generate(context.Background(), snap)
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = e.Generate(context.Background(), Snapshot{ProjectID: "1"})
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestGenerate_UsesConfiguredBranding(t *testing.T) {
	renderer := &fakeRenderer{}
	e := NewExporter(fakeIDs{id: "9"}, &fakeSaver{}, renderer, &fakeArchive{}).
		WithBranding(Branding{Company: "Acme Irrigation"})

	_, err := e.Generate(context.Background(), readySnapshot(t))
	require.NoError(t, err)
	assert.Equal(t, "Acme Irrigation", renderer.docs[0].Branding.Company)
}

func TestSave_SendsPayload(t *testing.T) {
	saver := &fakeSaver{}
	e := NewExporter(fakeIDs{}, saver, &fakeRenderer{}, &fakeArchive{})

	reply, err := e.Save(context.Background(), readySnapshot(t))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(reply))

	p, ok := saver.payload.(Payload)
	require.True(t, ok)
	assert.Equal(t, quote.ProjectID("101"), p.ProjectID)
	plumbing, _ := p.Amount("plumbing_cost")
	assert.Equal(t, "50", plumbing.String())
	labour, _ := p.Amount("labour_cost")
	assert.Equal(t, "150.5", labour.String())
	assert.Equal(t, "205.5", p.TotalCost.String())
}

func TestSave_PropagatesBackendError(t *testing.T) {
	saver := &fakeSaver{err: errors.New("status 500")}
	e := NewExporter(fakeIDs{}, saver, &fakeRenderer{}, &fakeArchive{})

	_, err := e.Save(context.Background(), readySnapshot(t))
	assert.ErrorIs(t, err, saver.err)
}
