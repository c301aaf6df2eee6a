package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// likeEscaper makes LIKE wildcards in search text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ErrNotFound is returned when no archived quote has the requested id.
var ErrNotFound = errors.New("archived quote not found")

// Record is a generated quote document.
type Record struct {
	ID           int64           `json:"id"`
	QuoteID      string          `json:"quote_id"`
	ProjectID    string          `json:"project_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
	PDF          []byte          `json:"-"`
}

// Store keeps generated quote PDFs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore returns a store over a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Put archives a document and returns it with its id and timestamp set.
func (s *Store) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO quote_documents (quote_id, project_id, customer_name, total, pdf, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.QuoteID, rec.ProjectID, rec.CustomerName, rec.Total.String(), rec.PDF, rec.CreatedAt.Format(time.DateTime))
	if err != nil {
		return Record{}, fmt.Errorf("insert quote document: %w", err)
	}

	rec.ID, err = result.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("read quote document id: %w", err)
	}
	return rec, nil
}

// Get loads one archived document including its PDF.
func (s *Store) Get(ctx context.Context, id int64) (Record, error) {
	var (
		rec       Record
		total     string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, quote_id, project_id, customer_name, total, pdf, created_at
		FROM quote_documents
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.QuoteID, &rec.ProjectID, &rec.CustomerName, &total, &rec.PDF, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("query quote document: %w", err)
	}

	if err := fill(&rec, total, createdAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns archived documents newest first, without PDF bytes. A
// non-empty query keeps documents whose quote id or customer name contains it.
func (s *Store) List(ctx context.Context, query string) ([]Record, error) {
	search := "%" + likeEscaper.Replace(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, quote_id, project_id, customer_name, total, created_at
		FROM quote_documents
		WHERE (? = '' OR quote_id LIKE ? ESCAPE '\' OR customer_name LIKE ? ESCAPE '\')
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quote documents: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rec       Record
			total     string
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.QuoteID, &rec.ProjectID, &rec.CustomerName, &total, &createdAt); err != nil {
			return nil, fmt.Errorf("scan quote document: %w", err)
		}
		if err := fill(&rec, total, createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote documents: %w", err)
	}

	return records, nil
}

func fill(rec *Record, total, createdAt string) error {
	var err error
	if rec.Total, err = decimal.NewFromString(total); err != nil {
		return fmt.Errorf("parse total of quote document %d: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return fmt.Errorf("parse created_at of quote document %d: %w", rec.ID, err)
	}
	return nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
