package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/quotedesk/internal/quote"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxBodyBytes = 4 << 20
)

// errBodyTooLarge is returned when a response exceeds the body limit.
var errBodyTooLarge = errors.New("response body too large")

// Client talks to the quote backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

// NewClient creates a client for the backend rooted at baseURL. A zero
// timeout selects the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    defaultMaxBodyBytes,
	}
}

// ListProjects returns the ids of all projects.
func (c *Client) ListProjects(ctx context.Context) ([]quote.ProjectID, error) {
	var projects []projectDTO
	if err := c.getJSON(ctx, "list projects", "/api/projects", &projects); err != nil {
		return nil, err
	}

	ids := make([]quote.ProjectID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, quote.ProjectID(p.PID))
	}
	return ids, nil
}

// GetCustomer returns the customer of a project.
func (c *Client) GetCustomer(ctx context.Context, projectID quote.ProjectID) (quote.Customer, error) {
	var customer customerDTO
	path := "/api/customer/" + url.PathEscape(string(projectID))
	if err := c.getJSON(ctx, "get customer", path, &customer); err != nil {
		return quote.Customer{}, err
	}
	return customer.toCustomer(), nil
}

// ListCategories returns the catalog categories.
func (c *Client) ListCategories(ctx context.Context) ([]quote.Category, error) {
	var categories []categoryDTO
	if err := c.getJSON(ctx, "list categories", "/api/categories", &categories); err != nil {
		return nil, err
	}

	out := make([]quote.Category, 0, len(categories))
	for _, cat := range categories {
		out = append(out, quote.Category{ID: cat.CategoryID, Name: cat.CategoryName})
	}
	return out, nil
}

// ListItems returns the catalog items of one category.
func (c *Client) ListItems(ctx context.Context, categoryID int64) ([]quote.CatalogItem, error) {
	var items []itemDTO
	path := "/api/items/" + strconv.FormatInt(categoryID, 10)
	if err := c.getJSON(ctx, "list items", path, &items); err != nil {
		return nil, err
	}

	out := make([]quote.CatalogItem, 0, len(items))
	for _, it := range items {
		out = append(out, quote.CatalogItem{ID: it.ItemID, Name: it.ItemName, UnitPrice: it.PricePU})
	}
	return out, nil
}

// NextQuoteID asks the backend for the identifier of the next quote.
func (c *Client) NextQuoteID(ctx context.Context) (string, error) {
	var resp nextQuoteIDDTO
	if err := c.getJSON(ctx, "next quote id", "/api/last-quote-id", &resp); err != nil {
		return "", err
	}
	if resp.NextQuoteID == "" {
		return "", &Error{Op: "next quote id", Kind: KindDecode, Err: errors.New("response has no nextQuoteId")}
	}
	return string(resp.NextQuoteID), nil
}

// SaveQuote posts a quote cost breakdown and returns the backend's reply.
func (c *Client) SaveQuote(ctx context.Context, payload any) (json.RawMessage, error) {
	const op = "save quote"

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/save-quote", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var reply json.RawMessage
	if err := c.do(req, op, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: fmt.Errorf("%w: over %d bytes", errBodyTooLarge, c.maxBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, Kind: KindStatus, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return nil
}
