package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/smart-agence/crm-service/internal/errs"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/paging"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    []model.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Client talks to the CRM API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Health returns nil when the API answers its health probe.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// ListAgents returns every agent, paging until a short page.
func (c *Client) ListAgents(ctx context.Context) ([]model.Agent, error) {
	return paging.ListAll(ctx, func(ctx context.Context, offset, limit int) ([]model.Agent, error) {
		var page []model.Agent
		err := c.do(ctx, http.MethodGet, "/agents/"+pageQuery(offset, limit), nil, &page)
		return page, err
	})
}

func (c *Client) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	return paging.ListAll(ctx, func(ctx context.Context, offset, limit int) ([]model.Ticket, error) {
		var page []model.Ticket
		err := c.do(ctx, http.MethodGet, "/tickets/"+pageQuery(offset, limit), nil, &page)
		return page, err
	})
}

func (c *Client) CreateAgent(ctx context.Context, in model.AgentInput) (*model.Agent, error) {
	var a model.Agent
	if err := c.do(ctx, http.MethodPost, "/agents/", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAgent(ctx context.Context, id uint64, in model.AgentInput) (*model.Agent, error) {
	var a model.Agent
	if err := c.do(ctx, http.MethodPut, "/agents/"+idPath(id), in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAgent(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, "/agents/"+idPath(id), nil, nil)
}

func (c *Client) CreateTicket(ctx context.Context, in model.TicketInput) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets/", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTicket(ctx context.Context, id uint64, in model.TicketInput) (*model.Ticket, error) {
	var t model.Ticket
	if err := c.do(ctx, http.MethodPut, "/tickets/"+idPath(id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) SetTicketStatus(ctx context.Context, id uint64, in model.EvenementInput) (*model.Evenement, error) {
	var e model.Evenement
	if err := c.do(ctx, http.MethodPost, "/tickets/"+idPath(id)+"/status", in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) Reset(ctx context.Context) (*model.ResetResult, error) {
	var res model.ResetResult
	if err := c.do(ctx, http.MethodPost, "/reset", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("apiclient: marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("apiclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", errs.ErrAPIUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er model.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			apiErr.Message = er.Error
			apiErr.Details = er.Details
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", method, path, err)
	}
	return nil
}

func idPath(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func pageQuery(offset, limit int) string {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return "?" + q.Encode()
}
