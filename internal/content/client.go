package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/infra"
)

const defaultTimeout = 15 * time.Second

// Options controls how the content-store client is configured.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the headless content store holding protocol, template and
// practitioner documents. It is the single write path into the CMS; handlers
// and the materializer depend on the domain store interfaces it implements.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *infra.Logger
}

// NewClient builds a content-store client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("content: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: baseURL,
		token:   opts.Token,
		client:  client,
		logger:  opts.Logger,
	}, nil
}

// document is the wire envelope for one stored document.
type document struct {
	ID   string          `json:"id,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type documentList struct {
	Items []document `json:"items"`
}

func (c *Client) createDocument(ctx context.Context, docType string, data any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("content: encode %s: %w", docType, err)
	}
	var created document
	err = c.do(ctx, http.MethodPost, "/v1/documents", document{Type: docType, Data: payload}, &created)
	if err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("content: store returned no id for %s", docType)
	}
	return created.ID, nil
}

func (c *Client) getDocument(ctx context.Context, docType, id string, out any) error {
	var doc document
	if err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return err
	}
	if doc.Type != docType {
		return domain.ErrNotFound
	}
	return decodeDocument(doc, out)
}

// queryDocuments fetches documents of one type matching the given field
// filters, newest first.
func (c *Client) queryDocuments(ctx context.Context, docType string, filters map[string]string) ([]document, error) {
	values := url.Values{}
	values.Set("type", docType)
	for k, v := range filters {
		values.Set(k, v)
	}
	var list documentList
	if err := c.do(ctx, http.MethodGet, "/v1/documents?"+values.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) patchDocument(ctx context.Context, id string, set map[string]any) error {
	body := map[string]any{"set": set}
	return c.do(ctx, http.MethodPatch, "/v1/documents/"+url.PathEscape(id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("content: encode request: %w", err)
		}
		reader = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("content: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("content: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 400:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("content: request failed")
		}
		return fmt.Errorf("content: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("content: decode response: %w", err)
	}
	return nil
}

func decodeDocument(doc document, out any) error {
	if err := json.Unmarshal(doc.Data, out); err != nil {
		return fmt.Errorf("content: decode %s document: %w", doc.Type, err)
	}
	return nil
}
