package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// CreateResponse is the body returned by POST /api/canvases.
type CreateResponse struct {
	ID string `json:"id"`
}

// SaveRequest is the body accepted by PUT /api/canvases/{id}.
type SaveRequest struct {
	CanvasData json.RawMessage `json:"canvasData"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Remote talks to a webcanvas server over HTTP.
type Remote struct {
	base   string
	client *http.Client
}

// NewRemote returns a client for the server at addr ("host:port" or a full
// http URL).
func NewRemote(addr string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimSuffix(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Remote{base: base, client: client}
}

func (r *Remote) Create(ctx context.Context) (string, error) {
	var resp CreateResponse
	if err := r.do(ctx, http.MethodPost, "/api/canvases", nil, &resp); err != nil {
		return "", fmt.Errorf("create canvas: %w", err)
	}
	if err := ValidateID(resp.ID); err != nil {
		return "", fmt.Errorf("create canvas: server returned %w", err)
	}
	return resp.ID, nil
}

func (r *Remote) Load(ctx context.Context, id string) (*Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var doc Document
	if err := r.do(ctx, http.MethodGet, "/api/canvases/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return &doc, nil
}

func (r *Remote) Save(ctx context.Context, id string, data json.RawMessage) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := validateData(data); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	body, err := json.Marshal(SaveRequest{CanvasData: data})
	if err != nil {
		return err
	}
	if err := r.do(ctx, http.MethodPut, "/api/canvases/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (r *Remote) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func (r *Remote) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&apiErr)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", ErrInvalidID, apiErr.Error)
		}
		return fmt.Errorf("server returned %s: %s", resp.Status, apiErr.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
