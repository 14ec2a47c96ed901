package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/hobbytracker/internal/client/models"
	"github.com/dmitrijs2005/hobbytracker/internal/common"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodySize bounds how much of a response is read.
const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Register creates a user and returns it as stored by the server.
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	body, err := json.Marshal(models.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := c.do(ctx, http.MethodPost, "/register/", body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/users/"+strconv.FormatInt(id, 10), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ping checks the server's /health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Detail = e.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
