// Package client implements the Tokbarr API client and batch poller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
)

// APIError carries the status and detail of a failed API call.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Detail)
}

// Client is a typed HTTP client over the Tokbarr API surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   consts.HTTPClientTimeout,
		},
	}
}

// ListDownloads fetches the complete recent download history, batch-agnostic.
func (c *Client) ListDownloads(ctx context.Context) ([]models.Download, error) {
	var downloads []models.Download
	if err := c.getJSON(ctx, "/api/downloads", &downloads); err != nil {
		return nil, err
	}
	return downloads, nil
}

// StartBatch submits a batch of URLs for downloading.
func (c *Client) StartBatch(ctx context.Context, urls []string, quality string) (*models.BatchResponse, error) {
	body, err := json.Marshal(models.BatchRequest{URLs: urls, Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var br models.BatchResponse
	if err := c.doJSON(req, &br); err != nil {
		return nil, err
	}
	return &br, nil
}

// DownloadStatus fetches the current record for a single download.
func (c *Client) DownloadStatus(ctx context.Context, id string) (*models.Download, error) {
	var d models.Download
	if err := c.getJSON(ctx, "/api/download/"+id+"/status", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// BatchStatus fetches the live state of every download in a batch.
func (c *Client) BatchStatus(ctx context.Context, batchID string) (*models.BatchStatusResponse, error) {
	var bsr models.BatchStatusResponse
	if err := c.getJSON(ctx, "/api/batch/"+batchID+"/status", &bsr); err != nil {
		return nil, err
	}
	return &bsr, nil
}

// FetchFile retrieves the binary artifact for a completed download and
// writes it to destPath.
func (c *Client) FetchFile(ctx context.Context, id, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/download/"+id+"/file", nil)
	if err != nil {
		return fmt.Errorf("failed to create file request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch file for download %q: %w", id, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", destPath, err)
	}
	defer func() {
		if err := out.Close(); err != nil {
			logging.E("Failed to close output file %q: %v", destPath, err)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", destPath, err)
	}
	return nil
}

// DeleteDownload deletes a download record and its stored file.
func (c *Client) DeleteDownload(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/download/"+id, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete download %q: %w", id, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeAPIError(resp)
	}
	return nil
}

// getJSON performs a GET and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %q: %w", path, err)
	}
	return c.doJSON(req, v)
}

// doJSON executes the request and decodes the JSON response into v.
func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %q failed: %w", req.URL.Path, err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %q: %w", req.URL.Path, err)
	}
	return nil
}

// decodeAPIError turns a non-OK response into an APIError.
func decodeAPIError(resp *http.Response) error {
	var er models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Detail == "" {
		er.Detail = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Detail: er.Detail}
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logging.E("Failed to close response body: %v", err)
	}
}
