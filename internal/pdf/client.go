// Package pdf talks to the external html to pdf converter service.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrDisabled is returned when no converter is configured
var ErrDisabled = errors.New("pdf conversion is not configured")

// maxDocumentSize caps the converter response
const maxDocumentSize = 32 << 20

// Converter turns rendered html documents into pdf
type Converter interface {
	// Convert posts the html document and returns the pdf bytes
	Convert(ctx context.Context, name string, html []byte) ([]byte, error)
	// Enabled reports whether conversion is available
	Enabled() bool
}

// HTTPConverter implements Converter against a multipart upload endpoint
type HTTPConverter struct {
	url        string
	httpClient *http.Client
}

// NewHTTPConverter creates a converter client posting to url
func NewHTTPConverter(url string, timeout time.Duration) *HTTPConverter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPConverter{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPConverter) Enabled() bool { return true }

// Convert uploads the document as form file "document"
func (c *HTTPConverter) Convert(ctx context.Context, name string, html []byte) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("document", name+".html")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(html); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach pdf converter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf converter returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("pdf exceeds %d bytes", maxDocumentSize)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("pdf converter returned no pdf document")
	}
	return data, nil
}

// NoOpConverter is used when no converter URL is configured
type NoOpConverter struct{}

// NewNoOpConverter creates a disabled converter
func NewNoOpConverter() *NoOpConverter {
	return &NoOpConverter{}
}

func (c *NoOpConverter) Enabled() bool { return false }

// Convert always fails with ErrDisabled
func (c *NoOpConverter) Convert(ctx context.Context, name string, html []byte) ([]byte, error) {
	return nil, ErrDisabled
}

// New returns an HTTPConverter, or a NoOpConverter for an empty url
func New(url string, timeout time.Duration) Converter {
	if url == "" {
		return NewNoOpConverter()
	}
	return NewHTTPConverter(url, timeout)
}
