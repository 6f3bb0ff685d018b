package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"
)

// Operation is a long-running indexing operation returned by the file-search
// upload endpoint.
type Operation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Response *struct {
		Name string `json:"name"`
	} `json:"response,omitempty"`
}

// DocumentName returns the indexed document's resource name, available once
// the operation completed successfully.
func (op Operation) DocumentName() string {
	if op.Response == nil {
		return ""
	}
	return op.Response.Name
}

// CreateFileSearchStore creates a new file-search store and returns its
// opaque resource name (e.g. "fileSearchStores/abc123").
func (c *GeminiClient) CreateFileSearchStore(ctx context.Context, displayName string) (string, error) {
	reqBody := map[string]interface{}{
		"displayName": displayName,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal store request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1beta/fileSearchStores"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build store request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create store request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read store response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("create store status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse store json failed: %w", err)
	}
	if parsed.Name == "" {
		return "", fmt.Errorf("create store returned no name")
	}
	return parsed.Name, nil
}

// UploadToFileSearchStore uploads the file at path into the given store for
// indexing. The indexing API is file based, hence the path argument. The
// returned operation must be polled until done.
func (c *GeminiClient) UploadToFileSearchStore(ctx context.Context, storeName, path, displayName, mimeType string) (Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return Operation{}, fmt.Errorf("open upload file failed: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metadata := map[string]interface{}{
		"displayName": displayName,
		"mimeType":    mimeType,
	}
	metaBytes, err := json.Marshal(metadata)
	if err != nil {
		return Operation{}, fmt.Errorf("marshal upload metadata failed: %w", err)
	}
	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return Operation{}, fmt.Errorf("create metadata part failed: %w", err)
	}
	if _, err := metaPart.Write(metaBytes); err != nil {
		return Operation{}, fmt.Errorf("write metadata part failed: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", mimeType)
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return Operation{}, fmt.Errorf("create file part failed: %w", err)
	}
	if _, err := io.Copy(filePart, f); err != nil {
		return Operation{}, fmt.Errorf("write file part failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Operation{}, fmt.Errorf("close multipart writer failed: %w", err)
	}

	url := fmt.Sprintf("%s/upload/v1beta/%s:uploadToFileSearchStore", strings.TrimRight(c.cfg.BaseURL, "/"), storeName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return Operation{}, fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Operation{}, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Operation{}, fmt.Errorf("read upload response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return Operation{}, fmt.Errorf("upload status %d: %s", resp.StatusCode, string(raw))
	}

	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return Operation{}, fmt.Errorf("parse upload operation failed: %w", err)
	}
	return op, nil
}

// GetOperation re-fetches a long-running operation by name.
func (c *GeminiClient) GetOperation(ctx context.Context, name string) (Operation, error) {
	url := fmt.Sprintf("%s/v1beta/%s", strings.TrimRight(c.cfg.BaseURL, "/"), name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Operation{}, fmt.Errorf("build operation request failed: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Operation{}, fmt.Errorf("operation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Operation{}, fmt.Errorf("read operation response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return Operation{}, fmt.Errorf("operation status %d: %s", resp.StatusCode, string(raw))
	}

	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return Operation{}, fmt.Errorf("parse operation json failed: %w", err)
	}
	return op, nil
}

// WaitForOperation polls the operation on a fixed interval until it is done
// or ctx expires, returning its final state. Callers must bound ctx with a
// deadline; indexing is not guaranteed to finish.
func (c *GeminiClient) WaitForOperation(ctx context.Context, op Operation, interval time.Duration) (Operation, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if op.Done {
			if op.Error != nil {
				return op, fmt.Errorf("indexing operation failed: %s", op.Error.Message)
			}
			return op, nil
		}
		select {
		case <-ctx.Done():
			return op, fmt.Errorf("wait for indexing operation: %w", ctx.Err())
		case <-ticker.C:
			next, err := c.GetOperation(ctx, op.Name)
			if err != nil {
				return op, err
			}
			op = next
		}
	}
}
