package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dockerlens/dockerlens/internal/config"
	"github.com/dockerlens/dockerlens/pkg/models"
)

// Client talks to the analyzer service. All methods issue a single
// request/response round trip; retries are always an explicit caller
// decision, never automatic.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the analyzer service at cfg.APIURL.
func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// analyzeRequest is the request body shared by the image-keyed endpoints.
type analyzeRequest struct {
	ImageName string `json:"image_name"`
}

// chatRequest extends the image-keyed request with the user's message.
type chatRequest struct {
	ImageName string `json:"image_name"`
	Message   string `json:"message"`
}

type dockerfileResponse struct {
	Dockerfile string `json:"dockerfile"`
}

type filesResponse struct {
	Files []models.FileNode `json:"files"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// errorResponse matches the service's error envelope.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Analyze runs the primary analysis for an image: metadata extraction plus
// AI hardening recommendations.
func (c *Client) Analyze(ctx context.Context, imageRef string) (*models.AnalysisResult, error) {
	var result models.AnalysisResult
	if err := c.post(ctx, "/analyze", analyzeRequest{ImageName: imageRef}, &result); err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", imageRef, err)
	}
	return &result, nil
}

// GenerateDockerfile asks the service to reconstruct a Dockerfile from the
// image's layer history.
func (c *Client) GenerateDockerfile(ctx context.Context, imageRef string) (string, error) {
	var resp dockerfileResponse
	if err := c.post(ctx, "/generate-dockerfile", analyzeRequest{ImageName: imageRef}, &resp); err != nil {
		return "", fmt.Errorf("failed to generate Dockerfile for %s: %w", imageRef, err)
	}
	return resp.Dockerfile, nil
}

// Optimize fetches the size-optimization report for an image.
func (c *Client) Optimize(ctx context.Context, imageRef string) (*models.OptimizationReport, error) {
	var report models.OptimizationReport
	if err := c.post(ctx, "/optimize", analyzeRequest{ImageName: imageRef}, &report); err != nil {
		return nil, fmt.Errorf("failed to optimize %s: %w", imageRef, err)
	}
	return &report, nil
}

// ListFiles fetches the image's file-system listing as a FileNode forest.
// Directories the server chose not to descend into carry nil children.
func (c *Client) ListFiles(ctx context.Context, imageRef string) ([]models.FileNode, error) {
	var resp filesResponse
	if err := c.post(ctx, "/files", analyzeRequest{ImageName: imageRef}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list files for %s: %w", imageRef, err)
	}
	return resp.Files, nil
}

// Chat sends one user message about the image and returns the assistant reply.
func (c *Client) Chat(ctx context.Context, imageRef, message string) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "/chat", chatRequest{ImageName: imageRef, Message: message}, &resp); err != nil {
		return "", fmt.Errorf("chat request for %s failed: %w", imageRef, err)
	}
	return resp.Reply, nil
}

// Health pings the service and returns its reported status string.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build health request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyzer service unreachable: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analyzer service unhealthy: %s", readDetail(res))
	}

	var resp healthResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode health response: %w", err)
	}
	return resp.Status, nil
}

// post sends a JSON body to path and decodes the success payload into out.
func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%s", readDetail(res))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readDetail extracts the service's error message from a non-2xx response,
// falling back to the HTTP status when the body carries none.
func readDetail(res *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(res.Body, 64*1024))
	if err == nil && len(raw) > 0 {
		var envelope errorResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Detail != "" {
			return envelope.Detail
		}
	}
	return fmt.Sprintf("server returned %s", res.Status)
}
