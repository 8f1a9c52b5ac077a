// Package sandbox talks to the external code execution service and turns its
// output into per-test-case verdicts.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable is returned when the sandbox cannot be reached, times out or
// answers with a non-2xx status.
var ErrUnavailable = errors.New("code execution sandbox unavailable")

// Output is the result of one execution.
type Output struct {
	Stdout string
	Stderr string
	Status string // "ok", "compile_error", "runtime_error"
	Code   int
}

// Runner executes source code with the given stdin.
type Runner interface {
	Run(ctx context.Context, language, source, stdin string) (Output, error)
}

// HTTPClient is a Runner for Piston-compatible execute APIs
// (POST {base}/api/v2/execute).
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client. timeout bounds each execution call.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type executeFile struct {
	Content string `json:"content"`
}

type executeRequest struct {
	Language string        `json:"language"`
	Version  string        `json:"version"`
	Files    []executeFile `json:"files"`
	Stdin    string        `json:"stdin"`
}

type stage struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Code   *int   `json:"code"`
	Signal string `json:"signal"`
}

type executeResponse struct {
	Run     stage  `json:"run"`
	Compile *stage `json:"compile,omitempty"`
	Message string `json:"message,omitempty"`
}

func (c *HTTPClient) Run(ctx context.Context, language, source, stdin string) (Output, error) {
	body, err := json.Marshal(executeRequest{
		Language: language,
		Version:  "*",
		Files:    []executeFile{{Content: source}},
		Stdin:    stdin,
	})
	if err != nil {
		return Output{}, fmt.Errorf("marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/execute", bytes.NewReader(body))
	if err != nil {
		return Output{}, fmt.Errorf("build execute request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Output{}, fmt.Errorf("%w: %s: %s", ErrUnavailable, res.Status, strings.TrimSpace(string(msg)))
	}

	var out executeResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Output{}, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}

	if out.Compile != nil && out.Compile.Code != nil && *out.Compile.Code != 0 {
		return Output{Stderr: out.Compile.Stderr, Status: "compile_error", Code: *out.Compile.Code}, nil
	}
	o := Output{Stdout: out.Run.Stdout, Stderr: out.Run.Stderr, Status: "ok"}
	if out.Run.Code != nil {
		o.Code = *out.Run.Code
	}
	if o.Code != 0 || out.Run.Signal != "" {
		o.Status = "runtime_error"
	}
	return o, nil
}
