// Package upstream holds the HTTP clients for the sibling research services.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	xhttp "FinChat/pkg/http"
)

// ErrStatus matches any HTTPError with errors.Is.
var ErrStatus = errors.New("upstream returned non-2xx status")

// HTTPError is a non-2xx answer from a collaborator.
type HTTPError struct {
	Service    string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Service, e.Path, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return ErrStatus }

// Observer receives one measurement per upstream call.
type Observer interface {
	ObserveUpstream(service, endpoint string, elapsed time.Duration, err error)
}

// HTTPServiceBase centralizes client construction and JSON requests for one collaborator.
// Calls are never retried.
type HTTPServiceBase struct {
	name     string
	baseURL  string
	client   *xhttp.Client
	observer Observer
}

func NewHTTPServiceBase(name, baseURL string, timeout time.Duration, observer Observer) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPServiceBase{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		observer: observer,
	}
}

func (b *HTTPServiceBase) Configured() bool { return b != nil && b.baseURL != "" }

// PostJSON posts payload to path under baseURL and decodes the JSON answer into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload, dest interface{}) error {
	return b.do(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, path, dest)
}

// GetJSON issues a GET to path with query and decodes the JSON answer into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	return b.do(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, path, dest)
}

func (b *HTTPServiceBase) do(ctx context.Context, opts *xhttp.RequestOptions, path string, dest interface{}) error {
	if !b.Configured() {
		return fmt.Errorf("%s: base url not configured", b.name)
	}

	start := time.Now()
	err := b.client.SendAndParse(ctx, opts, dest)
	if b.observer != nil {
		b.observer.ObserveUpstream(b.name, endpointLabel(path), time.Since(start), err)
	}
	if err == nil {
		return nil
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return &HTTPError{Service: b.name, Path: path, StatusCode: se.StatusCode, Body: se.Body}
	}
	return fmt.Errorf("%s %s: %w", b.name, path, err)
}

// endpointLabel keeps metric cardinality bounded by dropping ticker path parameters.
func endpointLabel(path string) string {
	var kept []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg != "" && strings.ToUpper(seg) == seg {
			continue
		}
		kept = append(kept, seg)
	}
	return "/" + strings.Join(kept, "/")
}

// StatusCode returns the collaborator's status for an HTTPError, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
