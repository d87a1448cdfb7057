package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = 5 * time.Second

const (
	PlaceholderError   = "[translation error]"
	PlaceholderTimeout = "[translation timeout]"
	PlaceholderNetwork = "[network error]"
)

type ErrorKind string

const (
	KindStatus  ErrorKind = "status"
	KindTimeout ErrorKind = "timeout"
	KindNetwork ErrorKind = "network"
	KindDecode  ErrorKind = "decode"
)

// StatusError is returned by a Backend that received a non-200 response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translation backend returned status %d", e.StatusCode)
}

// DecodeError is returned by a Backend that could not parse a response body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode translation response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translation %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Backend performs one translation request and returns the translated
// fragments in order.
type Backend interface {
	Translate(ctx context.Context, text, source, target string) ([]string, error)
}

// Result always carries displayable text. On failure Text is a bracketed
// placeholder and Err describes the cause.
type Result struct {
	Text string
	Err  error
}

type Client struct {
	backend Backend
	timeout time.Duration
}

func NewClient(backend Backend, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{backend: backend, timeout: timeout}
}

func (c *Client) Translate(ctx context.Context, text, source, target string) Result {
	if source == target {
		return Result{Text: text}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fragments, err := c.backend.Translate(ctx, text, source, target)
	if err != nil {
		kind := classify(ctx, err)
		slog.Warn("translation failed", "kind", kind, "source", source, "target", target, "error", err)
		return Result{Text: placeholder(kind), Err: &Error{Kind: kind, Err: err}}
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return Result{Text: text}
	}
	return Result{Text: strings.Join(parts, " ")}
}

func classify(ctx context.Context, err error) ErrorKind {
	var statusErr *StatusError
	var decodeErr *DecodeError
	switch {
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return KindTimeout
	case isTimeout(err):
		return KindTimeout
	}
	return KindNetwork
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func placeholder(kind ErrorKind) string {
	switch kind {
	case KindTimeout:
		return PlaceholderTimeout
	case KindNetwork:
		return PlaceholderNetwork
	}
	return PlaceholderError
}

// IsPlaceholder reports whether text is one of the failure placeholders.
func IsPlaceholder(text string) bool {
	switch text {
	case PlaceholderError, PlaceholderTimeout, PlaceholderNetwork:
		return true
	}
	return false
}
