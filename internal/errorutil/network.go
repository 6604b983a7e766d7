package errorutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	neturl "net/url"
	"strings"
)

// NetworkError represents a transport-level failure talking to a remote API
type NetworkError struct {
	Operation  string // The operation that failed (e.g., "current weather request")
	URL        string // The URL that was being accessed, with credentials redacted
	Timeout    bool   // Whether the failure was a timeout or deadline
	DNS        bool   // Whether name resolution failed
	Refused    bool   // Whether the remote refused the connection
	Underlying error  // The underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.URL, e.Cause())
}

func (e *NetworkError) Unwrap() error {
	return e.Underlying
}

// Cause returns the underlying error without the *url.Error wrapper, whose
// message repeats the full request URL including query parameters
func (e *NetworkError) Cause() error {
	var urlErr *neturl.Error
	if errors.As(e.Underlying, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return e.Underlying
}

// NewNetworkError creates a new NetworkError with the failure classified
func NewNetworkError(operation, url string, err error) *NetworkError {
	return &NetworkError{
		Operation:  operation,
		URL:        url,
		Timeout:    isTimeoutError(err),
		DNS:        isDNSError(err),
		Refused:    isConnectionRefusedError(err),
		Underlying: err,
	}
}

// LogNetworkError logs a network error with appropriate structured context
func LogNetworkError(logger *slog.Logger, netErr *NetworkError) *NetworkError {
	if logger == nil || netErr == nil {
		return netErr
	}

	attrs := []any{
		slog.String("operation", netErr.Operation),
		slog.String("url", netErr.URL),
		slog.String("error", netErr.Cause().Error()),
		slog.Bool("timeout", netErr.Timeout),
	}
	if netErr.DNS {
		attrs = append(attrs, slog.Bool("dns", true))
	}
	if netErr.Refused {
		attrs = append(attrs, slog.Bool("connection_refused", true))
	}

	logger.Warn("Network operation failed", attrs...)
	return netErr
}

// isTimeoutError checks if an error is a timeout error
func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// isDNSError checks if an error is a DNS resolution error
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return err != nil && errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if an error is a connection refused error
func isConnectionRefusedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "connection refused")
}
