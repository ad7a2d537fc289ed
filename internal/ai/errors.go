package ai

import (
	"errors"
	"strings"
)

var (
	ErrUnavailable      = errors.New("ai provider unavailable")
	ErrKeyMissing       = errors.New("ai api key missing or invalid")
	ErrPermissionDenied = errors.New("ai permission denied")
	ErrQuotaExceeded    = errors.New("ai quota exceeded")
)

// Classify maps raw provider errors onto the package sentinels by message
// inspection. Provider SDKs expose these failures as opaque error strings.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrKeyMissing) ||
		errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrQuotaExceeded) {
		return err
	}
	msg := err.Error()
	upper := strings.ToUpper(msg)
	switch {
	case strings.Contains(upper, "API_KEY") || strings.Contains(msg, "API key"):
		return ErrKeyMissing
	case strings.Contains(upper, "PERMISSION_DENIED") || strings.Contains(msg, "403"):
		return ErrPermissionDenied
	case strings.Contains(upper, "QUOTA") || strings.Contains(msg, "429"):
		return ErrQuotaExceeded
	default:
		return err
	}
}
