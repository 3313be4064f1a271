package contracts

import "errors"

// Engine error sentinels. Callers wrap them with fmt.Errorf("%w: ...").
// ⭐ SSOT: 에러 분류는 여기서만 정의
var (
	// ErrInvalidInput rejects malformed transactions before any work starts
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDateRange means the effective end date precedes the start date
	ErrNoDateRange = errors.New("no valid date range")

	// ErrDataUnavailable means a price source could not serve a symbol
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrPriceNotFound means no close exists on or before the requested date
	ErrPriceNotFound = errors.New("price not found")

	// ErrInsufficientSeries means a series is too short for a metric
	ErrInsufficientSeries = errors.New("insufficient data points")

	// ErrBenchmarkUnavailable means the benchmark series could not be loaded
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")

	// ErrNumericDegenerate means a denominator is zero or a solver did not converge
	ErrNumericDegenerate = errors.New("numerically degenerate")
)

// IsClientError reports whether err was caused by the request itself
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNoDateRange)
}
