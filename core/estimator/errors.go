package estimator

import "errors"

var (
	// ErrNonPositiveDistance is returned for segments with a distance <= 0.
	ErrNonPositiveDistance = errors.New("distance must be positive")
	// ErrNegativeEnergy is returned by the strict policy for negative energy.
	ErrNegativeEnergy = errors.New("energy used must not be negative")
	// ErrNonFinite is returned when distance or energy is NaN or infinite.
	ErrNonFinite = errors.New("driving data must be finite")
)

// RejectionReason maps a rejection error to a short label suitable for metric
// labels. It returns "" for a nil error and "other" for unknown errors.
func RejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNonPositiveDistance):
		return "non_positive_distance"
	case errors.Is(err, ErrNegativeEnergy):
		return "negative_energy"
	case errors.Is(err, ErrNonFinite):
		return "non_finite"
	default:
		return "other"
	}
}
