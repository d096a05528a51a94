package estimator

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how strictly driving data is validated.
type Policy int

const (
	// PolicyStrict rejects non-positive distances and negative energy and
	// logs every rejection.
	PolicyStrict Policy = iota
	// PolicyLenient rejects only non-positive distances. Negative energy,
	// e.g. a downhill segment with regeneration, is kept. Rejections are not
	// logged.
	PolicyLenient
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyLenient:
		return "lenient"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a configuration string to a Policy. An empty string
// selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return PolicyStrict, fmt.Errorf("unknown validation policy %q", s)
	}
}

func (p Policy) check(distanceKm, energyKWh float64) error {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || math.IsNaN(energyKWh) || math.IsInf(energyKWh, 0) {
		return ErrNonFinite
	}
	if distanceKm <= 0 {
		return ErrNonPositiveDistance
	}
	if p == PolicyStrict && energyKWh < 0 {
		return ErrNegativeEnergy
	}
	// a tiny distance can still overflow the consumption
	if c := energyKWh / distanceKm; math.IsNaN(c) || math.IsInf(c, 0) {
		return ErrNonFinite
	}
	return nil
}

func (p Policy) logsRejections() bool { return p == PolicyStrict }
