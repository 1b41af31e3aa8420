package core

import (
	"fmt"
	"math"
	"strings"
)

// RiskTier is the ordinal risk level of a message
type RiskTier int

const (
	Safe RiskTier = iota
	Suspicious
	HighRisk
)

// Tier thresholds, each the inclusive lower bound of its tier
const (
	HighRiskThreshold   = 0.75
	SuspiciousThreshold = 0.40
)

// ClassifyRisk maps a spam probability onto a risk tier
func ClassifyRisk(p float64) (RiskTier, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Safe, fmt.Errorf("%w: %v", ErrOutOfRange, p)
	}
	switch {
	case p >= HighRiskThreshold:
		return HighRisk, nil
	case p >= SuspiciousThreshold:
		return Suspicious, nil
	default:
		return Safe, nil
	}
}

func (t RiskTier) String() string {
	switch t {
	case Safe:
		return "Safe"
	case Suspicious:
		return "Suspicious"
	case HighRisk:
		return "High Risk"
	default:
		return fmt.Sprintf("RiskTier(%d)", int(t))
	}
}

// ParseRiskTier parses the output of RiskTier.String, ignoring case
func ParseRiskTier(s string) (RiskTier, error) {
	for _, t := range []RiskTier{Safe, Suspicious, HighRisk} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return Safe, fmt.Errorf("unknown risk tier %q", s)
}

// MarshalText encodes the tier as its label
func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier label
func (t *RiskTier) UnmarshalText(text []byte) error {
	parsed, err := ParseRiskTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
