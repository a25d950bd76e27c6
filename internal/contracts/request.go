package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is wrapped by every request validation failure
var ErrInvalidRequest = errors.New("invalid recommendation request")

// Profile is the investor risk profile
type Profile string

const (
	ProfileConservative Profile = "conservative"
	ProfileModerate     Profile = "moderate"
	ProfileAggressive   Profile = "aggressive"
)

// Recency restricts the reporting periods considered
type Recency string

const (
	RecencyHistory Recency = "history"
	RecencyAnnual  Recency = "annual"
	RecencyMonthly Recency = "monthly"
)

// PriceBand restricts the latest quote
type PriceBand string

const (
	BandLow  PriceBand = "low"  // até R$90
	BandMid  PriceBand = "mid"  // R$90 ~ R$120
	BandHigh PriceBand = "high" // acima de R$121
	BandAny  PriceBand = "any"
)

// ParseProfile accepts the English enum or the pt-BR label
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative", "conservador":
		return ProfileConservative, nil
	case "moderate", "moderado":
		return ProfileModerate, nil
	case "aggressive", "arrojado", "agressivo":
		return ProfileAggressive, nil
	}
	return "", fmt.Errorf("%w: unknown profile %q", ErrInvalidRequest, s)
}

// ParseRecency accepts the English enum or the pt-BR label
func ParseRecency(s string) (Recency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "history", "historica", "histórica", "historico", "histórico":
		return RecencyHistory, nil
	case "annual", "anual":
		return RecencyAnnual, nil
	case "monthly", "mensal":
		return RecencyMonthly, nil
	}
	return "", fmt.Errorf("%w: unknown recency %q", ErrInvalidRequest, s)
}

// ParsePriceBand accepts low/mid/high/any
func ParsePriceBand(s string) (PriceBand, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return BandLow, nil
	case "mid":
		return BandMid, nil
	case "high":
		return BandHigh, nil
	case "", "any":
		return BandAny, nil
	}
	return "", fmt.Errorf("%w: unknown price band %q", ErrInvalidRequest, s)
}

// Request is the immutable selection snapshot of one recommendation run
type Request struct {
	Profile   Profile   `json:"profile"`
	Recency   Recency   `json:"recency"`
	Segments  []string  `json:"segments"`
	PriceBand PriceBand `json:"price_band"`
	Count     int       `json:"count"`
}

// Validate checks enums and count
func (r Request) Validate() error {
	switch r.Profile {
	case ProfileConservative, ProfileModerate, ProfileAggressive:
	default:
		return fmt.Errorf("%w: unknown profile %q", ErrInvalidRequest, r.Profile)
	}
	switch r.Recency {
	case RecencyHistory, RecencyAnnual, RecencyMonthly:
	default:
		return fmt.Errorf("%w: unknown recency %q", ErrInvalidRequest, r.Recency)
	}
	switch r.PriceBand {
	case BandLow, BandMid, BandHigh, BandAny:
	default:
		return fmt.Errorf("%w: unknown price band %q", ErrInvalidRequest, r.PriceBand)
	}
	if r.Count < 1 {
		return fmt.Errorf("%w: count must be >= 1, got %d", ErrInvalidRequest, r.Count)
	}
	return nil
}

// Normalized returns a copy with pt-BR labels mapped to enums and
// defaults applied (history, any band)
func (r Request) Normalized() (Request, error) {
	out := r
	var err error
	if out.Profile, err = ParseProfile(string(r.Profile)); err != nil {
		return r, err
	}
	if out.Recency, err = ParseRecency(string(r.Recency)); err != nil {
		return r, err
	}
	if out.PriceBand, err = ParsePriceBand(string(r.PriceBand)); err != nil {
		return r, err
	}
	out.Segments = append([]string(nil), r.Segments...)
	return out, out.Validate()
}
