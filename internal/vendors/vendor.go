// Package vendors identifies which issuer format a bill text matches and
// applies issuer-specific field corrections on top of generic extraction.
package vendors

import (
	"regexp"
	"strings"

	"github.com/ledgerline/billparse/internal/model"
)

// Fingerprint is an immutable keyword signature for one issuer format.
type Fingerprint struct {
	Name            string
	Keywords        []string
	UtilityTypeHint model.UtilityType
	UnitTypeHint    string
	ExpectsMeters   bool
	ExpectsUsage    bool
}

// Score counts how many keyword phrases appear in the lower-cased text.
func (f Fingerprint) Score(txtLower string) int {
	score := 0
	for _, kw := range f.Keywords {
		if strings.Contains(txtLower, strings.ToLower(kw)) {
			score++
		}
	}
	return score
}

// Enhancer corrects and enriches a generic RawExtraction using patterns
// specific to one issuer. Implementations are authoritative for the
// fields the issuer format guarantees and must treat pattern misses as
// silent no-ops.
type Enhancer interface {
	Fingerprint() Fingerprint
	Enhance(raw model.RawExtraction, txt string) model.RawExtraction
}

// Registry holds enhancers in a fixed, order-significant sequence.
// Registration order is part of the matching contract: on a score tie
// the earlier-registered issuer wins.
type Registry struct {
	enhancers []Enhancer
}

// NewRegistry creates the registry with all known issuers registered.
func NewRegistry() *Registry {
	return &Registry{
		enhancers: []Enhancer{
			&Comcast{},
			&TXUEnergy{},
			&SummerEnergy{},
			&AtmosEnergy{},
			&HoustonWater{},
			&CirroEnergy{},
			&ArlingtonUtilities{},
			&MetroWaterNashville{},
			&PiedmontNaturalGas{},
		},
	}
}

// Register appends an enhancer after the built-in set.
func (r *Registry) Register(e Enhancer) {
	r.enhancers = append(r.enhancers, e)
}

// Match returns the enhancer whose fingerprint scores strictly highest
// against the text. A fingerprint is a candidate only with score >= 2;
// ties keep the first-registered candidate. Returns false when nothing
// qualifies.
func (r *Registry) Match(txt string) (Enhancer, bool) {
	lower := strings.ToLower(txt)

	var best Enhancer
	bestScore := 0
	for _, e := range r.enhancers {
		s := e.Fingerprint().Score(lower)
		if s >= 2 && s > bestScore {
			best = e
			bestScore = s
		}
	}
	if best == nil {
		return nil, false
	}
	return best, true
}

// Apply runs fingerprint matching and, on a match, the winning
// enhancer. It returns the (possibly enhanced) extraction and the
// matched vendor name, or the input unchanged and "" when no
// fingerprint qualifies.
func (r *Registry) Apply(raw model.RawExtraction, txt string) (model.RawExtraction, string) {
	e, ok := r.Match(txt)
	if !ok {
		return raw, ""
	}

	out := e.Enhance(raw, txt)
	name := e.Fingerprint().Name
	if out.VendorName == nil {
		out.VendorName = &name
	}
	return out, name
}

// setString is an authoritative overwrite: the issuer format guarantees
// the value, so whatever generic extraction produced is discarded.
func setString(dst **string, v string) {
	*dst = &v
}

// fillString only sets the field when generic extraction left it empty.
func fillString(dst **string, v string) {
	if *dst == nil && v != "" {
		*dst = &v
	}
}

func setFloat(dst **float64, v float64) {
	*dst = &v
}

func setInt(dst **int, v int) {
	*dst = &v
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

var digitsRe = regexp.MustCompile(`\D`)

func digitsOnly(s string) string {
	return digitsRe.ReplaceAllString(s, "")
}
