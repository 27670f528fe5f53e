// Package plans lists the subscription plans offered by the backend.
package plans

import (
	"fmt"
	"strings"
)

type Plan struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	PriceID string `json:"price_id"`
	// PriceCents is the monthly price in US cents.
	PriceCents int `json:"price_cents"`
	// CharacterLimit is the monthly allowance; zero means unlimited.
	CharacterLimit int      `json:"character_limit"`
	Badge          string   `json:"badge,omitempty"`
	Features       []string `json:"features"`
}

func (p Plan) Price() string {
	return fmt.Sprintf("$%d.%02d/month", p.PriceCents/100, p.PriceCents%100)
}

func (p Plan) Unlimited() bool {
	return p.CharacterLimit == 0
}

var catalog = []Plan{
	{
		ID:             "basic",
		Name:           "Starter",
		PriceID:        "price_1RNy69C2fNwTESVN01zBYfDj",
		PriceCents:     999,
		CharacterLimit: 50000,
		Badge:          "Popular",
		Features: []string{
			"50,000 characters per month",
			"Text translation",
			"3 file translations/month",
			"Email support",
		},
	},
	{
		ID:             "pro",
		Name:           "Professional",
		PriceID:        "price_1RNy9TC2fNwTESVNs3OqiHF8",
		PriceCents:     1999,
		CharacterLimit: 200000,
		Badge:          "Best Value",
		Features: []string{
			"200,000 characters per month",
			"Text & file translation",
			"50 file translations/month",
			"Priority support",
			"API access",
		},
	},
	{
		ID:         "enterprise",
		Name:       "Enterprise",
		PriceID:    "price_1RNyBVC2fNwTESVNDLv1xWPX",
		PriceCents: 19999,
		Badge:      "Premium",
		Features: []string{
			"Unlimited characters",
			"All file types",
			"24/7 support",
			"Dedicated manager",
			"Team access",
		},
	},
}

// All returns a copy of the catalog, cheapest first.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup finds a plan by ID or display name, ignoring case.
func Lookup(key string) (Plan, bool) {
	key = strings.TrimSpace(key)
	for _, p := range catalog {
		if strings.EqualFold(p.ID, key) || strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return Plan{}, false
}

// IDs returns the plan IDs in catalog order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, p := range catalog {
		ids[i] = p.ID
	}
	return ids
}
