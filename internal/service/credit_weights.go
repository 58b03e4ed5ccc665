package service

import (
	"github.com/noah-isme/ssps-api/pkg/config"
)

// DefaultUnitCredit is the credit value of a standard unit.
const DefaultUnitCredit = 12.5

// CreditWeights maps unit codes to credit points. Codes without an override use Default.
type CreditWeights struct {
	Default   float64
	Overrides map[string]float64
}

// NewCreditWeights builds the weight table from configuration.
func NewCreditWeights(cfg config.GraduationConfig) CreditWeights {
	weights := CreditWeights{Default: cfg.DefaultCredit, Overrides: make(map[string]float64, len(cfg.CreditOverrides))}
	if weights.Default <= 0 {
		weights.Default = DefaultUnitCredit
	}
	for code, weight := range cfg.CreditOverrides {
		weights.Overrides[NormalizeCode(code)] = weight
	}
	return weights
}

// For returns the credit weight of a single unit code.
func (w CreditWeights) For(code string) float64 {
	if weight, ok := w.Overrides[NormalizeCode(code)]; ok {
		return weight
	}
	if w.Default <= 0 {
		return DefaultUnitCredit
	}
	return w.Default
}

// Sum totals the weights of already de-duplicated codes.
func (w CreditWeights) Sum(codes []string) float64 {
	var total float64
	for _, code := range codes {
		total += w.For(code)
	}
	return roundCredits(total)
}
