package llm

import (
	"strconv"
	"strings"

	"github.com/Yolxander/businki-sub003/internal/config"
)

// defaultPrices are USD per one million tokens.
var defaultPrices = map[string]config.ModelPrice{
	"gpt-4o":            {Input: 2.50, Output: 10.00},
	"gpt-4o-mini":       {Input: 0.15, Output: 0.60},
	"gpt-4.1":           {Input: 2.00, Output: 8.00},
	"gpt-4.1-mini":      {Input: 0.40, Output: 1.60},
	"claude-sonnet-4-5": {Input: 3.00, Output: 15.00},
	"claude-haiku-4-5":  {Input: 1.00, Output: 5.00},
	"gemini-2.5-flash":  {Input: 0.30, Output: 2.50},
	"gemini-2.5-pro":    {Input: 1.25, Output: 10.00},
}

type PriceTable map[string]config.ModelPrice

// NewPriceTable layers configured prices over the built-in ones.
func NewPriceTable(overrides map[string]config.ModelPrice) PriceTable {
	t := make(PriceTable, len(defaultPrices)+len(overrides))
	for k, v := range defaultPrices {
		t[k] = v
	}
	for k, v := range overrides {
		t[strings.ToLower(k)] = v
	}
	return t
}

// lookup matches exactly, then by the longest known prefix, so dated
// snapshots like "gpt-4o-mini-2024-07-18" resolve to their family.
func (t PriceTable) lookup(model string) (config.ModelPrice, bool) {
	model = strings.ToLower(model)
	if p, ok := t[model]; ok {
		return p, true
	}
	best := ""
	for k := range t {
		if strings.HasPrefix(model, k) && len(k) > len(best) {
			best = k
		}
	}
	if best == "" {
		return config.ModelPrice{}, false
	}
	return t[best], true
}

// Cost prices usage for model. It returns "" when the model is unknown.
func (t PriceTable) Cost(model string, u Usage) string {
	p, ok := t.lookup(model)
	if !ok {
		return ""
	}
	in, out := u.PromptTokens, u.CompletionTokens
	if in == 0 && out == 0 {
		out = u.TotalTokens
	}
	usd := (float64(in)*p.Input + float64(out)*p.Output) / 1_000_000
	return strconv.FormatFloat(usd, 'f', 6, 64)
}
