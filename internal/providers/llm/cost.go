package llm

import "strings"

// modelPrice is USD per one million tokens.
type modelPrice struct {
	input  float64
	output float64
}

var modelPrices = map[string]modelPrice{
	"gpt-4o-mini":      {input: 0.15, output: 0.60},
	"gpt-4o":           {input: 2.50, output: 10.00},
	"gpt-4.1-mini":     {input: 0.40, output: 1.60},
	"gemini-1.5-flash": {input: 0.075, output: 0.30},
	"gemini-1.5-pro":   {input: 1.25, output: 5.00},
}

// CostUSD prices a completion. Versioned model names ("gpt-4o-mini-2024-07-18")
// match their base entry by prefix; unknown models cost zero rather than guess.
func CostUSD(model string, u Usage) float64 {
	price, ok := modelPrices[model]
	if !ok {
		best := ""
		for name := range modelPrices {
			if strings.HasPrefix(model, name) && len(name) > len(best) {
				best = name
			}
		}
		if best == "" {
			return 0
		}
		price = modelPrices[best]
	}
	return float64(u.PromptTokens)*price.input/1e6 +
		float64(u.CompletionTokens)*price.output/1e6
}
