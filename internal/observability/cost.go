package observability

import (
	"strconv"

	"github.com/openai/openai-go/responses"
)

const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	defaultPricedModel = "gpt-5-mini"
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64 // Price per 1K input tokens in USD
	OutputPricePer1K float64 // Price per 1K output tokens in USD
}

// PricingTable covers the models a critic is likely to be configured with
var PricingTable = map[string]ModelPricing{
	"gpt-5": {
		InputPricePer1K:  0.00125,
		OutputPricePer1K: 0.01,
	},
	"gpt-5-mini": {
		InputPricePer1K:  0.00025,
		OutputPricePer1K: 0.002,
	},
	"gpt-5-nano": {
		InputPricePer1K:  0.00005,
		OutputPricePer1K: 0.0004,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  0.00015,
		OutputPricePer1K: 0.0006,
	},
}

// CalculateOpenAICost calculates the cost in USD for an OpenAI API call.
// Unknown models are priced as gpt-5-mini. Reasoning tokens are already part of the output count.
func CalculateOpenAICost(model string, usage responses.ResponseUsage) float64 {
	pricing, exists := PricingTable[model]
	if !exists {
		pricing = PricingTable[defaultPricedModel]
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
