package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"advisory-service/internal/models"
)

const investmentStrategyPromptTemplate = `You are an agricultural investment planning engine for a farming village development program.

## PRIMARY OBJECTIVE
Draft exactly three investment strategies (intensive, balanced, conservative) for the village described below, built ONLY on the structured figures provided. The figures come from a historical matching engine and are the source of truth - do not invent yields, rainfall numbers, or crops that are not listed.

## CRITICAL RULES
1. Output ONLY valid JSON matching the schema below - no markdown, no explanations, no preamble
2. Every strategy must commit only to crops from the recommendation list
3. Investment amounts are in INR and must be proportionate to the stated confidence
4. Your response must start with { and end with }

---

## VILLAGE PROFILE
%s

## CROP RECOMMENDATIONS (ranked by the matching engine)
%s

## CONFIDENCE
Score: %d/100 (%s)

## FERTILIZER SUGGESTIONS
%s

---

## OUTPUT SCHEMA
{
  "strategies": [
    {
      "name": "string - short strategy title",
      "description": "string - 2-3 sentences of narrative for the village council",
      "crops": ["string - crop names from the recommendation list only"],
      "structures": ["string - physical structures to build, e.g. drip irrigation lines, storage shed"],
      "investment_amount": number,
      "expected_roi": "string - e.g. '18-24%% over 3 years'",
      "timeline": "string - e.g. '2 seasons'"
    }
  ]
}`

// BuildInvestmentStrategyPrompt assembles the structured figures the core
// computed into the planning prompt. Only already-derived numbers cross
// this boundary; the model never sees raw dataset rows.
func BuildInvestmentStrategyPrompt(
	profile models.VillageProfile,
	recommendations []models.CropRecommendation,
	confidence int,
	confidenceLevel string,
	fertilizers []string,
) string {
	profileJSON, _ := json.MarshalIndent(profile, "", "  ")
	recsJSON, _ := json.MarshalIndent(recommendations, "", "  ")

	fertText := "none available"
	if len(fertilizers) > 0 {
		fertText = strings.Join(fertilizers, ", ")
	}

	return fmt.Sprintf(investmentStrategyPromptTemplate,
		string(profileJSON),
		string(recsJSON),
		confidence,
		confidenceLevel,
		fertText,
	)
}
