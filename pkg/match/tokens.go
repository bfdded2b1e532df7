package match

import "strings"

var activeTokens = map[string]string{
	"RETINOID":         "retinoid",
	"RETINOL":          "retinoid",
	"RETINAL":          "retinoid",
	"TRETINOIN":        "retinoid",
	"ADAPALENE":        "retinoid",
	"TAZAROTENE":       "retinoid",
	"TRIFAROTENE":      "retinoid",
	"RETINYL_ESTER":    "retinoid",
	"BENZOYL_PEROXIDE": "benzoyl_peroxide",
	"BPO":              "benzoyl_peroxide",
	"BHA":              "bha",
	"SALICYLIC_ACID":   "bha",
	"AHA":              "aha",
	"GLYCOLIC_ACID":    "aha",
	"LACTIC_ACID":      "aha",
	"MANDELIC_ACID":    "aha",
	"PHA":              "aha",
	"VITAMIN_C":        "vitamin_c",
	"ASCORBIC_ACID":    "vitamin_c",
	"NIACINAMIDE":      "niacinamide",
	"AZELAIC_ACID":     "azelaic_acid",
	"TRANEXAMIC_ACID":  "tranexamic_acid",
}

// ActiveTokens maps concept ids to routine active tokens such as
// "retinoid" or "aha", keeping the first occurrence of each token.
// Concepts without a token are skipped.
func ActiveTokens(conceptIDs []string) []string {
	res := []string{}
	seen := make(map[string]struct{})
	for _, id := range conceptIDs {
		token, ok := activeTokens[strings.ToUpper(strings.TrimSpace(id))]
		if !ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		res = append(res, token)
	}
	return res
}
