package usecase

import (
	"regexp"
	"strings"
)

// maxItemQueryLen caps the item portion of an alternatives query
const maxItemQueryLen = 100

var (
	// sizes like "128 fl oz", "1.5 liter", "2 lb", "256GB"
	itemSizePattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(fl\s*)?(oz|ounces?|lbs?|pounds?|ml|liters?|gallons?|gal|kg|grams?|gb|tb)\b`)
	// counts like "12 pack", "pack of 6", "6-pack", "24 ct"
	itemPackPattern = regexp.MustCompile(`(?i)\b\d+[-\s]*(pack|pk|count|ct)\b|\bpack\s*of\s*\d+\b`)
	// punctuation left dangling once sizes are gone
	itemDanglingPunct = regexp.MustCompile(`\s+[,\-;:/|]+(\s+|$)|^[,\-;:/|\s]+|[,\-;:/|\s]+$`)
)

// itemNoiseWords are listing terms that narrow a web search without
// describing the item
var itemNoiseWords = map[string]bool{
	"new":       true,
	"sale":      true,
	"deal":      true,
	"deals":     true,
	"bundle":    true,
	"value":     true,
	"family":    true,
	"bonus":     true,
	"premium":   true,
	"official":  true,
	"genuine":   true,
	"authentic": true,
	"free":      true,
	"shipping":  true,
	"size":      true,
	"jumbo":     true,
}

// cleanItemQuery strips sizes, pack counts and listing noise from an item
// name, e.g. "NEW Oreo Cookies, 14.3 oz Family Size" becomes "Oreo Cookies".
// The trimmed input is returned when cleaning would leave nothing.
func cleanItemQuery(item string) string {
	item = strings.TrimSpace(item)
	if item == "" {
		return ""
	}

	cleaned := itemSizePattern.ReplaceAllString(item, " ")
	cleaned = itemPackPattern.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if itemNoiseWords[strings.ToLower(strings.Trim(w, ",.!?;:-'\""))] {
			continue
		}
		kept = append(kept, w)
	}
	cleaned = strings.Join(kept, " ")
	cleaned = itemDanglingPunct.ReplaceAllString(cleaned, " ")
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if cleaned == "" {
		return item
	}

	if len(cleaned) > maxItemQueryLen {
		cleaned = cleaned[:maxItemQueryLen]
		if i := strings.LastIndex(cleaned, " "); i > maxItemQueryLen/2 {
			cleaned = cleaned[:i]
		}
	}
	return cleaned
}
