package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/foxxcyber/shopsmart/internal/models"
)

var ErrNoFoodItems = errors.New("no food items found in text")

// Unicode vulgar fractions
var unicodeFractions = map[rune]float64{
	'½': 0.5,
	'⅓': 1.0 / 3.0,
	'⅔': 2.0 / 3.0,
	'¼': 0.25,
	'¾': 0.75,
	'⅕': 0.2,
	'⅖': 0.4,
	'⅗': 0.6,
	'⅘': 0.8,
	'⅙': 1.0 / 6.0,
	'⅚': 5.0 / 6.0,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// unitNormalization maps written units to the units a diet plan stores.
// Hectograms are converted to grams by the factor in unitScale.
var unitNormalization = map[string]string{
	"g":           "g",
	"gr":          "g",
	"grammi":      "g",
	"grammo":      "g",
	"gram":        "g",
	"grams":       "g",
	"hg":          "g",
	"etto":        "g",
	"etti":        "g",
	"kg":          "kg",
	"kilo":        "kg",
	"chilo":       "kg",
	"chili":       "kg",
	"chilogrammi": "kg",
	"kilograms":   "kg",
	"ml":          "ml",
	"l":           "l",
	"lt":          "l",
	"litri":       "l",
	"litro":       "l",
	"pz":          "pz",
	"pezzi":       "pz",
	"pezzo":       "pz",
	"pc":          "pz",
	"pcs":         "pz",
}

var unitScale = map[string]float64{
	"hg":   100,
	"etto": 100,
	"etti": 100,
}

// FoodItemParser turns free text, one food per line, into diet plan items.
// It accepts lines such as "- [ ] 80 g riso basmati", "* pollo 0,3 kg" or
// "½ kg patate (novelle)". A line without a quantity means one unit.
type FoodItemParser struct {
	bulletPattern   *regexp.Regexp
	quantityPattern *regexp.Regexp
	rangePattern    *regexp.Regexp
	wholePattern    *regexp.Regexp
	fractionPattern *regexp.Regexp
	unitPattern     *regexp.Regexp
	trailingPattern *regexp.Regexp
	parenPattern    *regexp.Regexp
	spacePattern    *regexp.Regexp
}

// NewFoodItemParser creates a new parser instance
func NewFoodItemParser() *FoodItemParser {
	return &FoodItemParser{
		// Markdown checkbox or list bullet: "- [ ]", "- [x]", "-", "*", "•"
		bulletPattern: regexp.MustCompile(`^\s*(?:[-*•]\s*(?:\[[ xX]?\]\s*)?)?(.+)$`),

		// Quantity at start: 80, 1.5, 0,3
		quantityPattern: regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*`),

		// Quantity range: 80-100
		rangePattern: regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*-\s*(\d+(?:[.,]\d+)?)\s*`),

		// Whole number that may precede a unicode fraction: "1 ½"
		wholePattern: regexp.MustCompile(`^(\d+)\s*`),

		// ASCII fraction: 1/2
		fractionPattern: regexp.MustCompile(`^(\d+)/(\d+)\s*`),

		// Units, longer patterns first
		unitPattern: regexp.MustCompile(`(?i)^(chilogrammi|kilograms|grammi|grammo|grams|gram|chilo|chili|kilo|etto|etti|litri|litro|pezzi|pezzo|pcs|gr|kg|hg|ml|lt|pz|pc|g|l)\b\.?\s*`),

		// Quantity or range and unit written after the name: "pollo 300g", "pasta 80-100 g"
		trailingPattern: regexp.MustCompile(`(?i)^(.*?)\s+(\d+(?:[.,]\d+)?)(?:\s*-\s*(\d+(?:[.,]\d+)?))?\s*(chilogrammi|kilograms|grammi|grams|chilo|kilo|etti|etto|litri|litro|pezzi|pcs|gr|kg|hg|ml|lt|pz|g|l)\.?$`),

		parenPattern: regexp.MustCompile(`\(([^)]*)\)`),
		spacePattern: regexp.MustCompile(`\s+`),
	}
}

// Parse returns one item per non-empty line. Items have no id yet; the
// plan assigns one when they are added to a meal.
func (p *FoodItemParser) Parse(content string) ([]models.DietFoodItem, error) {
	var items []models.DietFoodItem

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		matches := p.bulletPattern.FindStringSubmatch(line)
		if len(matches) < 2 {
			continue
		}

		item, ok := p.parseLine(strings.TrimSpace(matches[1]))
		if !ok {
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNoFoodItems
	}
	return items, nil
}

func (p *FoodItemParser) parseLine(content string) (models.DietFoodItem, bool) {
	item := models.DietFoodItem{Quantity: 1, Unit: string(models.UnitGram)}

	// Notes in parentheses are not part of the name
	remaining := p.parenPattern.ReplaceAllString(content, "")
	remaining = strings.TrimSpace(remaining)

	if m := p.trailingPattern.FindStringSubmatch(remaining); len(m) == 5 {
		qty := parseDecimal(m[2])
		if m[3] != "" {
			qty = (qty + parseDecimal(m[3])) / 2
		}
		unit, scale := normalizeUnit(m[4])
		item.Quantity = qty * scale
		item.Unit = unit
		item.Name = p.cleanName(m[1])
		return item, item.Name != ""
	}

	var qty float64
	remaining, qty = p.extractQuantity(remaining)

	unit, scale, rest, found := p.extractUnit(remaining)
	if found {
		item.Unit = unit
		remaining = rest
	}
	item.Quantity = qty * scale

	// Italian style "80 g di riso"
	if lower := strings.ToLower(remaining); strings.HasPrefix(lower, "di ") {
		remaining = remaining[3:]
	}

	item.Name = p.cleanName(remaining)
	return item, item.Name != ""
}

// extractQuantity handles decimals, ranges and fractions. Missing means 1.
func (p *FoodItemParser) extractQuantity(s string) (string, float64) {
	s = strings.TrimSpace(s)

	// Range first, use the average
	if m := p.rangePattern.FindStringSubmatch(s); len(m) == 3 {
		low := parseDecimal(m[1])
		high := parseDecimal(m[2])
		return strings.TrimSpace(s[len(m[0]):]), (low + high) / 2
	}

	// Whole number followed by a unicode fraction: "1 ½"
	if m := p.wholePattern.FindStringSubmatch(s); len(m) == 2 {
		rest, frac := extractUnicodeFraction(s[len(m[0]):])
		if frac > 0 {
			whole, _ := strconv.ParseFloat(m[1], 64)
			return rest, whole + frac
		}
	}

	if rest, frac := extractUnicodeFraction(s); frac > 0 {
		return rest, frac
	}

	if m := p.fractionPattern.FindStringSubmatch(s); len(m) == 3 {
		num, _ := strconv.ParseFloat(m[1], 64)
		denom, _ := strconv.ParseFloat(m[2], 64)
		if denom != 0 {
			return strings.TrimSpace(s[len(m[0]):]), num / denom
		}
	}

	if m := p.quantityPattern.FindStringSubmatch(s); len(m) == 2 {
		return strings.TrimSpace(s[len(m[0]):]), parseDecimal(m[1])
	}

	return s, 1
}

func (p *FoodItemParser) extractUnit(s string) (unit string, scale float64, rest string, found bool) {
	m := p.unitPattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", 1, s, false
	}
	unit, scale = normalizeUnit(m[1])
	return unit, scale, strings.TrimSpace(s[len(m[0]):]), true
}

func (p *FoodItemParser) cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".,;:-_")
	s = p.spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func extractUnicodeFraction(s string) (string, float64) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	runes := []rune(s)
	if len(runes) == 0 {
		return s, 0
	}
	if val, ok := unicodeFractions[runes[0]]; ok {
		return strings.TrimSpace(string(runes[1:])), val
	}
	return s, 0
}

func normalizeUnit(raw string) (string, float64) {
	key := strings.ToLower(raw)
	unit, ok := unitNormalization[key]
	if !ok {
		return key, 1
	}
	if scale, ok := unitScale[key]; ok {
		return unit, scale
	}
	return unit, 1
}

// parseDecimal accepts both "0.3" and "0,3"
func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	return v
}
