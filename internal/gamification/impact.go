package gamification

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Из свободного текста вида "saves about $1,200/year" или "~$2.5k annually"
// извлекается первая долларовая сумма; нераспознанный текст дает 0.
var dollarPattern = regexp.MustCompile(`\$([0-9][0-9,]*)(\.[0-9]+)?\s*([kK])?`)

func totalImpactDollars(impacts []string) int64 {
	var total int64
	for _, text := range impacts {
		total += parseImpactDollars(text)
	}
	return total
}

func parseImpactDollars(text string) int64 {
	match := dollarPattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}

	digits := strings.ReplaceAll(match[1], ",", "")
	value, err := strconv.ParseFloat(digits+match[2], 64)
	if err != nil {
		return 0
	}

	if match[3] != "" {
		value *= 1000
	}

	return int64(math.Round(value))
}