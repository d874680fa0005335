package gamification

import "testing"

// TestParseImpactDollars проверяет извлечение долларовой оценки из текста.
func TestParseImpactDollars(t *testing.T) {
	cases := []struct {
		text string
		want int64
	}{
		{"Save $450/year", 450},
		{"Save $1,200 annually", 1200},
		{"Could free up $2.5k per year", 2500},
		{"Save $3K over time", 3000},
		{"no estimate here", 0},
		{"", 0},
	}

	for _, tc := range cases {
		if got := parseImpactDollars(tc.text); got != tc.want {
			t.Fatalf("%q: expected %d, got %d", tc.text, tc.want, got)
		}
	}
}

// TestTotalImpactDollars проверяет суммирование по списку стратегий.
func TestTotalImpactDollars(t *testing.T) {
	impacts := []string{"Save $450/year", "Save $1,200 annually", "no estimate"}

	if got := totalImpactDollars(impacts); got != 1650 {
		t.Fatalf("expected 1650, got %d", got)
	}
}
