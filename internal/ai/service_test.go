package ai

import "testing"

// TestExtractJSON проверяет извлечение JSON из ответа модели.
func TestExtractJSON(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`{"strategies":[]}`, `{"strategies":[]}`},
		{"```json\n{\"strategies\":[]}\n```", `{"strategies":[]}`},
		{"Here you go: {\"strategies\":[]} hope it helps", `{"strategies":[]}`},
		{"no json at all", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := extractJSON(tc.input); got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

// TestValidateStrategiesResponse проверяет границы валидации ответа.
func TestValidateStrategiesResponse(t *testing.T) {
	valid := StrategiesResponse{Strategies: []StrategySuggestion{
		{Title: "Refinance your card balance", Description: "Move the balance to a lower rate.", EstimatedImpact: "Save $450/year"},
	}}
	if err := validateStrategiesResponse(valid); err != nil {
		t.Fatalf("expected valid response, got %v", err)
	}

	if err := validateStrategiesResponse(StrategiesResponse{}); err == nil {
		t.Fatal("expected error for empty strategies")
	}

	tooMany := StrategiesResponse{Strategies: make([]StrategySuggestion, 4)}
	if err := validateStrategiesResponse(tooMany); err == nil {
		t.Fatal("expected error for more than three strategies")
	}

	missingImpact := StrategiesResponse{Strategies: []StrategySuggestion{
		{Title: "A", Description: "B"},
	}}
	if err := validateStrategiesResponse(missingImpact); err == nil {
		t.Fatal("expected error for missing estimated_impact")
	}
}
