package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var knownHorsemen = map[string]struct{}{
	"interest":  {},
	"taxes":     {},
	"insurance": {},
	"education": {},
}

type Service struct {
	client Client
}

// NewService создает сервис работы с AI-клиентом.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// GenerateStrategies запрашивает у AI стратегии по категории давления и валидирует ответ.
func (s *Service) GenerateStrategies(ctx context.Context, input GenerateStrategiesInput) (StrategiesResponse, string, []byte, error) {
	if _, ok := knownHorsemen[input.Horseman]; !ok {
		return StrategiesResponse{}, "", nil, fmt.Errorf("unknown horseman: %s", input.Horseman)
	}

	prompt, err := buildStrategiesPrompt(input)
	if err != nil {
		return StrategiesResponse{}, "", nil, err
	}

	messages := []Message{
		{Role: "system", Content: "You are a personal finance coach. Respond with JSON only, without extra text."},
		{Role: "user", Content: prompt},
	}

	content, raw, err := s.client.Chat(ctx, messages)
	if err != nil {
		return StrategiesResponse{}, prompt, raw, err
	}

	var response StrategiesResponse
	if err := parseJSON(content, &response); err != nil {
		return StrategiesResponse{}, prompt, raw, err
	}

	normalizeStrategiesResponse(&response)
	if err := validateStrategiesResponse(response); err != nil {
		return StrategiesResponse{}, prompt, raw, err
	}

	return response, prompt, raw, nil
}

func buildStrategiesPrompt(input GenerateStrategiesInput) (string, error) {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Suggest concrete money-saving strategies for the given financial pressure category as JSON.

Requirements:
- Output JSON only, no code fences, no extra text.
- Keep JSON compact (no extra whitespace).
- Write titles and descriptions in plain English, addressed to the user.
- Schema:
{
  "strategies": [
    {"title": string, "description": string, "estimated_impact": string}
  ]
}
- Provide 1-3 strategies, each specific to the "%s" category and grounded in the input numbers.
- estimated_impact is a short phrase with a dollar estimate, e.g. "Save $450/year".
- Keep titles short (<= 80 chars).
- Do not suggest products by brand name.

Input:
%s`, input.Horseman, string(payload))

	return prompt, nil
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

func normalizeStrategiesResponse(response *StrategiesResponse) {
	for i := range response.Strategies {
		response.Strategies[i].Title = strings.TrimSpace(response.Strategies[i].Title)
		response.Strategies[i].Description = strings.TrimSpace(response.Strategies[i].Description)
		response.Strategies[i].EstimatedImpact = strings.TrimSpace(response.Strategies[i].EstimatedImpact)
	}
}

func validateStrategiesResponse(response StrategiesResponse) error {
	if len(response.Strategies) == 0 {
		return errors.New("strategies are required")
	}
	if len(response.Strategies) > 3 {
		return errors.New("too many strategies")
	}

	for _, strategy := range response.Strategies {
		if strategy.Title == "" {
			return errors.New("strategy title is required")
		}
		if len(strategy.Title) > 200 {
			return errors.New("strategy title is too long")
		}
		if strategy.Description == "" {
			return errors.New("strategy description is required")
		}
		if len(strategy.Description) > 2000 {
			return errors.New("strategy description is too long")
		}
		if strategy.EstimatedImpact == "" {
			return errors.New("strategy estimated_impact is required")
		}
	}

	return nil
}
