package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/config"
	"github.com/pageza/pantrypal/backend/internal/types"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	TopP           float64           `json:"top_p"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
}

// Cuisine and theme pools for surprise generation. Repeated surprise calls
// must not be deterministic, so each call draws a fresh pair and folds the
// current timestamp into the prompt.
var (
	surpriseCuisines = []string{
		"Moroccan", "Korean", "Peruvian", "Nordic", "Caribbean",
		"Ethiopian", "Thai", "Middle Eastern", "Brazilian", "Japanese",
	}
	surpriseThemes = []string{
		"one-pot wonder", "street-food twist", "fusion of two cuisines",
		"deconstructed comfort food", "farm-to-table special",
		"seasonal harvest stew", "spiced-up breakfast", "vegan gourmet delight",
	}
)

var jsonObjectPattern = regexp.MustCompile(`(?s)(\{.*\})`)

const recipeSystemPrompt = `You are a world-class chef AI. Given ingredients, dietary restrictions, and number of servings, RESPOND WITH STRICTLY VALID JSON AND NOTHING ELSE. Use double quotes for all keys and string values. Do NOT include trailing commas, comments, code fences, markdown, or any extra text. Output JSON must have exactly these keys:
  "name": string,
  "ingredients": [{"item": string, "amount": string}, ...],
  "instructions": [string, ...],
  "nutrition": {string: string, ...},
  "shopping_list": [string, ...]
If the user gives no ingredients, generate a completely random recipe with a unique never-before-seen name.`

const substitutionSystemPrompt = `You are a culinary expert. Given a list of missing ingredients, output ONLY a valid JSON object with double-quoted keys and string values. Each key is a missing ingredient, each value is an array of exactly two substitute ingredient names. Example:
{ "Spaghetti": ["Linguine","Fettuccine"], "Tomato": ["Cherry tomatoes","Crushed tomatoes"] }
Do not include any extra text or formatting.`

// LLMService generates recipes through a chat-completions API.
type LLMService struct {
	cfg    config.AIConfig
	client *http.Client
	logger *zap.Logger
	rng    *rand.Rand
}

// NewLLMService creates a new LLMService instance. It returns an error only
// when the API key is missing, so the caller can disable generation and keep
// the rest of the application running.
func NewLLMService(cfg config.AIConfig, logger *zap.Logger) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// GenerateRecipe asks the model for a recipe. The surprise path (no
// ingredients) runs at full temperature with a randomized cuisine and theme
// so consecutive calls diverge.
func (s *LLMService) GenerateRecipe(ctx context.Context, ingredients, restrictions []string, servings int) (types.Recipe, error) {
	system := recipeSystemPrompt
	temperature := 0.8
	topP := 0.95

	if len(ingredients) == 0 {
		temperature = 1.0
		topP = 1.0
		cuisine := surpriseCuisines[s.rng.Intn(len(surpriseCuisines))]
		theme := surpriseThemes[s.rng.Intn(len(surpriseThemes))]
		system += fmt.Sprintf(
			" For this random recipe, theme: %s from %s cuisine. Include the timestamp %s in your creative process. Assign a never-before-seen name.",
			theme, cuisine, time.Now().Format("2006-01-02 15:04"))
	}

	ingList := "None"
	if len(ingredients) > 0 {
		ingList = strings.Join(ingredients, ", ")
	}
	restrList := "None"
	if len(restrictions) > 0 {
		restrList = strings.Join(restrictions, ", ")
	}
	prompt := fmt.Sprintf("Ingredients: %s\nRestrictions: %s\nServings: %d\n\nOutput ONLY the JSON object.",
		ingList, restrList, servings)

	content, err := s.complete(ctx, s.cfg.Model, system, prompt, temperature, topP, s.cfg.MaxTokens)
	if err != nil {
		return types.Recipe{}, err
	}

	var recipe types.Recipe
	if err := json.Unmarshal([]byte(content), &recipe); err != nil {
		// One rescue attempt: the model sometimes wraps the object in
		// prose despite the JSON-only instruction.
		if m := jsonObjectPattern.FindString(content); m != "" {
			if err2 := json.Unmarshal([]byte(m), &recipe); err2 == nil {
				return recipe, nil
			}
		}
		return types.Recipe{}, fmt.Errorf("failed to parse recipe response: %w", err)
	}
	return recipe, nil
}

// GetSubstitutions maps missing ingredients to two substitutes each. Parse
// failures degrade to an empty map after a brace-extraction rescue; the
// caller then saves the entry without substitutions.
func (s *LLMService) GetSubstitutions(ctx context.Context, missing []string) (map[string][]string, error) {
	if len(missing) == 0 {
		return map[string][]string{}, nil
	}

	prompt := fmt.Sprintf("Missing ingredients: %s.\nOutput ONLY the JSON mapping.", strings.Join(missing, ", "))
	content, err := s.complete(ctx, s.cfg.SubsModel, substitutionSystemPrompt, prompt, 0.7, 0.9, 512)
	if err != nil {
		return nil, err
	}

	var subs map[string][]string
	if err := json.Unmarshal([]byte(content), &subs); err == nil {
		return subs, nil
	}
	if m := jsonObjectPattern.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), &subs); err == nil {
			return subs, nil
		}
	}
	s.logger.Warn("substitution response was not valid JSON, returning empty map")
	return map[string][]string{}, nil
}

// complete performs one chat-completions round trip and returns the message
// content of the first choice.
func (s *LLMService) complete(ctx context.Context, model, system, prompt string, temperature, topP float64, maxTokens int) (string, error) {
	reqBody := Request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.cfg.APIKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("AI request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", fmt.Errorf("AI request failed with status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return result.Choices[0].Message.Content, nil
}
