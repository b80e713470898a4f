package types

import (
	"encoding/json"
	"strings"
)

// Recipe represents a generated recipe as returned by the AI service.
type Recipe struct {
	Name         string            `json:"name"`
	Ingredients  []Ingredient      `json:"ingredients"`
	Instructions []string          `json:"instructions"`
	Nutrition    map[string]string `json:"nutrition"`
	ShoppingList []string          `json:"shopping_list,omitempty"`
}

// Ingredient can handle the heterogeneous ingredient shapes produced by the
// AI service and found in older history files: a bare string, an object with
// an item/amount pair, or an object keyed by name or text instead of item.
// The raw bytes are retained so unrecognized shapes round-trip intact.
type Ingredient struct {
	Item   string
	Amount string
	Name   string
	Text   string
	raw    json.RawMessage
}

// NewIngredient builds an item/amount ingredient.
func NewIngredient(item, amount string) Ingredient {
	return Ingredient{Item: item, Amount: amount}
}

// IngredientFromString builds a plain-text ingredient.
func IngredientFromString(s string) Ingredient {
	b, _ := json.Marshal(s)
	return Ingredient{Text: s, raw: b}
}

func (i *Ingredient) UnmarshalJSON(data []byte) error {
	i.raw = append(json.RawMessage(nil), data...)

	// Try to unmarshal as a plain string first
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		i.Text = str
		return nil
	}

	// Try to unmarshal as an object with the known field names
	var obj struct {
		Item   string `json:"item"`
		Amount string `json:"amount"`
		Name   string `json:"name"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		i.Item = obj.Item
		i.Amount = obj.Amount
		i.Name = obj.Name
		i.Text = obj.Text
		return nil
	}

	// Anything else (number, array, ...) is kept verbatim in raw
	return nil
}

func (i Ingredient) MarshalJSON() ([]byte, error) {
	if len(i.raw) > 0 {
		return i.raw, nil
	}
	if i.Item != "" || i.Amount != "" {
		return json.Marshal(struct {
			Item   string `json:"item"`
			Amount string `json:"amount"`
		}{i.Item, i.Amount})
	}
	return json.Marshal(i.Label())
}

// Label resolves the ingredient to its display string: item, then name, then
// text, then a canonical serialization of whatever was parsed.
func (i Ingredient) Label() string {
	switch {
	case i.Item != "":
		return i.Item
	case i.Name != "":
		return i.Name
	case i.Text != "":
		return i.Text
	case len(i.raw) > 0:
		return strings.TrimSpace(string(i.raw))
	default:
		return ""
	}
}

// Entry is one persisted recipe generation event plus its user context.
// Entries are immutable once created; they are only ever deleted wholesale.
type Entry struct {
	ID            string              `json:"id"`
	Timestamp     string              `json:"timestamp"`
	Recipe        Recipe              `json:"recipe"`
	RecipeIngs    []string            `json:"recipe_ings"`
	ImageURL      string              `json:"image_url"`
	UserIngs      []string            `json:"user_ings"`
	Substitutions map[string][]string `json:"substitutions"`
}

// Draft holds an in-progress generation between the AI call and the user's
// image confirmation. It is never persisted.
type Draft struct {
	Recipe       Recipe   `json:"recipe"`
	RecipeIngs   []string `json:"recipe_ings"`
	ImageOptions []string `json:"image_options"`
	UserIngs     []string `json:"user_ings"`
}
