package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PolicyDocument is the document returned by the policy API.
// Every field is optional; nil means the key was absent from the payload.
type PolicyDocument struct {
	Title     *string   `json:"title,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Date      *string   `json:"date,omitempty"`
	URL       *string   `json:"url,omitempty"`
	SearchURL *string   `json:"search_url,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Related   []string  `json:"related,omitempty"`
	Articles  []Article `json:"articles,omitempty"`
}

// Article is a single clause or section of a policy.
type Article struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// DocumentFromPayload maps a decoded JSON object onto a PolicyDocument.
// Scalars of the wrong type are stringified; containers of the wrong type are ignored.
func DocumentFromPayload(payload map[string]any) PolicyDocument {
	return PolicyDocument{
		Title:     stringField(payload, "title"),
		Company:   stringField(payload, "company"),
		Date:      stringField(payload, "date"),
		URL:       stringField(payload, "url"),
		SearchURL: stringField(payload, "search_url"),
		Tags:      stringList(payload, "tags"),
		Related:   stringList(payload, "related"),
		Articles:  articleList(payload, "articles"),
	}
}

func articleList(payload map[string]any, key string) []Article {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}

	articles := make([]Article, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		articles = append(articles, Article{
			Name:        stringField(obj, "name"),
			Description: stringField(obj, "description"),
		})
	}
	return articles
}

func stringList(payload map[string]any, key string) []string {
	raw, ok := payload[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := scalarString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringField(payload map[string]any, key string) *string {
	v, present := payload[key]
	if !present {
		return nil
	}
	s, ok := scalarString(v)
	if !ok {
		return nil
	}
	return &s
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case nil:
		return "", false
	case map[string]any, []any:
		return "", false
	default:
		return fmt.Sprint(val), true
	}
}
