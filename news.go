package skybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const defaultMaxArticles = 5

type newsArticle struct {
	Title  string
	Source string
	Date   string
}

type newsCategory struct {
	Name     string
	Articles []newsArticle
}

// newsCatalog is the simulated article database behind GetNewsArticles.
// Order matters: the first matching category wins.
var newsCatalog = []newsCategory{
	{
		Name: "technology",
		Articles: []newsArticle{
			{Title: "AI Breakthrough in Healthcare", Source: "Tech News", Date: "2025-10-20"},
			{Title: "New Quantum Computing Milestone", Source: "Science Daily", Date: "2025-10-19"},
			{Title: "Cloud Services Expand Globally", Source: "Business Tech", Date: "2025-10-18"},
			{Title: "Robotics in Manufacturing", Source: "Industry Today", Date: "2025-10-17"},
			{Title: "5G Networks Reach New Markets", Source: "Telecom News", Date: "2025-10-16"},
		},
	},
	{
		Name: "business",
		Articles: []newsArticle{
			{Title: "Global Markets Rally", Source: "Financial Times", Date: "2025-10-20"},
			{Title: "Startup Funding Reaches Record High", Source: "Entrepreneur", Date: "2025-10-19"},
			{Title: "Trade Agreements Boost Economy", Source: "Business Wire", Date: "2025-10-18"},
			{Title: "Corporate Sustainability Initiatives", Source: "Green Business", Date: "2025-10-17"},
			{Title: "E-commerce Trends 2025", Source: "Retail Today", Date: "2025-10-16"},
		},
	},
	{
		Name: "weather",
		Articles: []newsArticle{
			{Title: "Hurricane Season Updates", Source: "Weather Channel", Date: "2025-10-20"},
			{Title: "Climate Patterns Shift", Source: "Meteorology Today", Date: "2025-10-19"},
			{Title: "Record Temperatures in Europe", Source: "Global Weather", Date: "2025-10-18"},
			{Title: "Drought Conditions Improve", Source: "Climate News", Date: "2025-10-17"},
			{Title: "Winter Storm Preparations", Source: "Weather Service", Date: "2025-10-16"},
		},
	},
	{
		Name: "sports",
		Articles: []newsArticle{
			{Title: "Championship Finals Preview", Source: "Sports Network", Date: "2025-10-20"},
			{Title: "Olympic Qualifiers Begin", Source: "Athletic News", Date: "2025-10-19"},
			{Title: "Record-Breaking Performance", Source: "Sports Today", Date: "2025-10-18"},
			{Title: "Team Trades Shake Up League", Source: "Sports Insider", Date: "2025-10-17"},
			{Title: "Youth Sports Investment", Source: "Community Sports", Date: "2025-10-16"},
		},
	},
}

// GetNewsArticles returns simulated news for a topic as a JSON string.
// Topic matching is case-insensitive and bidirectional-substring; unmatched
// topics get templated placeholder articles that name the topic rather than
// borrowing another category's list.
func GetNewsArticles(ctx context.Context, args map[string]any) (string, error) {
	topic := stringArg(args, "topic")
	if topic == "" {
		return "", fmt.Errorf("topic is required")
	}
	maxArticles := intArg(args, "max_articles", defaultMaxArticles)
	if maxArticles < 0 {
		maxArticles = 0
	}

	matchedTopic := topic
	var articles []newsArticle
	topicLower := strings.ToLower(topic)
	for _, category := range newsCatalog {
		if strings.Contains(topicLower, category.Name) || strings.Contains(category.Name, topicLower) {
			matchedTopic = titleCase(category.Name)
			articles = category.Articles
			break
		}
	}

	if articles == nil {
		articles = []newsArticle{
			{Title: fmt.Sprintf("Latest Updates on %s", topic), Source: "General News", Date: "2025-10-20"},
			{Title: fmt.Sprintf("%s Analysis", topic), Source: "News Today", Date: "2025-10-19"},
			{Title: fmt.Sprintf("Expert Opinion on %s", topic), Source: "Daily Review", Date: "2025-10-18"},
		}
	}

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}

	summaryTopic := strings.ToLower(matchedTopic)
	items := make([]map[string]any, 0, len(articles))
	for _, article := range articles {
		items = append(items, map[string]any{
			"title":          article.Title,
			"source":         article.Source,
			"published_date": article.Date,
			"summary":        fmt.Sprintf("Article about %s", summaryTopic),
		})
	}

	response := map[string]any{
		"topic":         matchedTopic,
		"article_count": len(items),
		"articles":      items,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	}
	encoded, err := json.Marshal(response)
	if err != nil {
		return "", fmt.Errorf("encode news response: %w", err)
	}
	return string(encoded), nil
}

// titleCase uppercases the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NewDefaultRegistry returns a registry preloaded with the built-in
// simulated functions.
func NewDefaultRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	registry.Register("get_weather", GetWeather)
	registry.Register("get_news_articles", GetNewsArticles)
	return registry
}
