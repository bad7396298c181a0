package scoring

import "strings"

// Category is the closed set of project categories.
type Category string

const (
	CategoryWebDevelopment    Category = "web-development"
	CategoryMobileDevelopment Category = "mobile-development"
	CategoryAIML              Category = "ai-ml"
	CategoryBackend           Category = "backend"
	CategoryFrontend          Category = "frontend"
	CategoryFullStack         Category = "full-stack"
	CategoryDataScience       Category = "data-science"
	CategoryDevOps            Category = "devops"
	CategoryGameDevelopment   Category = "game-development"
	CategoryOther             Category = "other"
)

// categoryTable is checked in declared order; the first category with a
// substring match wins. A slice keeps the tie-break reproducible.
var categoryTable = []struct {
	category Category
	keywords []string
}{
	{CategoryWebDevelopment, []string{"web", "react", "vue", "angular", "nextjs", "website"}},
	{CategoryMobileDevelopment, []string{"mobile", "android", "ios", "flutter", "react-native"}},
	{CategoryAIML, []string{"ai", "ml", "machine-learning", "deep-learning", "nlp", "computer-vision", "llm"}},
	{CategoryBackend, []string{"api", "server", "database", "postgres", "mongodb", "redis", "grpc"}},
	{CategoryFrontend, []string{"ui", "ux", "css", "html", "design-system"}},
	{CategoryFullStack, []string{"full-stack", "fullstack"}},
	{CategoryDataScience, []string{"data", "analytics", "visualization", "pandas", "jupyter"}},
	{CategoryDevOps, []string{"devops", "docker", "kubernetes", "terraform", "ci-cd"}},
	{CategoryGameDevelopment, []string{"game", "unity", "unreal", "godot"}},
}

// Classify maps a repository's description and topics to a category.
// Matching is substring-based over the combined lowercase text; returns
// CategoryOther when nothing matches.
func Classify(description string, topics []string) Category {
	text := strings.ToLower(description + " " + strings.Join(topics, " "))

	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// AllCategories returns the closed category set in table order.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryTable)+1)
	for _, entry := range categoryTable {
		out = append(out, entry.category)
	}
	return append(out, CategoryOther)
}
