// Package clean normalizes extracted article text.
package clean

import (
	"regexp"
	"strings"

	"github.com/pevans/newsfetch/news"
)

var (
	tagPattern       = regexp.MustCompile(`<.*?>`)
	nonLetterPattern = regexp.MustCompile(`[^a-zA-Z]`)
	spacesPattern    = regexp.MustCompile(` +`)
)

// Preprocess strips HTML tags, turns every non-letter into a space,
// lowercases, and collapses runs of spaces. Tags must go first: once the
// letter filter runs, "<b>" is indistinguishable from " b ".
func Preprocess(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = nonLetterPattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	text = spacesPattern.ReplaceAllString(text, " ")
	return text
}

// Articles preprocesses the title and description of each article in place
// and returns the same slice. Absent or empty fields end up absent.
func Articles(articles []news.Article) []news.Article {
	for i := range articles {
		articles[i].Title = field(articles[i].Title)
		articles[i].Description = field(articles[i].Description)
	}
	return articles
}

func field(text *string) *string {
	if text == nil || *text == "" {
		return nil
	}
	cleaned := Preprocess(*text)
	return &cleaned
}
