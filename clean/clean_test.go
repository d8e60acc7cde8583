package clean

import (
	"regexp"
	"testing"

	"github.com/pevans/newsfetch/news"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cleanOutput = regexp.MustCompile(`^[a-z ]*$`)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Title A", "title a"},
		{"tags", "<b>Breaking</b> news", "breaking news"},
		{"attributes", `<a href="/x">Link</a>`, "link"},
		{"digits and punctuation", "Pakistan's GDP grew 3.5%!", "pakistan s gdp grew "},
		{"repeated spaces", "a    b", "a b"},
		{"leading and trailing", "  Hello, world.  ", " hello world "},
		{"unicode", "Café – über", "caf ber"},
		{"newline", "line one\nline two", "line one line two"},
		{"empty", "", ""},
		{"only symbols", "!!!", " "},
		{"lazy tag match", "<i>a</i> b <i>c</i>", "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preprocess(tt.in))
		})
	}
}

// TestPreprocess_TagsBeforeLetters verifies tag stripping runs before the
// letter filter
func TestPreprocess_TagsBeforeLetters(t *testing.T) {
	got := Preprocess("<span>Word</span>")

	assert.Equal(t, "word", got, "tag names must not leak into the output")
	assert.NotContains(t, got, "span")
}

// TestPreprocess_Properties verifies output shape and idempotence
func TestPreprocess_Properties(t *testing.T) {
	inputs := []string{
		"Title A",
		"<div class=\"x\">Hello <b>World</b> 2024!</div>",
		"  multiple   spaces\tand\ttabs  ",
		"Ünïcödé and émojis 🎉🎉",
		"<<nested>> tags>",
		"1234567890",
		"",
	}

	for _, in := range inputs {
		once := Preprocess(in)
		assert.Regexp(t, cleanOutput, once, "input %q", in)
		assert.NotContains(t, once, "  ", "input %q", in)
		assert.Equal(t, once, Preprocess(once), "should be idempotent for %q", in)
	}
}

// TestArticles_Scenario verifies cleaning of the two-article example
func TestArticles_Scenario(t *testing.T) {
	articles := []news.Article{
		{ID: 1, Title: news.StringPtr("Title A"), Description: news.StringPtr("Desc A"), Source: "http://u"},
		{ID: 2, Title: news.StringPtr("Title B"), Source: "http://u"},
	}

	cleaned := Articles(articles)

	require.Len(t, cleaned, 2)
	assert.Equal(t, "title a", *cleaned[0].Title)
	assert.Equal(t, "desc a", *cleaned[0].Description)
	assert.Equal(t, "title b", *cleaned[1].Title)
	assert.Nil(t, cleaned[1].Description, "absent description should stay absent")
	assert.Equal(t, 2, cleaned[1].ID)
	assert.Equal(t, "http://u", cleaned[1].Source)
}

// TestArticles_InPlace verifies the input slice is updated
func TestArticles_InPlace(t *testing.T) {
	articles := []news.Article{{ID: 1, Title: news.StringPtr("HELLO")}}

	Articles(articles)

	assert.Equal(t, "hello", *articles[0].Title)
}

// TestArticles_AbsentFields verifies nil fields are not coerced to empty
// strings
func TestArticles_AbsentFields(t *testing.T) {
	cleaned := Articles([]news.Article{{ID: 1, Source: "http://u"}})

	assert.Nil(t, cleaned[0].Title)
	assert.Nil(t, cleaned[0].Description)
}

// TestArticles_EmptyFields verifies empty text is treated as absent
func TestArticles_EmptyFields(t *testing.T) {
	cleaned := Articles([]news.Article{{ID: 1, Title: news.StringPtr(""), Description: news.StringPtr("")}})

	assert.Nil(t, cleaned[0].Title)
	assert.Nil(t, cleaned[0].Description)
}

func TestArticles_Empty(t *testing.T) {
	assert.Empty(t, Articles(nil))
}
