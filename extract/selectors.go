package extract

// Selectors defines which elements of a page hold articles and their fields.
type Selectors struct {
	Article     string `yaml:"article" json:"article"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// DefaultSelectors matches <article> containers with an <h2> title and a <p>
// description.
func DefaultSelectors() Selectors {
	return Selectors{
		Article:     "article",
		Title:       "h2",
		Description: "p",
	}
}

// withDefaults fills empty selectors from DefaultSelectors.
func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if s.Article == "" {
		s.Article = def.Article
	}
	if s.Title == "" {
		s.Title = def.Title
	}
	if s.Description == "" {
		s.Description = def.Description
	}
	return s
}
