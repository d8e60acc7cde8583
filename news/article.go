package news

// Article is one unit of content extracted from a news page. Title and
// Description are nil when the page had no matching element; an absent field
// is serialized as JSON null and as an empty CSV cell.
type Article struct {
	ID          int     `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Source      string  `json:"source"`
}

// LinkList is the ordered list of anchor targets found on a page. It may hold
// duplicates and relative paths.
type LinkList []string

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Value returns the string behind p, or "" if p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
