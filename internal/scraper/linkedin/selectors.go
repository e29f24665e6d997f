package linkedin

import (
	"strings"

	"go-jobpost-scraper/internal/browser"
	"go-jobpost-scraper/internal/models"
)

// SelectorMatch tells which selector supplied a field. Selector is empty
// when nothing matched.
type SelectorMatch struct {
	Field    string
	Selector string
	Text     string
}

// MatchSelectors checks every extraction selector against an open page without
// clicking or scrolling. It is meant for spotting layout changes.
func MatchSelectors(session browser.Session) []SelectorMatch {
	rules := append([]fieldRule{}, fieldRules...)
	rules = append(rules,
		fieldRule{field: "show_more", selectors: []string{showMoreSelector}},
		fieldRule{field: models.FieldJobDescription, selectors: []string{descriptionSelector}},
	)

	out := make([]SelectorMatch, 0, len(rules))
	for _, rule := range rules {
		match := SelectorMatch{Field: rule.field}
		for _, sel := range rule.selectors {
			el, err := session.FindOne(sel)
			if err != nil {
				continue
			}
			text, _ := el.Text()
			match.Selector = sel
			match.Text = strings.TrimSpace(text)
			break
		}
		out = append(out, match)
	}
	return out
}
