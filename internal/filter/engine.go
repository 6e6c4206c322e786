package filter

import (
	"strings"

	"cyber-dashboard/internal/model"
)

// Matches reports whether r satisfies every active structured criterion.
// Comparison is exact and case-sensitive.
func Matches(r *model.AttackRecord, c model.FilterCriteria) bool {
	if c.AttackType != "" && r.AttackType != c.AttackType {
		return false
	}
	if c.Severity != "" && r.Severity != c.Severity {
		return false
	}
	if c.Country != "" && r.Country != c.Country {
		return false
	}
	return true
}

// MatchesSearch reports whether the category, country or severity tier of r
// contains term, ignoring case. An empty term matches everything.
func MatchesSearch(r *model.AttackRecord, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(r.AttackType), term) ||
		strings.Contains(strings.ToLower(r.Country), term) ||
		strings.Contains(strings.ToLower(r.Severity), term)
}

// Apply narrows records to those matching c and search, keeping their
// original order. Matched counts every hit; Items holds at most c.Limit of
// them. A non-positive limit exposes no cap. records is never modified.
func Apply(records []model.AttackRecord, c model.FilterCriteria, search string) model.AttackView {
	view := model.AttackView{
		Items:    make([]model.AttackRecord, 0),
		Total:    len(records),
		Criteria: c,
		Search:   search,
	}

	for i := range records {
		r := &records[i]
		if !Matches(r, c) {
			continue
		}
		if !MatchesSearch(r, search) {
			continue
		}

		view.Matched++
		if c.Limit <= 0 || len(view.Items) < c.Limit {
			view.Items = append(view.Items, *r)
		}
	}

	return view
}
