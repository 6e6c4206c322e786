package model

// DefaultLimit is the number of rows shown when no limit was chosen.
const DefaultLimit = 100

// FilterCriteria is the current user selection. Empty strings are inactive.
type FilterCriteria struct {
	AttackType string `json:"attack_type" yaml:"attack_type"`
	Severity   string `json:"severity" yaml:"severity"`
	Country    string `json:"country" yaml:"country"`
	Limit      int    `json:"limit" yaml:"limit"`
}

// DefaultCriteria returns criteria with every filter inactive.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{Limit: DefaultLimit}
}

// HasFilters reports whether any structured criterion is active.
func (c FilterCriteria) HasFilters() bool {
	return c.AttackType != "" || c.Severity != "" || c.Country != ""
}

// Normalized returns a copy whose limit is positive and at most max.
// A max <= 0 leaves the upper bound open.
func (c FilterCriteria) Normalized(max int) FilterCriteria {
	if c.Limit < 1 {
		c.Limit = DefaultLimit
	}
	if max > 0 && c.Limit > max {
		c.Limit = max
	}
	return c
}

// AttackView is the derived table view for one set of criteria.
type AttackView struct {
	Items    []AttackRecord `json:"items"`
	Matched  int            `json:"matched"`
	Total    int            `json:"total"`
	Criteria FilterCriteria `json:"criteria"`
	Search   string         `json:"search,omitempty"`
}
