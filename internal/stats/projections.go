package stats

import (
	"math"
	"sort"

	"cyber-dashboard/internal/model"
)

// Chart sizes used by the dashboard.
const (
	DefaultTopAttackTypes = 8
	DefaultTopCountries   = 6
)

// Charts holds the chart-ready projections of an AttackStats value.
type Charts struct {
	AttackTypes []model.CountEntry `json:"attack_types"`
	Severity    []model.CountEntry `json:"severity"`
	Countries   []model.CountEntry `json:"countries"`
}

// FilterOptions lists the distinct labels a user can filter on.
type FilterOptions struct {
	AttackTypes []string `json:"attack_types"`
	Severities  []string `json:"severities"`
	Countries   []string `json:"countries"`
}

// TopN orders counts by count descending, ties by label, and keeps the first n.
// n <= 0 keeps every entry.
func TopN(counts map[string]int, n int) []model.CountEntry {
	entries := make([]model.CountEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, model.CountEntry{Label: label, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})

	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// SeverityOrdered lists severity counts in tier order. Labels outside the
// known tiers follow, sorted by label.
func SeverityOrdered(counts map[string]int) []model.CountEntry {
	entries := make([]model.CountEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, model.CountEntry{Label: label, Count: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		ri, rj := model.SeverityRank(entries[i].Label), model.SeverityRank(entries[j].Label)
		switch {
		case ri >= 0 && rj >= 0:
			return ri < rj
		case ri >= 0:
			return true
		case rj >= 0:
			return false
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}

// BuildCharts projects stats into the three dashboard charts.
func BuildCharts(s model.AttackStats, topTypes, topCountries int) Charts {
	return Charts{
		AttackTypes: TopN(s.AttackTypes, topTypes),
		Severity:    SeverityOrdered(s.SeverityDistribution),
		Countries:   TopN(s.TopCountries, topCountries),
	}
}

// DistinctValues collects the sorted distinct labels present in records.
func DistinctValues(records []model.AttackRecord) FilterOptions {
	types := make(map[string]struct{})
	severities := make(map[string]struct{})
	countries := make(map[string]struct{})

	for i := range records {
		types[records[i].AttackType] = struct{}{}
		severities[records[i].Severity] = struct{}{}
		countries[records[i].Country] = struct{}{}
	}

	return FilterOptions{
		AttackTypes: sortedKeys(types),
		Severities:  sortedKeys(severities),
		Countries:   sortedKeys(countries),
	}
}

// RoundMean rounds a mean to the given number of decimals for display.
func RoundMean(mean float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(mean*p) / p
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
