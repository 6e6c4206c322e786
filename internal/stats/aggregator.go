package stats

import (
	"cyber-dashboard/internal/model"
)

// Aggregate summarizes the full dataset. It never reads filter state and
// never fails; an empty dataset yields zero counts, empty maps and a mean of 0.
func Aggregate(records []model.AttackRecord) model.AttackStats {
	stats := model.AttackStats{
		TotalAttacks:         len(records),
		AttackTypes:          make(map[string]int),
		SeverityDistribution: make(map[string]int),
		TopCountries:         make(map[string]int),
	}

	var scoreSum int64
	for i := range records {
		r := &records[i]
		stats.AttackTypes[r.AttackType]++
		stats.SeverityDistribution[r.Severity]++
		stats.TopCountries[r.Country]++
		scoreSum += int64(r.SeverityScore)
		stats.TotalAffectedUsers += r.AffectedUsers
	}

	if len(records) > 0 {
		stats.AvgSeverityScore = float64(scoreSum) / float64(len(records))
	}

	return stats
}
