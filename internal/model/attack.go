package model

// SeverityTier is the coarse impact label of an attack.
type SeverityTier = string

const (
	SeverityLow      SeverityTier = "Bajo"
	SeverityMedium   SeverityTier = "Medio"
	SeverityHigh     SeverityTier = "Alto"
	SeverityCritical SeverityTier = "Crítico"
)

// Severities returns the known tiers from least to most severe.
func Severities() []SeverityTier {
	return []SeverityTier{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// IsKnownSeverity reports whether tier belongs to the closed label set.
func IsKnownSeverity(tier string) bool {
	for _, s := range Severities() {
		if s == tier {
			return true
		}
	}
	return false
}

// SeverityRank returns the ordinal of a tier, or -1 for unknown labels.
func SeverityRank(tier string) int {
	for i, s := range Severities() {
		if s == tier {
			return i
		}
	}
	return -1
}

const (
	MinSeverityScore = 0
	MaxSeverityScore = 10
)

// AttackRecord is one observed security event. Addresses, username, email and
// description arrive pre-masked and are carried through for display only.
type AttackRecord struct {
	ID              int64  `json:"id" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	Timestamp       string `json:"timestamp" yaml:"timestamp"`
	AttackType      string `json:"attack_type" yaml:"attack_type" gorm:"index"`
	SourceIP        string `json:"source_ip" yaml:"source_ip"`
	TargetIP        string `json:"target_ip" yaml:"target_ip"`
	Country         string `json:"country" yaml:"country" gorm:"index"`
	Severity        string `json:"severity" yaml:"severity" gorm:"index"`
	SeverityScore   int    `json:"severity_score" yaml:"severity_score"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
	AffectedUsers   int64  `json:"affected_users" yaml:"affected_users"`
	Username        string `json:"username" yaml:"username"`
	Email           string `json:"email" yaml:"email"`
	Description     string `json:"description" yaml:"description"`
}

// TableName pins the gorm table name.
func (AttackRecord) TableName() string {
	return "attacks"
}

// AttackStats is the summary of a full, unfiltered dataset.
//
// AvgSeverityScore is the unrounded mean; it is 0 for an empty dataset.
type AttackStats struct {
	TotalAttacks         int            `json:"total_attacks"`
	AttackTypes          map[string]int `json:"attack_types"`
	SeverityDistribution map[string]int `json:"severity_distribution"`
	TopCountries         map[string]int `json:"top_countries"`
	AvgSeverityScore     float64        `json:"avg_severity_score"`
	TotalAffectedUsers   int64          `json:"total_affected_users"`
}

// CountEntry is one row of a label/count projection (chart slice, option list).
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
