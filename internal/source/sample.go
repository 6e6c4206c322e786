package source

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"cyber-dashboard/internal/model"
)

var (
	sampleAttackTypes = []string{
		"DDoS", "Phishing", "Malware", "Ransomware", "SQL Injection",
		"XSS", "Brute Force", "Man-in-the-Middle", "Social Engineering",
	}
	sampleCountries = []string{
		"Estados Unidos", "China", "Rusia", "Alemania", "Reino Unido",
		"Francia", "Japón", "Brasil", "India", "Canadá",
	}
)

// sampleEpoch anchors generated timestamps so a seed always yields the same dataset.
var sampleEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// SampleSource generates a deterministic demonstration dataset.
type SampleSource struct {
	size int
	seed int64
}

func NewSampleSource(size int, seed int64) *SampleSource {
	if size < 0 {
		size = 0
	}
	return &SampleSource{size: size, seed: seed}
}

func (s *SampleSource) Name() string {
	return fmt.Sprintf("sample:%d", s.size)
}

func (s *SampleSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Generate(s.size, s.seed), nil
}

// Generate builds n masked attack records from seed.
func Generate(n int, seed int64) []model.AttackRecord {
	rng := rand.New(rand.NewSource(seed))
	severities := model.Severities()
	records := make([]model.AttackRecord, 0, n)

	for i := 0; i < n; i++ {
		ts := sampleEpoch.
			Add(time.Duration(rng.Intn(366)) * 24 * time.Hour).
			Add(time.Duration(rng.Intn(86400)) * time.Second)

		records = append(records, model.AttackRecord{
			ID:              int64(i + 1),
			Timestamp:       ts.Format(time.RFC3339),
			AttackType:      sampleAttackTypes[rng.Intn(len(sampleAttackTypes))],
			SourceIP:        fmt.Sprintf("XXX.XXX.XXX.%d", rng.Intn(254)+1),
			TargetIP:        fmt.Sprintf("XXX.XXX.XXX.%d", rng.Intn(254)+1),
			Country:         sampleCountries[rng.Intn(len(sampleCountries))],
			Severity:        severities[rng.Intn(len(severities))],
			SeverityScore:   rng.Intn(10) + 1,
			DurationMinutes: rng.Intn(480) + 1,
			AffectedUsers:   int64(rng.Intn(10000) + 1),
			Username:        fmt.Sprintf("USER_%d", rng.Intn(9000)+1000),
			Email:           "***@***.***",
			Description: fmt.Sprintf("Ataque de %s detectado",
				strings.ToLower(sampleAttackTypes[rng.Intn(len(sampleAttackTypes))])),
		})
	}

	return records
}
