package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"cyber-dashboard/internal/model"

	"gopkg.in/yaml.v3"
)

// csvColumns is the header of the masked attack CSV export.
var csvColumns = []string{
	"id", "timestamp", "attack_type", "source_ip", "target_ip", "country",
	"severity", "severity_score", "duration_minutes", "affected_users",
	"username", "email", "description",
}

// FileSource reads a dataset from a .json, .yaml/.yml or .csv file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Path() string {
	return s.path
}

func (s *FileSource) Fetch(ctx context.Context) ([]model.AttackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", s.path, err)
	}
	defer f.Close()

	switch extension(s.path) {
	case ".json":
		return decodeJSON(f)
	case ".yaml", ".yml":
		return decodeYAML(f)
	case ".csv":
		return decodeCSV(f)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", extension(s.path))
	}
}

func decodeJSON(r io.Reader) ([]model.AttackRecord, error) {
	var records []model.AttackRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON dataset: %w", err)
	}
	return records, nil
}

func decodeYAML(r io.Reader) ([]model.AttackRecord, error) {
	var records []model.AttackRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]model.AttackRecord, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return []model.AttackRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV dataset is missing column %q", col)
		}
	}

	records := make([]model.AttackRecord, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		field := func(name string) string { return row[index[name]] }
		rec := model.AttackRecord{
			Timestamp:   field("timestamp"),
			AttackType:  field("attack_type"),
			SourceIP:    field("source_ip"),
			TargetIP:    field("target_ip"),
			Country:     field("country"),
			Severity:    field("severity"),
			Username:    field("username"),
			Email:       field("email"),
			Description: field("description"),
		}

		if rec.ID, err = strconv.ParseInt(field("id"), 10, 64); err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid id: %w", line, err)
		}
		if rec.SeverityScore, err = strconv.Atoi(field("severity_score")); err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid severity_score: %w", line, err)
		}
		if rec.DurationMinutes, err = strconv.Atoi(field("duration_minutes")); err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid duration_minutes: %w", line, err)
		}
		if rec.AffectedUsers, err = strconv.ParseInt(field("affected_users"), 10, 64); err != nil {
			return nil, fmt.Errorf("CSV line %d: invalid affected_users: %w", line, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

// WriteFile stores records in the format implied by the path extension.
// A .db extension writes a SQLite database.
func WriteFile(path string, records []model.AttackRecord) error {
	if ext := extension(path); ext == ".db" || ext == ".sqlite" {
		return WriteSQLite(path, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	switch extension(path) {
	case ".json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(records)
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(f)
		err = enc.Encode(records)
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	case ".csv":
		err = encodeCSV(f, records)
	default:
		return fmt.Errorf("unsupported dataset format %q", extension(path))
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func encodeCSV(w io.Writer, records []model.AttackRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10), r.Timestamp, r.AttackType, r.SourceIP, r.TargetIP,
			r.Country, r.Severity, strconv.Itoa(r.SeverityScore), strconv.Itoa(r.DurationMinutes),
			strconv.FormatInt(r.AffectedUsers, 10), r.Username, r.Email, r.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
