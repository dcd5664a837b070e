package database

import (
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

//go:embed seeds.yml
var seedData []byte

type severitySeed struct {
	Severity    string `yaml:"severity"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
}

type phenomenonSeed struct {
	Phenomenon  string `yaml:"phenomenon"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
}

type seeds struct {
	Severity  []severitySeed   `yaml:"severity"`
	Phenomena []phenomenonSeed `yaml:"phenomena"`
}

// SeedEmojiTables populates the severity_emoji and phenomenon_emoji lookup
// tables when they are empty. These tables are display metadata only; the
// ingestion pipeline never reads them.
func SeedEmojiTables(db *DB) error {
	var parsed seeds
	if err := yaml.Unmarshal(seedData, &parsed); err != nil {
		return fmt.Errorf("failed to parse seed data: %w", err)
	}

	var severityCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM severity_emoji").Scan(&severityCount); err != nil {
		return fmt.Errorf("failed to count severity_emoji rows: %w", err)
	}

	if severityCount == 0 {
		for _, s := range parsed.Severity {
			_, err := db.Exec(`
				INSERT INTO severity_emoji (severity, emoji, description)
				VALUES ($1, $2, $3)
				ON CONFLICT (severity) DO NOTHING
			`, s.Severity, s.Emoji, s.Description)
			if err != nil {
				return fmt.Errorf("failed to seed severity_emoji: %w", err)
			}
		}
		slog.Info("Seeded severity emoji mappings", "count", len(parsed.Severity))
	}

	var phenomenonCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM phenomenon_emoji").Scan(&phenomenonCount); err != nil {
		return fmt.Errorf("failed to count phenomenon_emoji rows: %w", err)
	}

	if phenomenonCount == 0 {
		for _, p := range parsed.Phenomena {
			_, err := db.Exec(`
				INSERT INTO phenomenon_emoji (phenomenon, emoji, description)
				VALUES ($1, $2, $3)
				ON CONFLICT (phenomenon) DO NOTHING
			`, p.Phenomenon, p.Emoji, p.Description)
			if err != nil {
				return fmt.Errorf("failed to seed phenomenon_emoji: %w", err)
			}
		}
		slog.Info("Seeded phenomenon emoji mappings", "count", len(parsed.Phenomena))
	}

	return nil
}
