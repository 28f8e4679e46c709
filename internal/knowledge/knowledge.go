// Package knowledge loads the static company and services text that replies may draw on.
package knowledge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// File names looked up in the knowledge directory.
const (
	AboutFile        = "about.txt"
	ServicesCSVFile  = "services.csv"
	ServicesYAMLFile = "services.yaml"
)

// Service is one offering listed in services.yaml.
type Service struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

// Load builds the knowledge base from dir. Missing files are skipped; a file
// that exists but cannot be parsed is logged and skipped.
func Load(dir string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var parts []string

	about, err := readOptional(filepath.Join(dir, AboutFile))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(about) != "" {
		parts = append(parts, "[COMPANY PROFILE]\n"+strings.TrimSpace(about))
	}

	for _, load := range []func(string) (string, error){loadServicesCSV, loadServicesYAML} {
		section, err := load(dir)
		if err != nil {
			logger.Error("Error loading services", "dir", dir, "error", err)
			continue
		}
		if section != "" {
			parts = append(parts, "[SERVICES]\n"+section)
		}
	}

	logger.Info("Knowledge base loaded", "dir", dir, "sections", len(parts))
	return strings.Join(parts, "\n\n"), nil
}

func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(data), nil
}

func loadServicesCSV(dir string) (string, error) {
	raw, err := readOptional(filepath.Join(dir, ServicesCSVFile))
	if err != nil || raw == "" {
		return "", err
	}

	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", ServicesCSVFile, err)
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return "", fmt.Errorf("format %s: %w", ServicesCSVFile, err)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func loadServicesYAML(dir string) (string, error) {
	raw, err := readOptional(filepath.Join(dir, ServicesYAMLFile))
	if err != nil || raw == "" {
		return "", err
	}

	var doc struct {
		Services []Service `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", ServicesYAMLFile, err)
	}

	lines := make([]string, 0, len(doc.Services))
	for _, s := range doc.Services {
		line := "- " + s.Name
		if s.Description != "" {
			line += ": " + s.Description
		}
		if s.Price != "" {
			line += " (" + s.Price + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
