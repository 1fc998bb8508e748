package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/shajanthanx/life-v2-sub002/internal/domain"
	"github.com/shajanthanx/life-v2-sub002/internal/ports"
)

// Export formats.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatYAML     = "yaml"
)

// ExportService writes habit records in portable formats.
type ExportService struct {
	storage ports.Storage
}

// NewExportService creates a new export service.
func NewExportService(storage ports.Storage) *ExportService {
	return &ExportService{storage: storage}
}

type exportHabit struct {
	Name      string        `yaml:"name"`
	Category  string        `yaml:"category"`
	Frequency string        `yaml:"frequency"`
	Active    bool          `yaml:"active"`
	Records   []exportEntry `yaml:"records"`
}

type exportEntry struct {
	Day       domain.Day `yaml:"day"`
	Completed bool       `yaml:"completed"`
	Notes     string     `yaml:"notes,omitempty"`
}

type exportDoc struct {
	From   domain.Day    `yaml:"from"`
	To     domain.Day    `yaml:"to"`
	Habits []exportHabit `yaml:"habits"`
}

// Export writes every record within w in the given format.
func (s *ExportService) Export(ctx context.Context, out io.Writer, format string, w domain.Window) error {
	doc, err := s.collect(ctx, w)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return writeCSV(out, doc)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown, "":
		return writeMarkdown(out, doc)
	default:
		return fmt.Errorf("unknown export format %q: must be csv, md or yaml", format)
	}
}

func (s *ExportService) collect(ctx context.Context, w domain.Window) (*exportDoc, error) {
	habits, err := s.storage.Habits().FindAll(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	records, err := s.storage.Records().FindRange(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	byHabit := make(map[string][]exportEntry)
	for _, r := range records {
		byHabit[r.HabitID] = append(byHabit[r.HabitID], exportEntry{Day: r.Date, Completed: r.IsCompleted, Notes: r.Notes})
	}

	doc := &exportDoc{From: w.Start, To: w.End}
	for _, h := range habits {
		entries := byHabit[h.ID]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Day.Before(entries[j].Day) })
		doc.Habits = append(doc.Habits, exportHabit{
			Name:      h.Name,
			Category:  h.Category,
			Frequency: string(h.Frequency),
			Active:    h.IsActive,
			Records:   entries,
		})
	}
	return doc, nil
}

func writeCSV(out io.Writer, doc *exportDoc) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"date", "habit", "category", "frequency", "completed", "notes"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, h := range doc.Habits {
		for _, r := range h.Records {
			row := []string{
				r.Day.String(),
				h.Name,
				h.Category,
				h.Frequency,
				strconv.FormatBool(r.Completed),
				r.Notes,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	return w.Error()
}

func writeMarkdown(out io.Writer, doc *exportDoc) error {
	if _, err := fmt.Fprintf(out, "# Habit Export\n\n%s to %s\n\n", doc.From, doc.To); err != nil {
		return err
	}
	for _, h := range doc.Habits {
		done := 0
		for _, r := range h.Records {
			if r.Completed {
				done++
			}
		}
		fmt.Fprintf(out, "## %s\n", h.Name)
		fmt.Fprintf(out, "- Category: %s\n", h.Category)
		fmt.Fprintf(out, "- Frequency: %s\n", h.Frequency)
		fmt.Fprintf(out, "- Completed days: %d\n", done)
		for _, r := range h.Records {
			mark := " "
			if r.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("  - [%s] %s", mark, r.Day)
			if r.Notes != "" {
				line += " " + r.Notes
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}
	return nil
}
