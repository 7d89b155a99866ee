package faq

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sathi-support/backend/internal/match"
)

//go:embed faq.yaml
var defaultTableYAML []byte

// Entry is a canned support question with its answer and trigger keywords.
type Entry struct {
	Question       string   `yaml:"question" json:"question"`
	Answer         string   `yaml:"answer" json:"answer"`
	Keywords       []string `yaml:"keywords" json:"keywords"`
	BaseConfidence float64  `yaml:"base_confidence" json:"base_confidence"`
}

// Table is an ordered, read-only list of FAQ entries. Declaration order is
// preserved and used to break score ties.
type Table struct {
	entries []Entry
}

// NewTable validates and normalizes the supplied entries. The slice is copied so
// later changes by the caller do not leak into the table.
func NewTable(entries []Entry) (*Table, error) {
	out := make([]Entry, 0, len(entries))
	for i, entry := range entries {
		entry.Question = strings.TrimSpace(entry.Question)
		entry.Answer = strings.TrimSpace(entry.Answer)
		entry.Keywords = match.NormalizeKeywords(entry.Keywords)
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("faq entry %d: %w", i, err)
		}
		out = append(out, entry)
	}
	return &Table{entries: out}, nil
}

// DefaultTable returns the table compiled into the binary.
func DefaultTable() (*Table, error) {
	return parseTable(defaultTableYAML)
}

// LoadTable reads a YAML table from path. An empty path yields the default table.
func LoadTable(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read faq table: %w", err)
	}
	return parseTable(data)
}

func parseTable(data []byte) (*Table, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal faq table: %w", err)
	}
	return NewTable(entries)
}

func validateEntry(entry Entry) error {
	if entry.Question == "" {
		return errors.New("question is empty")
	}
	if entry.Answer == "" {
		return errors.New("answer is empty")
	}
	if len(entry.Keywords) == 0 {
		return errors.New("keywords are empty")
	}
	if entry.BaseConfidence <= 0 || entry.BaseConfidence > 1 {
		return fmt.Errorf("base confidence %.2f outside (0,1]", entry.BaseConfidence)
	}
	return nil
}

// Entries returns a copy of the table entries in declaration order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	for i, entry := range t.entries {
		entry.Keywords = append([]string(nil), entry.Keywords...)
		out[i] = entry
	}
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
