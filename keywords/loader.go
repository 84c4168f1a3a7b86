// Package keywords loads search keywords from CSV files.
package keywords

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads keywords from the first column of a CSV file. Keywords are
// trimmed, lowercased, and deduplicated while preserving first-seen
// order; empty cells are skipped. A limit > 0 caps the number of
// keywords returned.
func Load(path string, limit int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	seen := make(map[string]struct{})
	var keywords []string

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read keywords file: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		keyword := strings.ToLower(strings.TrimSpace(row[0]))
		if keyword == "" {
			continue
		}
		if _, ok := seen[keyword]; ok {
			continue
		}
		seen[keyword] = struct{}{}
		keywords = append(keywords, keyword)

		if limit > 0 && len(keywords) >= limit {
			break
		}
	}

	return keywords, nil
}
