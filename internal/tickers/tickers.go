package tickers

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadFromFile loads a ticker list: one symbol per line, upper-cased and
// trimmed, with blank lines and #-comments skipped. Duplicates are removed
// preserving first-seen order.
func ReadFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickers file: %w", err)
	}
	defer f.Close()

	var list []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		list = append(list, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tickers file: %w", err)
	}
	return list, nil
}
