// Package userlist reads the newline-delimited username file given to the CLI.
package userlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read loads usernames from path
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open username list: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads one username per line. Surrounding whitespace and a leading @
// are stripped. Blank lines and lines starting with # are skipped. Order is
// kept and repeated names are dropped.
func Parse(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name := strings.TrimPrefix(line, "@")
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read username list: %w", err)
	}
	return names, nil
}
