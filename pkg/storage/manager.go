package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Manager owns one destination directory. It never writes artifacts itself;
// the external downloader appends to the directory.
type Manager struct {
	outputDir string
}

// NewManager creates the destination directory if needed
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{outputDir: outputDir}, nil
}

// OutputDir returns the destination directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Snapshot lists the regular files currently in the destination directory
func (m *Manager) Snapshot() (*Snapshot, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return NewSnapshot(names), nil
}

// Snapshot is a listing taken once before a user's crawl. It is not refreshed,
// so files created later by another process are not seen.
type Snapshot struct {
	names   []string
	takenAt time.Time
}

// NewSnapshot builds a snapshot from known names
func NewSnapshot(names []string) *Snapshot {
	return &Snapshot{names: names, takenAt: time.Now()}
}

// Contains reports whether any listed file belongs to postID
func (s *Snapshot) Contains(postID string) bool {
	return AlreadyFetched(s.names, postID)
}

// Len returns the number of listed files
func (s *Snapshot) Len() int {
	return len(s.names)
}

// TakenAt returns when the listing was made
func (s *Snapshot) TakenAt() time.Time {
	return s.takenAt
}

// AlreadyFetched reports whether any existing filename contains postID.
// The match is per post: one artifact of a post marks the whole post as done.
// An empty postID never matches.
func AlreadyFetched(existingNames []string, postID string) bool {
	if postID == "" {
		return false
	}
	for _, name := range existingNames {
		if strings.Contains(name, postID) {
			return true
		}
	}
	return false
}

// ArtifactName builds <author>_<postID>[_<ordinal>].<ext>.
// An ordinal of zero is omitted.
func ArtifactName(author, postID string, ordinal int, ext string) string {
	var b strings.Builder
	b.WriteString(author)
	b.WriteByte('_')
	b.WriteString(postID)
	if ordinal > 0 {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(ordinal))
	}
	if ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}

// UserDir returns the destination directory for a user
func UserDir(baseDir, username string, perUser bool) string {
	if perUser {
		return filepath.Join(baseDir, username)
	}
	return baseDir
}
