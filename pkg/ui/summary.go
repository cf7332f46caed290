package ui

import (
	"fmt"
	"strings"

	"uranus/pkg/exporter"
)

// PrintRunSummary prints one line per user and the run totals
func PrintRunSummary(s *exporter.RunSummary) {
	emit(false, "\n%s %s\n", Magenta("Run"), Dim(s.RunID))
	for _, u := range s.Users {
		if u == nil {
			continue
		}
		if !u.Resolved {
			emit(false, "  %-16s %s\n", u.Username, Yellow("not resolved"))
			continue
		}
		emit(false, "  %-16s %s\n", u.Username, formatCounters(u))
	}
	emit(false, "  %-16s %s\n", Cyan("total"), formatCounters(&s.Totals))
	emit(false, "  %-16s %s\n", Cyan("duration"), s.Finished.Sub(s.Started).Round(1e6))
}

// SummaryLine condenses a run into one sentence for notifications
func SummaryLine(s *exporter.RunSummary) string {
	msg := fmt.Sprintf("%d users, %d downloads, %d failed", len(s.Users), s.Totals.Dispatched, s.Totals.Failed)
	if unresolved := s.Unresolved(); len(unresolved) > 0 {
		msg += fmt.Sprintf(", unresolved: %s", strings.Join(unresolved, ", "))
	}
	return msg
}

func formatCounters(u *exporter.Summary) string {
	return fmt.Sprintf("pages=%d posts=%d skipped=%d no-data=%d no-media=%d no-link=%d unsupported=%d %s %s",
		u.Pages, u.Posts, u.AlreadyFetched, u.NoData, u.NoMedia, u.NoLink, u.Unsupported,
		Green(fmt.Sprintf("downloaded=%d", u.Dispatched)),
		Red(fmt.Sprintf("failed=%d", u.Failed)))
}
