package exporter

import "time"

// Summary counts what happened while exporting one user
type Summary struct {
	Username string
	UserID   string
	Resolved bool

	Pages          int
	Posts          int
	AlreadyFetched int
	NoData         int
	NoMedia        int
	NoLink         int
	Unsupported    int
	Dispatched     int
	Failed         int
}

// Counters returns the summary as log fields
func (s *Summary) Counters() map[string]interface{} {
	return map[string]interface{}{
		"resolved":        s.Resolved,
		"pages":           s.Pages,
		"posts":           s.Posts,
		"already_fetched": s.AlreadyFetched,
		"no_data":         s.NoData,
		"no_media":        s.NoMedia,
		"no_link":         s.NoLink,
		"unsupported":     s.Unsupported,
		"dispatched":      s.Dispatched,
		"failed":          s.Failed,
	}
}

func (s *Summary) add(o *Summary) {
	s.Pages += o.Pages
	s.Posts += o.Posts
	s.AlreadyFetched += o.AlreadyFetched
	s.NoData += o.NoData
	s.NoMedia += o.NoMedia
	s.NoLink += o.NoLink
	s.Unsupported += o.Unsupported
	s.Dispatched += o.Dispatched
	s.Failed += o.Failed
}

// RunSummary aggregates a multi-user run
type RunSummary struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Users    []*Summary
	Totals   Summary
}

// Unresolved returns the usernames that were excluded from the run
func (r *RunSummary) Unresolved() []string {
	var names []string
	for _, u := range r.Users {
		if u != nil && !u.Resolved {
			names = append(names, u.Username)
		}
	}
	return names
}
