package exporter

import (
	"context"
	"fmt"
	"net/url"

	"uranus/pkg/config"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
	"uranus/pkg/pagination"
	"uranus/pkg/storage"
	"uranus/pkg/twitter"
)

// ExportUser runs the full pipeline for one username.
//
// A username that is invalid or does not resolve ends the user with
// Resolved=false and no error. The returned error is non-nil for fatal
// failures, cancellation, or a destination directory that cannot be used.
func (e *Exporter) ExportUser(ctx context.Context, username string) (*Summary, error) {
	username = twitter.SanitizeUsername(username)
	summary := &Summary{Username: username}
	log := e.logger.WithField("username", username)

	if !twitter.IsValidUsername(username) {
		log.Warn("Invalid username, skipping")
		return summary, nil
	}

	log.Info("Resolving user")
	user, header, err := e.api.LookupUser(ctx, username)
	if header != nil {
		if lerr := e.limiter.Observe(ctx, header); lerr != nil {
			return summary, lerr
		}
	}
	if err != nil {
		if errors.IsFatal(err) || isCancellation(err) {
			return summary, err
		}
		log.WithError(err).Warn("User did not resolve, skipping")
		return summary, nil
	}
	summary.Resolved = true
	summary.UserID = user.ID
	log = log.WithField("user_id", user.ID)

	dir := storage.UserDir(e.cfg.Output.BaseDirectory, username, e.cfg.Output.CreateUserFolders)
	store, err := storage.NewManager(dir)
	if err != nil {
		return summary, fmt.Errorf("user %s: %w", username, err)
	}
	snapshot, err := store.Snapshot()
	if err != nil {
		return summary, fmt.Errorf("user %s: %w", username, err)
	}
	log.DebugWithFields("Destination listed", map[string]interface{}{
		"dir":   dir,
		"files": snapshot.Len(),
	})

	paginator := pagination.New(e.api, e.limiter, log)
	resolver := NewResolver(e.api, e.limiter, e.api.BaseURL(), log)
	resolver.SetLinkExtractor(e.extract)

	endpoint, params := e.collection(user.ID)
	for page, err := range paginator.Pages(ctx, endpoint, params) {
		if err != nil {
			return summary, err
		}
		summary.Pages++

		for _, postID := range Filter(page, e.cfg.Export.Mode, log) {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if err := e.exportPost(ctx, postID, dir, snapshot, resolver, summary, log); err != nil {
				return summary, err
			}
		}
	}

	logger.LogUserSummary(log, username, summary.Counters())
	return summary, nil
}

// exportPost handles one post id: dedup, resolve, dispatch
func (e *Exporter) exportPost(ctx context.Context, postID, dir string, snapshot *storage.Snapshot,
	resolver *Resolver, summary *Summary, log logger.Logger) error {
	summary.Posts++

	if snapshot.Contains(postID) {
		summary.AlreadyFetched++
		log.TraceWithFields("Post already fetched", map[string]interface{}{"post_id": postID})
		return nil
	}

	resolved, err := resolver.Resolve(ctx, postID)
	if err != nil {
		return err
	}
	summary.Unsupported += len(resolved.Unsupported)
	if resolved.MissingLink {
		summary.NoLink++
	}

	switch resolved.Skip {
	case SkipNoData:
		summary.NoData++
		return nil
	case SkipNoMedia:
		summary.NoMedia++
		return nil
	}

	for _, artifact := range resolved.Artifacts {
		if err := e.dispatcher.Dispatch(ctx, dir, artifact); err != nil {
			summary.Failed++
			log.WithError(err).ErrorWithFields("Download failed", map[string]interface{}{
				"post_id":  postID,
				"artifact": artifact.Name,
			})
			continue
		}
		summary.Dispatched++
	}
	return nil
}

// collection picks the endpoint for the configured mode
func (e *Exporter) collection(userID string) (string, url.Values) {
	if e.cfg.Export.Mode == config.ModeLiked {
		return twitter.LikedPostsEndpoint(e.api.BaseURL(), userID)
	}
	return twitter.OwnPostsEndpoint(e.api.BaseURL(), userID, e.cfg.Export.MaxResults, e.cfg.Export.Exclude)
}
