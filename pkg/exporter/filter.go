package exporter

import (
	"uranus/pkg/config"
	"uranus/pkg/logger"
	"uranus/pkg/pagination"
)

// Filter returns the ids of page eligible for media download, in page order.
// In own mode posts that reference another post are dropped. A page without
// data is anomalous and yields nothing.
func Filter(page *pagination.Page, mode string, log logger.Logger) []string {
	if !page.HasData {
		log.ErrorWithFields("Page has no data", map[string]interface{}{
			"page":      page.Number,
			"malformed": page.Malformed,
		})
		return nil
	}

	ids := make([]string, 0, len(page.Posts))
	for _, post := range page.Posts {
		if post.ID == "" {
			log.WarnWithFields("Post without id in page", map[string]interface{}{"page": page.Number})
			continue
		}
		if mode == config.ModeOwn && post.IsReference() {
			log.TraceWithFields("Skipping referencing post", map[string]interface{}{
				"post_id":   post.ID,
				"reference": post.ReferencedTweets[0].Type,
			})
			continue
		}
		ids = append(ids, post.ID)
	}
	return ids
}
