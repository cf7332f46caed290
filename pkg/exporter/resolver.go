package exporter

import (
	"context"
	"fmt"

	"uranus/pkg/errors"
	"uranus/pkg/logger"
	"uranus/pkg/pagination"
	"uranus/pkg/storage"
	"uranus/pkg/twitter"
)

// SkipReason explains why a post produced no artifacts
type SkipReason string

const (
	SkipNone    SkipReason = ""
	SkipNoData  SkipReason = "no-data"
	SkipNoMedia SkipReason = "no-media"
)

// ArtifactKind is the kind of file an artifact becomes
type ArtifactKind string

const (
	KindVideo ArtifactKind = "video"
	KindPhoto ArtifactKind = "photo"
)

// videoExtTemplate lets the video downloader choose the extension
const videoExtTemplate = "%(ext)s"

// Artifact is one file to retrieve for a post
type Artifact struct {
	Kind    ArtifactKind
	PostID  string
	Author  string
	Ordinal int

	// Name is the target filename, a template for videos
	Name string

	// Source is the photo URL or the video link
	Source string

	// CreatedAt is the post timestamp stamped onto photos
	CreatedAt string
}

// ResolvedPost is the classification of one post's media
type ResolvedPost struct {
	PostID    string
	Author    string
	CreatedAt string
	Text      string
	Link      string
	Remaining string

	Artifacts   []Artifact
	Unsupported []twitter.Media
	Skip        SkipReason

	// MissingLink is set when a video was attached but the text held no link
	MissingLink bool
}

// Skipped reports whether the post was skipped as a whole
func (r *ResolvedPost) Skipped() bool {
	return r.Skip != SkipNone
}

// Resolver fetches post detail and classifies attached media
type Resolver struct {
	client  pagination.Getter
	limiter pagination.Limiter
	baseURL string
	extract LinkExtractor
	logger  logger.Logger
}

// NewResolver creates a Resolver using LastToken for video links
func NewResolver(client pagination.Getter, limiter pagination.Limiter, baseURL string, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Resolver{
		client:  client,
		limiter: limiter,
		baseURL: baseURL,
		extract: LastToken,
		logger:  log,
	}
}

// SetLinkExtractor replaces the video link rule
func (r *Resolver) SetLinkExtractor(fn LinkExtractor) {
	if fn != nil {
		r.extract = fn
	}
}

// Resolve performs the detail request for postID and classifies its media.
// Every response received is shown to the limiter before returning. Only
// fatal errors are returned; everything else ends in a skip.
func (r *Resolver) Resolve(ctx context.Context, postID string) (*ResolvedPost, error) {
	log := r.logger.WithField("post_id", postID)
	resp, err := r.client.Get(ctx, twitter.PostDetailURL(r.baseURL, postID))
	if errors.IsFatal(err) {
		return nil, err
	}

	resolved := r.classify(postID, resp, err, log)

	if resp != nil {
		if err := r.limiter.Observe(ctx, resp.Header); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func (r *Resolver) classify(postID string, resp *twitter.Response, reqErr error, log logger.Logger) *ResolvedPost {
	resolved := &ResolvedPost{PostID: postID}

	if resp == nil {
		log.WithError(reqErr).Error("Post detail request failed")
		resolved.Skip = SkipNoData
		return resolved
	}

	env, err := twitter.DecodeEnvelope(resp)
	switch {
	case err != nil:
		log.WithError(err).Error("Post detail is not a valid envelope")
		resolved.Skip = SkipNoData
		return resolved
	case env.HasErrors():
		log.WarnWithFields("Post detail carries errors", map[string]interface{}{
			"title":  env.Errors[0].Title,
			"detail": env.Errors[0].Detail,
		})
		resolved.Skip = SkipNoData
		return resolved
	case !env.HasData() || env.Includes == nil:
		log.Warn("Post detail has no expansion data")
		resolved.Skip = SkipNoData
		return resolved
	}

	post, err := env.Post()
	if err != nil {
		log.WithError(err).Error("Post detail data is not a post")
		resolved.Skip = SkipNoData
		return resolved
	}

	resolved.Author = env.AuthorUsername(post.AuthorID)
	resolved.CreatedAt = post.CreatedAt
	resolved.Text = post.Text

	media := env.Media()
	if len(media) == 0 {
		log.Debug("Post has no media")
		resolved.Skip = SkipNoMedia
		return resolved
	}

	hasVideo := false
	for i, m := range media {
		switch m.Type {
		case twitter.MediaTypeVideo:
			if hasVideo {
				log.DebugWithFields("Ignoring additional video", map[string]interface{}{"media_key": m.MediaKey})
				continue
			}
			hasVideo = true
			resolved.Link, resolved.Remaining = r.extract(post.Text)
			if resolved.Link == "" {
				log.Warn("Video post has no link in its text")
				resolved.MissingLink = true
				continue
			}
			resolved.Artifacts = append(resolved.Artifacts, Artifact{
				Kind:   KindVideo,
				PostID: postID,
				Author: resolved.Author,
				Name:   storage.ArtifactName(resolved.Author, postID, 0, videoExtTemplate),
				Source: resolved.Link,
			})
		case twitter.MediaTypePhoto:
			ordinal := i + 1
			if m.URL == "" {
				log.WarnWithFields("Photo without url", map[string]interface{}{"ordinal": ordinal})
				continue
			}
			resolved.Artifacts = append(resolved.Artifacts, Artifact{
				Kind:      KindPhoto,
				PostID:    postID,
				Author:    resolved.Author,
				Ordinal:   ordinal,
				Name:      storage.ArtifactName(resolved.Author, postID, ordinal, "jpg"),
				Source:    m.URL,
				CreatedAt: post.CreatedAt,
			})
		default:
			unsupported := errors.New(errors.ErrorTypeUnsupported, fmt.Sprintf("media type %q is not handled", m.Type))
			log.WithError(unsupported).WarnWithFields("Skipping unsupported media", map[string]interface{}{
				"media_key":  m.MediaKey,
				"media_type": m.Type,
			})
			resolved.Unsupported = append(resolved.Unsupported, m)
		}
	}

	return resolved
}
