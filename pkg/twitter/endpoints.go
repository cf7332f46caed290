package twitter

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the root of the v2 REST API
	DefaultBaseURL = "https://api.twitter.com/2"

	// PaginationParam carries the continuation token on collection requests
	PaginationParam = "pagination_token"

	// MaxResults is the largest page size the own-posts endpoint accepts
	MaxResults = 100

	// MinResults is the smallest page size the own-posts endpoint accepts
	MinResults = 5
)

// Detail request fields: author and timestamp on the post, media urls and
// the author user as expansions.
const (
	detailTweetFields = "author_id,created_at"
	detailExpansions  = "attachments.media_keys,author_id,entities.mentions.username"
	detailMediaFields = "url"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,15}$`)

// IsValidUsername checks a username against the platform's rules
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// SanitizeUsername trims whitespace and a leading @
func SanitizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}

// UserByUsernameURL builds the lookup URL for a username
func UserByUsernameURL(baseURL, username string) string {
	return fmt.Sprintf("%s/users/by/username/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(username))
}

// LikedPostsEndpoint returns the collection endpoint and initial parameters of a user's liked posts
func LikedPostsEndpoint(baseURL, userID string) (string, url.Values) {
	return fmt.Sprintf("%s/users/%s/liked_tweets", strings.TrimRight(baseURL, "/"), url.PathEscape(userID)), url.Values{}
}

// OwnPostsEndpoint returns the collection endpoint and initial parameters of a user's own posts.
// maxResults outside the accepted range falls back to MaxResults.
// referenced_tweets must be requested for own-post filtering to see
// quote, reply and repost markers.
func OwnPostsEndpoint(baseURL, userID string, maxResults int, exclude []string) (string, url.Values) {
	if maxResults < MinResults || maxResults > MaxResults {
		maxResults = MaxResults
	}

	params := url.Values{}
	params.Set("expansions", "author_id")
	params.Set("tweet.fields", "referenced_tweets")
	params.Set("max_results", strconv.Itoa(maxResults))

	var kinds []string
	for _, k := range exclude {
		if k = strings.TrimSpace(k); k != "" {
			kinds = append(kinds, k)
		}
	}
	if len(kinds) > 0 {
		params.Set("exclude", strings.Join(kinds, ","))
	}

	return fmt.Sprintf("%s/users/%s/tweets", strings.TrimRight(baseURL, "/"), url.PathEscape(userID)), params
}

// PostDetailURL builds the expanded detail URL for one post
func PostDetailURL(baseURL, postID string) string {
	params := url.Values{}
	params.Set("tweet.fields", detailTweetFields)
	params.Set("expansions", detailExpansions)
	params.Set("media.fields", detailMediaFields)

	return fmt.Sprintf("%s/tweets/%s?%s", strings.TrimRight(baseURL, "/"), url.PathEscape(postID), params.Encode())
}

// WithParams appends encoded parameters to an endpoint
func WithParams(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}
