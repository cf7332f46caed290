package twitter

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints(t *testing.T) {
	base := "https://api.example.test/2/"

	assert.Equal(t, "https://api.example.test/2/users/by/username/alice", UserByUsernameURL(base, "alice"))

	liked, params := LikedPostsEndpoint(base, "42")
	assert.Equal(t, "https://api.example.test/2/users/42/liked_tweets", liked)
	assert.Empty(t, params)

	own, params := OwnPostsEndpoint(base, "42", 100, nil)
	assert.Equal(t, "https://api.example.test/2/users/42/tweets", own)
	assert.Equal(t, "author_id", params.Get("expansions"))
	assert.Equal(t, "referenced_tweets", params.Get("tweet.fields"))
	assert.Equal(t, "100", params.Get("max_results"))
	assert.False(t, params.Has("exclude"))

	_, params = OwnPostsEndpoint(base, "42", 1000, []string{"retweets", " ", "replies"})
	assert.Equal(t, "100", params.Get("max_results"))
	assert.Equal(t, "retweets,replies", params.Get("exclude"))
}

func TestPostDetailURL(t *testing.T) {
	u, err := url.Parse(PostDetailURL(DefaultBaseURL, "1234"))
	require.NoError(t, err)

	assert.Equal(t, "/2/tweets/1234", u.Path)
	q := u.Query()
	assert.Equal(t, "author_id,created_at", q.Get("tweet.fields"))
	assert.Equal(t, "attachments.media_keys,author_id,entities.mentions.username", q.Get("expansions"))
	assert.Equal(t, "url", q.Get("media.fields"))
}

func TestWithParams(t *testing.T) {
	assert.Equal(t, "https://x/y", WithParams("https://x/y", nil))
	assert.Equal(t, "https://x/y?pagination_token=abc", WithParams("https://x/y", url.Values{PaginationParam: {"abc"}}))
}

func TestUsernames(t *testing.T) {
	tests := []struct {
		raw   string
		clean string
		valid bool
	}{
		{"alice", "alice", true},
		{"  @alice_99 ", "alice_99", true},
		{"", "", false},
		{"with space", "with space", false},
		{"abcdefghijklmnop", "abcdefghijklmnop", false},
		{"dash-name", "dash-name", false},
	}

	for _, tt := range tests {
		clean := SanitizeUsername(tt.raw)
		assert.Equal(t, tt.clean, clean)
		assert.Equal(t, tt.valid, IsValidUsername(clean), tt.raw)
	}
}

func TestEnvelopeHelpers(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{
		"data": [{"id":"1"},{"id":"2","referenced_tweets":[{"type":"quoted","id":"9"}]}],
		"meta": {"result_count": 2, "next_token": "abc"}
	}`), &env))

	assert.True(t, env.HasData())
	assert.Equal(t, "abc", env.NextToken())
	posts, err := env.PostStubs()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.False(t, posts[0].IsReference())
	assert.True(t, posts[1].IsReference())

	var empty Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"data":null,"meta":{"result_count":0}}`), &empty))
	assert.False(t, empty.HasData())
	assert.Empty(t, empty.NextToken())
}

func TestAuthorUsername(t *testing.T) {
	env := Envelope{Includes: &Includes{Users: []User{
		{ID: "7", Username: "mentioned"},
		{ID: "42", Username: "alice"},
	}}}
	assert.Equal(t, "alice", env.AuthorUsername("42"))
	assert.Equal(t, "mentioned", env.AuthorUsername("99"))
	assert.Equal(t, "42", (&Envelope{}).AuthorUsername("42"))
}
