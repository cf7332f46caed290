package exporter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uranus/pkg/errors"
	"uranus/pkg/logger"
	"uranus/pkg/twitter"
)

// stubGetter answers every request with the same response
type stubGetter struct {
	resp *twitter.Response
	err  error
	urls []string
}

func (s *stubGetter) Get(ctx context.Context, u string) (*twitter.Response, error) {
	s.urls = append(s.urls, u)
	return s.resp, s.err
}

type countingLimiter struct {
	calls int
	err   error
}

func (c *countingLimiter) Observe(ctx context.Context, h http.Header) error {
	c.calls++
	return c.err
}

func body(s string) *twitter.Response {
	return &twitter.Response{StatusCode: 200, Header: http.Header{}, Body: []byte(s)}
}

func detailJSON(postID, text, media string) string {
	return fmt.Sprintf(`{
		"data": {"id": %q, "author_id": "42", "text": %q, "created_at": "2023-05-01T10:00:00.000Z",
		         "attachments": {"media_keys": ["k1","k2"]}},
		"includes": {"media": [%s], "users": [{"id": "42", "username": "alice", "name": "Alice"}]}
	}`, postID, text, media)
}

func newTestResolver(resp *twitter.Response, err error) (*Resolver, *stubGetter, *countingLimiter, *logger.TestLogger) {
	getter := &stubGetter{resp: resp, err: err}
	limiter := &countingLimiter{}
	log := logger.NewTestLogger()
	return NewResolver(getter, limiter, "https://api.test/2", log), getter, limiter, log
}

func TestResolveTwoPhotos(t *testing.T) {
	r, getter, limiter, _ := newTestResolver(body(detailJSON("77", "two pics",
		`{"media_key":"k1","type":"photo","url":"u1"},{"media_key":"k2","type":"photo","url":"u2"}`)), nil)

	res, err := r.Resolve(context.Background(), "77")
	require.NoError(t, err)
	assert.False(t, res.Skipped())
	assert.Equal(t, "alice", res.Author)
	require.Len(t, res.Artifacts, 2)

	assert.Equal(t, Artifact{Kind: KindPhoto, PostID: "77", Author: "alice", Ordinal: 1,
		Name: "alice_77_1.jpg", Source: "u1", CreatedAt: "2023-05-01T10:00:00.000Z"}, res.Artifacts[0])
	assert.Equal(t, 2, res.Artifacts[1].Ordinal)
	assert.Equal(t, "alice_77_2.jpg", res.Artifacts[1].Name)
	assert.Equal(t, 1, limiter.calls)

	u, err := url.Parse(getter.urls[0])
	require.NoError(t, err)
	assert.Equal(t, "/2/tweets/77", u.Path)
	assert.Equal(t, "url", u.Query().Get("media.fields"))
}

func TestResolveVideo(t *testing.T) {
	r, _, _, _ := newTestResolver(body(detailJSON("88", "watch this https://t.co/vid",
		`{"media_key":"k1","type":"video"},{"media_key":"k2","type":"video"}`)), nil)

	res, err := r.Resolve(context.Background(), "88")
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, KindVideo, res.Artifacts[0].Kind)
	assert.Equal(t, "alice_88.%(ext)s", res.Artifacts[0].Name)
	assert.Equal(t, "https://t.co/vid", res.Artifacts[0].Source)
	assert.Equal(t, "watch this", res.Remaining)
}

func TestResolveVideoWithoutLink(t *testing.T) {
	r, _, _, log := newTestResolver(body(detailJSON("89", "",
		`{"media_key":"k1","type":"video"}`)), nil)

	res, err := r.Resolve(context.Background(), "89")
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.True(t, res.MissingLink)
	assert.True(t, log.HasMessage("Video post has no link in its text"))
}

func TestResolveCustomLinkExtractor(t *testing.T) {
	r, _, _, _ := newTestResolver(body(detailJSON("88", "https://t.co/first trailing words",
		`{"media_key":"k1","type":"video"}`)), nil)
	r.SetLinkExtractor(func(text string) (string, string) {
		fields := strings.Fields(text)
		return fields[0], strings.Join(fields[1:], " ")
	})

	res, err := r.Resolve(context.Background(), "88")
	require.NoError(t, err)
	assert.Equal(t, "https://t.co/first", res.Artifacts[0].Source)
}

func TestResolveUnsupported(t *testing.T) {
	r, _, _, log := newTestResolver(body(detailJSON("99", "gif",
		`{"media_key":"k1","type":"animated_gif"}`)), nil)

	res, err := r.Resolve(context.Background(), "99")
	require.NoError(t, err)
	assert.False(t, res.Skipped())
	assert.Empty(t, res.Artifacts)
	require.Len(t, res.Unsupported, 1)
	assert.Equal(t, "animated_gif", res.Unsupported[0].Type)

	var unsupported int
	for _, m := range log.GetMessages() {
		if strings.Contains(m.Message, "unsupported") {
			unsupported++
			assert.Equal(t, errors.ErrorTypeUnsupported, errors.TypeOf(m.Error))
		}
	}
	assert.Equal(t, 1, unsupported)
}

func TestResolveSkips(t *testing.T) {
	tests := []struct {
		name string
		resp *twitter.Response
		err  error
		want SkipReason
	}{
		{"errors array", body(`{"errors":[{"title":"Not Found Error","detail":"gone"}]}`), nil, SkipNoData},
		{"errors alongside data", body(`{"data":{"id":"1"},"includes":{"media":[{"type":"photo","url":"u"}]},"errors":[{"title":"x"}]}`), nil, SkipNoData},
		{"no includes", body(`{"data":{"id":"1","text":"plain"}}`), nil, SkipNoData},
		{"not json", body(`oops`), nil, SkipNoData},
		{"transport failure", nil, errors.Wrap(errors.ErrorTypeNetwork, "request failed", assert.AnError), SkipNoData},
		{"users only", body(`{"data":{"id":"1","author_id":"42"},"includes":{"users":[{"id":"42","username":"alice"}]}}`), nil, SkipNoMedia},
		{"empty media", body(`{"data":{"id":"1"},"includes":{"media":[]}}`), nil, SkipNoMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, limiter, _ := newTestResolver(tt.resp, tt.err)

			res, err := r.Resolve(context.Background(), "1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Skip)
			assert.Empty(t, res.Artifacts)
			if tt.resp != nil {
				assert.Equal(t, 1, limiter.calls)
			} else {
				assert.Zero(t, limiter.calls)
			}
		})
	}
}

func TestResolveFatalErrors(t *testing.T) {
	r, _, _, _ := newTestResolver(&twitter.Response{StatusCode: 401, Header: http.Header{}},
		&errors.Error{Type: errors.ErrorTypeAuth, Code: 401})
	_, err := r.Resolve(context.Background(), "1")
	assert.True(t, errors.IsFatal(err))

	r, _, limiter, _ := newTestResolver(body(detailJSON("1", "x", `{"type":"photo","url":"u"}`)), nil)
	limiter.err = errors.New(errors.ErrorTypeRateLimit, "overflow")
	_, err = r.Resolve(context.Background(), "1")
	assert.True(t, errors.IsFatal(err))
}
