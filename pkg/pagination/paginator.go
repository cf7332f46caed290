package pagination

import (
	"context"
	"iter"
	"net/http"
	"net/url"

	"uranus/pkg/errors"
	"uranus/pkg/logger"
	"uranus/pkg/twitter"
)

// Getter issues one authenticated GET request
type Getter interface {
	Get(ctx context.Context, url string) (*twitter.Response, error)
}

// Limiter inspects a response and blocks when the quota is exhausted
type Limiter interface {
	Observe(ctx context.Context, h http.Header) error
}

// Page is one round trip over a collection endpoint
type Page struct {
	// Number is 1-based in request order
	Number int

	Posts     []twitter.PostStub
	NextToken string

	// HasData is false when the envelope carried no data member
	HasData bool

	// Malformed marks a page whose response could not be read as an envelope
	Malformed bool
}

// Last reports whether no further page follows
func (p *Page) Last() bool {
	return p.NextToken == ""
}

// Paginator walks cursor-based collections one request at a time
type Paginator struct {
	client  Getter
	limiter Limiter
	logger  logger.Logger
}

// New creates a Paginator
func New(client Getter, limiter Limiter, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{
		client:  client,
		limiter: limiter,
		logger:  log,
	}
}

// Pages returns a lazy, non-restartable sequence of pages from endpoint.
//
// The first request carries params as given. Every following request adds
// the continuation token of the page before it. The page without a token is
// yielded and then the sequence ends. A page that cannot be read yields an
// empty page; the walk goes on only if a token could still be recovered.
//
// The limiter sees every response received, last page included, before the
// page is handed to the caller.
// Fatal errors (rejected credentials, a rate limit wait that cannot be
// honoured, cancellation) are yielded once as the error and end the walk.
func (p *Paginator) Pages(ctx context.Context, endpoint string, params url.Values) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		token := ""
		for number := 1; ; number++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			query := url.Values{}
			for k, v := range params {
				query[k] = append([]string(nil), v...)
			}
			if token != "" {
				query.Set(twitter.PaginationParam, token)
			}
			pageURL := twitter.WithParams(endpoint, query)

			p.logger.TraceWithFields("Requesting page", map[string]interface{}{
				"page": number,
				"url":  pageURL,
			})

			resp, err := p.client.Get(ctx, pageURL)
			if errors.IsFatal(err) {
				yield(nil, err)
				return
			}

			page := p.readPage(number, resp, err)
			if resp != nil {
				if err := p.limiter.Observe(ctx, resp.Header); err != nil {
					yield(nil, err)
					return
				}
			}
			if !yield(page, nil) || page.Last() {
				return
			}
			token = page.NextToken
		}
	}
}

// readPage turns one response into a Page, never failing
func (p *Paginator) readPage(number int, resp *twitter.Response, reqErr error) *Page {
	page := &Page{Number: number}

	if resp == nil {
		p.logger.WithError(reqErr).ErrorWithFields("Page request failed", map[string]interface{}{"page": number})
		page.Malformed = true
		return page
	}
	if reqErr != nil {
		p.logger.WithError(reqErr).WarnWithFields("Page request returned an error status", map[string]interface{}{
			"page":   number,
			"status": resp.StatusCode,
		})
	}

	env, err := twitter.DecodeEnvelope(resp)
	if err != nil {
		p.logger.WithError(err).ErrorWithFields("Page response is not a valid envelope", map[string]interface{}{"page": number})
		page.Malformed = true
		return page
	}

	page.NextToken = env.NextToken()
	page.HasData = env.HasData()

	posts, err := env.PostStubs()
	if err != nil {
		p.logger.WithError(err).ErrorWithFields("Page data is not a list of posts", map[string]interface{}{
			"page":       number,
			"next_token": page.NextToken,
		})
		page.Malformed = true
		return page
	}
	page.Posts = posts

	p.logger.InfoWithFields("Fetched page", map[string]interface{}{
		"page":     number,
		"posts":    len(posts),
		"has_next": !page.Last(),
	})
	return page
}
