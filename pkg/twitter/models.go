package twitter

import (
	"bytes"
	"encoding/json"
)

// Envelope is the top-level shape shared by every v2 response
type Envelope struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Includes *Includes       `json:"includes,omitempty"`
	Meta     *Meta           `json:"meta,omitempty"`
	Errors   []APIError      `json:"errors,omitempty"`
}

// Includes carries the expansions requested alongside the primary resource
type Includes struct {
	Media []Media `json:"media,omitempty"`
	Users []User  `json:"users,omitempty"`
}

// Meta carries the pagination state of a collection response
type Meta struct {
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a per-item problem reported inside an otherwise successful response
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
	Value  string `json:"value,omitempty"`
}

// User is a platform account
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// PostStub is the post shape returned inside collection pages
type PostStub struct {
	ID               string            `json:"id"`
	Text             string            `json:"text,omitempty"`
	AuthorID         string            `json:"author_id,omitempty"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
}

// IsReference reports whether the post quotes, replies to or reposts another post
func (p PostStub) IsReference() bool {
	return len(p.ReferencedTweets) > 0
}

// ReferencedTweet marks a post as quoting, replying to or reposting another
type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Post is the expanded detail of a single post
type Post struct {
	ID          string       `json:"id"`
	AuthorID    string       `json:"author_id"`
	Text        string       `json:"text"`
	CreatedAt   string       `json:"created_at"`
	Attachments *Attachments `json:"attachments,omitempty"`
}

// Attachments lists the media keys of a post
type Attachments struct {
	MediaKeys []string `json:"media_keys,omitempty"`
}

// Media kinds declared by the API
const (
	MediaTypePhoto       = "photo"
	MediaTypeVideo       = "video"
	MediaTypeAnimatedGIF = "animated_gif"
)

// Media is an attachment expansion
type Media struct {
	MediaKey string `json:"media_key"`
	Type     string `json:"type"`
	URL      string `json:"url,omitempty"`
}

// HasData reports whether the envelope carries a non-null data member
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// HasErrors reports whether the server flagged any item as failed
func (e *Envelope) HasErrors() bool {
	return len(e.Errors) > 0
}

// NextToken returns the continuation token, empty on the last page
func (e *Envelope) NextToken() string {
	if e.Meta == nil {
		return ""
	}
	return e.Meta.NextToken
}

// PostStubs decodes data as a page of posts
func (e *Envelope) PostStubs() ([]PostStub, error) {
	var posts []PostStub
	if !e.HasData() {
		return posts, nil
	}
	if err := json.Unmarshal(e.Data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post decodes data as a single post
func (e *Envelope) Post() (*Post, error) {
	var post Post
	if err := json.Unmarshal(e.Data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// User decodes data as a single user
func (e *Envelope) User() (*User, error) {
	var user User
	if err := json.Unmarshal(e.Data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Media returns the media expansion, nil when absent
func (e *Envelope) Media() []Media {
	if e.Includes == nil {
		return nil
	}
	return e.Includes.Media
}

// AuthorUsername picks the username of the user with the given id from the
// users expansion, falling back to the first user and then to the id itself.
func (e *Envelope) AuthorUsername(authorID string) string {
	if e.Includes != nil {
		for _, u := range e.Includes.Users {
			if u.ID == authorID && u.Username != "" {
				return u.Username
			}
		}
		if len(e.Includes.Users) > 0 && e.Includes.Users[0].Username != "" {
			return e.Includes.Users[0].Username
		}
	}
	return authorID
}
