package snoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrs "github.com/gosnoo/snoo/pkg/errors"
	"github.com/gosnoo/snoo/pkg/types"
	"github.com/gosnoo/snoo/pkg/validation"
)

// ErrNoMorePosts is returned by PostFeed.Next when the feed is exhausted:
// either the server reported no further pages, or it returned two consecutive
// empty pages. An exhausted feed stays exhausted; build a new one to re-fetch
// from the start.
var ErrNoMorePosts = errors.New("snoo: no more posts available")

// ListingOptions are the query parameters sent with every page fetch.
type ListingOptions struct {
	// Limit is the number of items to request per page. The server enforces a
	// maximum of 100.
	Limit int `url:"limit"`
	// After is the pagination cursor, empty for the first page.
	After string `url:"after"`
}

// PostFeed lazily pages through the posts of one listing URL.
//
// Each call to Next either pops a buffered post or fetches the next page from
// the server, so iterating past the page size simply makes more requests. The
// sequence is unbounded in principle; bound consumption explicitly, e.g. with
// Take.
//
// A PostFeed is single-owner state and must not be shared between goroutines.
// Share the AuthenticatedClient instead and give each goroutine its own feed.
type PostFeed struct {
	// Limit is the number of posts requested per page. It defaults to 100,
	// the maximum the server allows. Lower it if you know you need fewer
	// posts than that, so a page fetch does not over-request.
	Limit int

	client *AuthenticatedClient
	url    string

	after      string
	buffer     []*types.Post
	emptyPages int
	exhausted  bool
}

func newPostFeed(client *AuthenticatedClient, url string) *PostFeed {
	return &PostFeed{
		Limit:  DefaultLimit,
		client: client,
		url:    url,
	}
}

// Next returns the next post in the feed, fetching a new page when the buffer
// is drained.
//
// A transport, authentication or decode failure is returned without touching
// the cursor or the buffer, so the following call re-attempts the same page
// boundary. Exhaustion is reported as ErrNoMorePosts.
func (f *PostFeed) Next(ctx context.Context) (*types.Post, error) {
	for {
		if n := len(f.buffer); n > 0 {
			// The buffer holds the page in reverse server order, so popping
			// from the end yields posts in the original forward order.
			post := f.buffer[n-1]
			f.buffer[n-1] = nil
			f.buffer = f.buffer[:n-1]
			return post, nil
		}

		if f.exhausted {
			return nil, ErrNoMorePosts
		}

		body, err := f.client.Get(ctx, f.url, &ListingOptions{Limit: f.Limit, After: f.after})
		if err != nil {
			return nil, err
		}

		posts, after, err := decodeListing(body)
		if err != nil {
			return nil, err
		}

		// Only now that the page decoded cleanly does the cursor advance.
		f.after = after
		if after == "" {
			f.exhausted = true
		}

		if len(posts) == 0 {
			f.emptyPages++
			if f.emptyPages >= 2 {
				f.exhausted = true
			}
			if f.exhausted {
				return nil, ErrNoMorePosts
			}
			continue
		}
		f.emptyPages = 0

		for i := len(posts) - 1; i >= 0; i-- {
			f.buffer = append(f.buffer, posts[i])
		}
	}
}

// ResumeAfter positions a fresh feed to start after the given fullname, e.g.
// "t3_abc123", instead of at the first page. Call it before the first Next;
// afterwards the cursor belongs to the server.
func (f *PostFeed) ResumeAfter(cursor string) error {
	if !validation.IsValidFullname(cursor) {
		return &pkgerrs.ConfigError{Field: "After", Message: "invalid fullname cursor: " + cursor}
	}
	f.after = cursor
	return nil
}

// Take consumes up to n posts from the feed. It stops early without error if
// the feed runs out of posts first.
func (f *PostFeed) Take(ctx context.Context, n int) ([]*types.Post, error) {
	posts := make([]*types.Post, 0, n)
	for len(posts) < n {
		post, err := f.Next(ctx)
		if errors.Is(err, ErrNoMorePosts) {
			break
		}
		if err != nil {
			return posts, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// decodeListing decodes one page body into posts in server order, plus the
// trailing pagination cursor. Children whose kind is not a post are rejected.
func decodeListing(body []byte) ([]*types.Post, string, error) {
	var listing types.Listing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, "", &pkgerrs.ParseError{Operation: "decode listing", Err: err}
	}

	posts := make([]*types.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != types.KindPost {
			return nil, "", &pkgerrs.ParseError{
				Operation: "decode listing",
				Message:   fmt.Sprintf("unexpected child kind %q, want %q", child.Kind, types.KindPost),
			}
		}

		var data types.PostData
		if err := json.Unmarshal(child.Data, &data); err != nil {
			return nil, "", &pkgerrs.ParseError{Operation: "decode post", Err: err}
		}

		posts = append(posts, &types.Post{
			Title:    data.Title,
			Ups:      data.Ups,
			Downs:    data.Downs,
			URL:      data.URL,
			Author:   data.Author,
			SelfText: data.SelfText,
			ID:       data.ID,
			Kind:     child.Kind,
		})
	}

	return posts, listing.Data.After, nil
}

// Subreddit is a handle to one subreddit. It binds the subreddit URL to the
// shared client; the sort methods hand out fresh feeds.
type Subreddit struct {
	// URL is the subreddit base URL, e.g. "https://oauth.reddit.com/r/golang".
	URL string

	client *AuthenticatedClient
}

// Hot returns a feed of hot posts.
func (s *Subreddit) Hot() *PostFeed { return newPostFeed(s.client, s.URL+"/hot") }

// New returns a feed of the newest posts.
func (s *Subreddit) New() *PostFeed { return newPostFeed(s.client, s.URL+"/new") }

// Random returns a feed of random posts.
func (s *Subreddit) Random() *PostFeed { return newPostFeed(s.client, s.URL+"/random") }

// Rising returns a feed of rising posts.
func (s *Subreddit) Rising() *PostFeed { return newPostFeed(s.client, s.URL+"/rising") }

// Top returns a feed of top posts.
func (s *Subreddit) Top() *PostFeed { return newPostFeed(s.client, s.URL+"/top") }

// About fetches the subreddit's metadata.
func (s *Subreddit) About(ctx context.Context) (*types.SubredditDetails, error) {
	body, err := s.client.Get(ctx, s.URL+"/about", nil)
	if err != nil {
		return nil, err
	}

	var thing types.Thing
	if err := json.Unmarshal(body, &thing); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "decode subreddit", Err: err}
	}
	if thing.Kind != types.KindSubreddit {
		return nil, &pkgerrs.ParseError{
			Operation: "decode subreddit",
			Message:   fmt.Sprintf("unexpected kind %q, want %q", thing.Kind, types.KindSubreddit),
		}
	}

	var details types.SubredditDetails
	if err := json.Unmarshal(thing.Data, &details); err != nil {
		return nil, &pkgerrs.ParseError{Operation: "decode subreddit", Err: err}
	}

	return &details, nil
}

// FrontPage is a handle to the front page listings.
type FrontPage struct {
	// URL is the API base URL.
	URL string

	client *AuthenticatedClient
}

// Best returns a feed of best posts.
func (f *FrontPage) Best() *PostFeed { return newPostFeed(f.client, f.URL+"/best") }

// Hot returns a feed of hot posts.
func (f *FrontPage) Hot() *PostFeed { return newPostFeed(f.client, f.URL+"/hot") }

// New returns a feed of the newest posts.
func (f *FrontPage) New() *PostFeed { return newPostFeed(f.client, f.URL+"/new") }

// Random returns a feed of random posts.
func (f *FrontPage) Random() *PostFeed { return newPostFeed(f.client, f.URL+"/random") }

// Rising returns a feed of rising posts.
func (f *FrontPage) Rising() *PostFeed { return newPostFeed(f.client, f.URL+"/rising") }

// Top returns a feed of top posts.
func (f *FrontPage) Top() *PostFeed { return newPostFeed(f.client, f.URL+"/top") }
