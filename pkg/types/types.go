// Package types defines the data model shared between the snoo client packages:
// the access token, the decoded domain objects, and the raw listing wire shapes.
package types

import "encoding/json"

// Kind markers used by the Reddit API to tag things in a listing.
const (
	// KindComment tags a comment ("t1").
	KindComment = "t1"
	// KindPost tags a link/post ("t3").
	KindPost = "t3"
	// KindSubreddit tags a subreddit ("t5").
	KindSubreddit = "t5"
)

// Token is an access token obtained from the token exchange.
// It is only ever constructed from a successful exchange response and is
// replaced wholesale on re-authentication, never mutated in place.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int32  `json:"expires_in"`
	Scope       string `json:"scope"`
	TokenType   string `json:"token_type"`
}

// Post is a decoded Reddit post.
type Post struct {
	Title string
	// Ups is the number of upvotes.
	Ups int
	// Downs is the number of downvotes.
	Downs int
	// URL is the associated URL of this post. It is an external website if the
	// post is a link, otherwise the comment section.
	URL      string
	Author   string
	SelfText string
	// ID is the unique base36 ID of this post.
	ID string
	// Kind is the thing kind, always KindPost for posts.
	Kind string
}

// Fullname returns the Reddit fullname of the post, e.g. "t3_abc123".
func (p *Post) Fullname() string {
	return p.Kind + "_" + p.ID
}

// Me holds information about the authenticated user.
type Me struct {
	Name         string `json:"name"`
	TotalKarma   int    `json:"total_karma"`
	LinkKarma    int    `json:"link_karma"`
	CommentKarma int    `json:"comment_karma"`
	Verified     bool   `json:"verified"`
}

// SubredditDetails holds metadata about a subreddit.
type SubredditDetails struct {
	DisplayName       string `json:"display_name"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	PublicDescription string `json:"public_description"`
	Subscribers       int64  `json:"subscribers"`
	Over18            bool   `json:"over18"`
	URL               string `json:"url"`
}

// Thing is the raw kind-tagged envelope every Reddit object arrives in.
// The Data payload is decoded by the consumer once the kind is known.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Listing is the raw wire shape of one server page.
type Listing struct {
	Data ListingData `json:"data"`
}

// ListingData carries the page children and the trailing pagination cursor.
// After is empty when the server has no further pages.
type ListingData struct {
	After    string  `json:"after"`
	Children []Thing `json:"children"`
}

// PostData is the raw wire shape of a post record inside a listing child.
type PostData struct {
	Title    string `json:"title"`
	Ups      int    `json:"ups"`
	Downs    int    `json:"downs"`
	URL      string `json:"url"`
	Author   string `json:"author"`
	SelfText string `json:"selftext"`
	ID       string `json:"id"`
}
