// Package snoo provides authenticated, paginated access to Reddit post
// listings. It supports both the password grant (act as a user) and the
// client_credentials grant (anonymous browsing).
//
// The client owns one shared HTTP transport and one shared authenticator.
// When a request comes back with a 401 or 403 the client transparently logs
// in again, rebuilds its transport with the fresh token and retries the
// request exactly once. Many goroutines can share a single client; give each
// goroutine its own feed.
//
// Basic usage:
//
//	auth := snoo.NewScriptAuthenticator(snoo.NewCredentials(
//		clientID, clientSecret, username, password,
//	))
//
//	client, err := snoo.NewClient(ctx, &snoo.Config{
//		Authenticator: auth,
//		UserAgent:     "desktop:myapp:1.0 (by /u/me)",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sub, err := client.Subreddit("golang")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	feed := sub.Hot()
//	for i := 0; i < 10; i++ {
//		post, err := feed.Next(ctx)
//		if errors.Is(err, snoo.ErrNoMorePosts) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(post.Title)
//	}
//
// Feeds fetch lazily: iterating past the page size simply issues another
// request with the server's pagination cursor. A feed keeps yielding posts
// for as long as the server has pages, so bound consumption explicitly, for
// example with Take.
package snoo
