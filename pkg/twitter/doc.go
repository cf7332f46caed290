// Package twitter is the transport for the platform's v2 REST API.
//
// It covers exactly what the exporter consumes: user lookup by username,
// the liked and own posts collections, and the expanded post detail. Every
// request carries the bearer token. Responses are read fully and returned
// with their headers so the rate limiter can inspect them.
//
// Example usage:
//
//	client, err := twitter.NewClient(&cfg.API, log)
//	if err != nil {
//	    return err
//	}
//	user, header, err := client.LookupUser(ctx, "alice")
//	env, resp, err := client.GetEnvelope(ctx, twitter.PostDetailURL(client.BaseURL(), "1234"))
package twitter
