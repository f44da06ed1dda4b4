// Package client is a Go client for the docsearch HTTP API.
//
//	c, _ := client.New("http://localhost:8080")
//	_, _ = c.Upload(ctx, client.UploadRequest{Title: "Pets", Content: "cats are great pets"})
//	hits, _ := c.Search(ctx, "cats", client.ModeHybrid)
//
// Non-2xx responses are returned as *APIError. Use errors.Is with
// ErrNotFound, ErrConflict, ErrBadRequest or ErrUpstream to branch on them.
package client
