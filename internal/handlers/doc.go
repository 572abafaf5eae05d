// Package handlers implements the HTTP surface of the linkcard service:
// draft creation, sending (persisting) previews, card rendering, image
// serving, and health/version endpoints.
//
// Card rendering goes exclusively through the preview.State facade, and
// image serving demonstrates the contract callers must honor around
// ImageAsync: the callback may never fire, so the handler waits with a
// bounded timeout and treats silence as a 504.
package handlers
