// Package bitmapcache is the rendering layer's bitmap store: an LRU of
// decoded images keyed by the identity values the preview layer hands out.
package bitmapcache
