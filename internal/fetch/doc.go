// Package fetch retrieves URL metadata (Open Graph and Twitter card tags)
// and produces complete draft preview records, downloading the referenced
// preview image up front so draft previews never have a partially-available
// image.
package fetch
