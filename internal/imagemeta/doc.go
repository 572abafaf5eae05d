// Package imagemeta extracts pixel dimensions from encoded images by
// reading format headers only, never performing a full decode.
package imagemeta
