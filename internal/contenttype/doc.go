// Package contenttype classifies attachment payloads into the kinds the
// preview layer cares about: static image, animated image, audio, video,
// generic file, or invalid. It also sniffs MIME types from magic bytes for
// payloads that arrive without one.
package contenttype
