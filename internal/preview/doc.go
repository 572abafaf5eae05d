/*
Package preview presents a unified, read-only view over a link preview to
the rendering layer, hiding the differences between three underlying
sources:

  - LoadingState: metadata has not arrived; only the link type is known.
  - DraftState: a locally-drafted preview with raw image bytes in memory.
  - SentState: a persisted preview whose image is a managed attachment
    resource that may itself still be downloading.

All three satisfy the State interface. Instances are immutable; a preview
moves between variants only by the caller constructing a new instance and
replacing the one it holds.

Synchronous accessors never block. Image resolution (ImageAsync) always
hands off to a bounded background decode pool and invokes its callback at
most once, only on success; a decode failure is logged and the callback
simply never fires, so callers that need a guaranteed response wrap the
call in their own timeout. Pixel geometry (ImagePixelSize) is computed from
header metadata only and memoized per instance with an atomic
compare-and-set cell, since layout code queries it on every pass from
multiple goroutines.

The package produces CacheKey identities for the renderer's bitmap cache
but never caches bitmaps itself.
*/
package preview
