package preview

import (
	"testing"

	"linkcard/internal/attachment"
)

func TestCacheKeyEquality(t *testing.T) {
	a := CacheKey{ResourceID: "r1", Quality: attachment.QualityMedium}
	b := CacheKey{ResourceID: "r1", Quality: attachment.QualityMedium}
	if a != b {
		t.Error("identical keys should compare equal")
	}

	tests := []struct {
		name  string
		other CacheKey
	}{
		{"different resource", CacheKey{ResourceID: "r2", Quality: attachment.QualityMedium}},
		{"different quality", CacheKey{ResourceID: "r1", Quality: attachment.QualityLarge}},
		{"url-keyed with same id text", CacheKey{RawURL: "r1", Quality: attachment.QualityMedium}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a == tt.other {
				t.Errorf("%+v should not equal %+v", a, tt.other)
			}
		})
	}
}

func TestCacheKeyDraftNeverCollidesWithSent(t *testing.T) {
	draft := NewDraft(Draft{URL: "https://example.org/a", ImageData: encodePNG(t, 4, 4)})
	source := &fakeSource{id: "https://example.org/a", stream: &fakeStream{}}
	sent := NewSent(Record{URL: "https://example.org/a"}, source, nil)

	dk, ok := draft.ImageCacheKey(attachment.QualityMedium)
	if !ok {
		t.Fatal("draft should yield a key")
	}
	sk, ok := sent.ImageCacheKey(attachment.QualityMedium)
	if !ok {
		t.Fatal("sent should yield a key")
	}

	// Even with a resource id textually equal to the draft's URL the two
	// keys occupy different fields and must not collide.
	if dk == sk {
		t.Errorf("draft key %+v collided with sent key %+v", dk, sk)
	}
	if dk.Digest() == sk.Digest() {
		t.Error("digests of distinct keys should differ")
	}
}

func TestCacheKeyIsZero(t *testing.T) {
	if !(CacheKey{Quality: attachment.QualityLarge}).IsZero() {
		t.Error("key with only a quality carries no identity")
	}
	if (CacheKey{ResourceID: "r"}).IsZero() {
		t.Error("resource-keyed key is not zero")
	}
	if (CacheKey{RawURL: "u"}).IsZero() {
		t.Error("url-keyed key is not zero")
	}
}

func TestCacheKeyDigestStable(t *testing.T) {
	k := CacheKey{RawURL: "https://example.org/a", Quality: attachment.QualitySmall}
	first := k.Digest()
	if first != k.Digest() {
		t.Error("digest should be deterministic")
	}
	if len(first) != 32 {
		t.Errorf("digest length = %d, want 32 hex chars", len(first))
	}
}
