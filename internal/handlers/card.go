package handlers

import (
	"time"

	"linkcard/internal/attachment"
	"linkcard/internal/preview"
)

// Card is the JSON rendering of a preview state. It is built exclusively
// from the facade's accessors, so anything a renderer needs has to be
// reachable through preview.State.
type Card struct {
	IsLoaded          bool   `json:"isLoaded"`
	URL               string `json:"url,omitempty"`
	DisplayDomain     string `json:"displayDomain,omitempty"`
	Title             string `json:"title,omitempty"`
	Description       string `json:"description,omitempty"`
	Date              string `json:"date,omitempty"`
	ImageState        string `json:"imageState"`
	ImageWidth        int    `json:"imageWidth,omitempty"`
	ImageHeight       int    `json:"imageHeight,omitempty"`
	ImageCacheKey     string `json:"imageCacheKey,omitempty"`
	IsGroupInviteLink bool   `json:"isGroupInviteLink"`
	IsCallLink        bool   `json:"isCallLink"`
	ActivityIndicator string `json:"activityIndicator"`
}

func indicatorName(style preview.ActivityIndicatorStyle) string {
	if style == preview.IndicatorGray {
		return "gray"
	}
	return "default"
}

// buildCard renders a preview state for the given thumbnail quality.
func buildCard(st preview.State, quality attachment.ThumbnailQuality) Card {
	card := Card{
		IsLoaded:          st.IsLoaded(),
		URL:               st.URLString(),
		DisplayDomain:     st.DisplayDomain(),
		Title:             st.Title(),
		Description:       st.Description(),
		ImageState:        st.ImageState().String(),
		IsGroupInviteLink: st.IsGroupInviteLink(),
		IsCallLink:        st.IsCallLink(),
		ActivityIndicator: indicatorName(st.ActivityIndicatorStyle()),
	}

	if date := st.Date(); !date.IsZero() {
		card.Date = date.Format(time.RFC3339)
	}

	if st.ImageState() == preview.ImageStateLoaded {
		size := st.ImagePixelSize()
		card.ImageWidth = size.Width
		card.ImageHeight = size.Height
	}
	if key, ok := st.ImageCacheKey(quality); ok {
		card.ImageCacheKey = key.Digest()
	}

	return card
}
