package attachment

import "fmt"

// ThumbnailQuality selects the decode fidelity of a generated thumbnail.
// The preview layer passes it through untouched; only the thumbnailer
// interprets it.
type ThumbnailQuality int

const (
	// QualitySmall targets list cells and compose-bar cards.
	QualitySmall ThumbnailQuality = iota
	// QualityMedium targets standard message bubbles.
	QualityMedium
	// QualityMediumLarge targets wide bubbles on large displays.
	QualityMediumLarge
	// QualityLarge targets full-screen viewing.
	QualityLarge
)

// MaxDimension returns the bounding-box edge in pixels for the quality.
func (q ThumbnailQuality) MaxDimension() int {
	switch q {
	case QualitySmall:
		return 256
	case QualityMedium:
		return 512
	case QualityMediumLarge:
		return 1024
	case QualityLarge:
		return 2048
	default:
		return 512
	}
}

// String returns the string representation of a thumbnail quality.
func (q ThumbnailQuality) String() string {
	switch q {
	case QualitySmall:
		return "small"
	case QualityMedium:
		return "medium"
	case QualityMediumLarge:
		return "mediumLarge"
	case QualityLarge:
		return "large"
	default:
		return fmt.Sprintf("unknown(%d)", int(q))
	}
}

// ParseQuality maps a quality name to a ThumbnailQuality. Unknown or empty
// names fall back to QualityMedium.
func ParseQuality(s string) ThumbnailQuality {
	switch s {
	case "small":
		return QualitySmall
	case "medium":
		return QualityMedium
	case "mediumLarge", "medium-large":
		return QualityMediumLarge
	case "large":
		return QualityLarge
	default:
		return QualityMedium
	}
}
