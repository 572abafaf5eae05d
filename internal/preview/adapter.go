package preview

import "linkcard/internal/attachment"

// Attachment adapts a managed attachment reference to the ImageSource
// interface. A nil reference yields a nil source, which NewSent treats as
// "no image".
func Attachment(ref *attachment.Reference) ImageSource {
	if ref == nil {
		return nil
	}
	return attachmentSource{ref: ref}
}

type attachmentSource struct {
	ref *attachment.Reference
}

func (a attachmentSource) ResourceID() string {
	return a.ref.ResourceID()
}

func (a attachmentSource) Stream() (ImageStream, bool) {
	stream, ok := a.ref.Stream()
	if !ok {
		return nil, false
	}
	return stream, true
}
