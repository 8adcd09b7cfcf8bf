package resolver

import "fmt"

// FetchError reports a failed remote image download.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch image from %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("failed to fetch image from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports an image whose sniffed content type is not
// in the allowed set.
type UnsupportedFormatError struct {
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format: %s", e.ContentType)
}

// OversizeError reports image data over the configured size ceiling.
type OversizeError struct {
	Size  int64
	Limit int64
}

func (e *OversizeError) Error() string {
	if e.Size > 0 {
		return fmt.Sprintf("image size %d exceeds maximum allowed size %d", e.Size, e.Limit)
	}
	return fmt.Sprintf("image exceeds maximum allowed size %d", e.Limit)
}

// UploadError reports an uploaded file that could not be read.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to read uploaded image: %v", e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DecodeError reports malformed base64 input.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base64 image data: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
