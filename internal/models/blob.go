package models

import "io"

// BlobRef points at one binary asset: its storage key and a long-lived read URL.
type BlobRef struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Upload is a file already received by the transport, ready to be streamed to storage.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
