package filestorage

import (
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	URL      string // Public URL of the stored file
	Path     string // Path relative to the storage root
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // MIME type reported by the client
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under subPath and returns where it went
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (*FileInfo, error)

	// DeleteFile removes a file previously returned by SaveFileWithPath
	DeleteFile(relativePath string) error
}
