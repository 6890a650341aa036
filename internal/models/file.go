package models

import "time"

// File is upload metadata, keyed by an opaque file ID in the files collection.
// StoredName is the on-disk-unique name of the physical blob; it is never
// reused while the record exists. UploadedBy is recorded by value and may
// reference a user that has since been removed.
type File struct {
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadDate   time.Time `json:"uploadDate"`
	FileSize     int64     `json:"fileSize"`
	ContentType  string    `json:"contentType"`
}
