package models

import (
	"time"

	"github.com/google/uuid"
)

// FileRecord is the persisted metadata for one uploaded blob. Rows are
// created on upload and only ever mutated by soft deletion; the blob bytes
// live in the blob store under a path derived from ID alone.
type FileRecord struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Mimetype    string     `json:"mimetype" gorm:"not null"` // sniffed from content, never from headers
	Name        string     `json:"name" gorm:"not null"`     // display name, path components stripped
	Size        int64      `json:"size" gorm:"not null"`     // bytes
	Checksum    string     `json:"checksum" gorm:"not null"` // hex SHA-256 of the content
	UploadTime  time.Time  `json:"upload_time" gorm:"not null"`
	ExpireTime  *time.Time `json:"expire_time"`
	ModifyToken string     `json:"-"` // set only in anonymous-mode deployments
	OwnerID     string     `json:"uploader" gorm:"index;not null"`
	Deleted     bool       `json:"-" gorm:"default:false;not null"`
}

// Expired reports whether the record's expiry gate has passed. A record
// without an expire time never expires.
func (f *FileRecord) Expired(now time.Time) bool {
	return f.ExpireTime != nil && f.ExpireTime.Before(now)
}

// FileRecordView is the caller-facing shape of a FileRecord. The modify
// token is deliberately absent; it is emitted exactly once at creation.
type FileRecordView struct {
	ID          string     `json:"id"`
	Mimetype    string     `json:"mimetype"`
	Name        string     `json:"name"`
	Size        int64      `json:"size"`
	Checksum    string     `json:"checksum"`
	UploadTime  time.Time  `json:"upload_time"`
	ExpireTime  *time.Time `json:"expire_time"`
	Uploader    string     `json:"uploader"`
	DownloadURL string     `json:"download_url"`
}

// View renders the record for API responses, computing the download URL
// from the deployment's base URL.
func (f *FileRecord) View(baseURL string) FileRecordView {
	return FileRecordView{
		ID:          f.ID.String(),
		Mimetype:    f.Mimetype,
		Name:        f.Name,
		Size:        f.Size,
		Checksum:    f.Checksum,
		UploadTime:  f.UploadTime,
		ExpireTime:  f.ExpireTime,
		Uploader:    f.OwnerID,
		DownloadURL: baseURL + "/file/" + f.ID.String() + "/download",
	}
}
