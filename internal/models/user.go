package models

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Unlimited disables a quota or per-file size limit.
const Unlimited int64 = -1

// User is an account created by an admin (or the bootstrap path), never
// self-service. Token is the opaque bearer credential; PasswordHash is only
// set for session-mode deployments that log in through /auth/login.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"uniqueIndex;not null"`
	Token        string    `json:"-" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Quota        int64     `json:"quota" gorm:"default:-1;not null"`      // cumulative bytes across live files
	SizeLimit    int64     `json:"size_limit" gorm:"default:-1;not null"` // per-file ceiling
	Admin        bool      `json:"admin" gorm:"default:false;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// QuotaNice renders the quota for humans ("1.0 GB", "unlimited").
func (u *User) QuotaNice() string {
	if u.Quota == Unlimited {
		return "unlimited"
	}
	return humanize.Bytes(uint64(u.Quota))
}

// SizeLimitNice renders the per-file limit for humans.
func (u *User) SizeLimitNice() string {
	if u.SizeLimit == Unlimited {
		return "unlimited"
	}
	return humanize.Bytes(uint64(u.SizeLimit))
}
