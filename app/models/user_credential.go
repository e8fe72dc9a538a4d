package models

import "time"

// UserCredential stores the OAuth identity and tokens for a Google account.
// IdentityKey is the provider-issued profile id and never changes once set.
type UserCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	IdentityKey  string    `gorm:"uniqueIndex;type:varchar(191)" json:"identity_key"`
	DisplayName  string    `gorm:"type:varchar(255)" json:"display_name"`
	AccessToken  string    `gorm:"type:text" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasRefreshToken reports whether the provider ever granted offline access.
func (c *UserCredential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}
