package repository

import (
	"gtacts/app/models"
)

// CredentialFields carries the fields of an upsert. A nil pointer means the
// caller did not supply the field, which is different from supplying an empty
// string: an absent refresh token must never erase a stored one.
type CredentialFields struct {
	DisplayName  *string
	AccessToken  *string
	RefreshToken *string
}

// CredentialRepository defines the interface for credential-related database operations
type CredentialRepository interface {
	// Upsert merges the supplied fields into the record for identityKey,
	// creating it if absent. The stored refresh token is kept when the new
	// one is nil or empty.
	Upsert(identityKey string, fields CredentialFields) error
	// GetByIdentityKey returns gorm.ErrRecordNotFound for unknown identities.
	GetByIdentityKey(identityKey string) (*models.UserCredential, error)
	List() ([]models.UserCredential, error)
}

// StringPtr returns a pointer to s, for building CredentialFields literals.
func StringPtr(s string) *string {
	return &s
}
