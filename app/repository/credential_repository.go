package repository

import (
	"gorm.io/gorm"

	"gtacts/app/models"
)

// credentialRepository implements CredentialRepository on top of gorm
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository instance
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert merges the supplied fields into the row for identityKey inside a
// transaction, creating the row when it does not exist yet.
func (r *credentialRepository) Upsert(identityKey string, fields CredentialFields) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var cred models.UserCredential
		err := tx.Where("identity_key = ?", identityKey).First(&cred).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			cred = models.UserCredential{IdentityKey: identityKey}
			applyFields(&cred, fields)
			return tx.Create(&cred).Error
		}

		updates := map[string]interface{}{}
		if fields.DisplayName != nil {
			updates["display_name"] = *fields.DisplayName
		}
		if fields.AccessToken != nil {
			updates["access_token"] = *fields.AccessToken
		}
		// keep the stored refresh token unless a new non-empty one arrived
		if fields.RefreshToken != nil && *fields.RefreshToken != "" {
			updates["refresh_token"] = *fields.RefreshToken
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&cred).Updates(updates).Error
	})
}

// GetByIdentityKey retrieves a credential by the provider-issued profile id
func (r *credentialRepository) GetByIdentityKey(identityKey string) (*models.UserCredential, error) {
	var cred models.UserCredential
	err := r.db.Where("identity_key = ?", identityKey).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// List returns all stored credentials ordered by creation time
func (r *credentialRepository) List() ([]models.UserCredential, error) {
	var creds []models.UserCredential
	err := r.db.Order("created_at ASC").Find(&creds).Error
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func applyFields(cred *models.UserCredential, fields CredentialFields) {
	if fields.DisplayName != nil {
		cred.DisplayName = *fields.DisplayName
	}
	if fields.AccessToken != nil {
		cred.AccessToken = *fields.AccessToken
	}
	if fields.RefreshToken != nil && *fields.RefreshToken != "" {
		cred.RefreshToken = *fields.RefreshToken
	}
}
