package repository

import (
	"sort"
	"sync"

	"gorm.io/gorm"

	"gtacts/app/models"
)

// memoryCredentialRepository keeps credentials in a mutex-guarded map. It
// backs the CREDENTIAL_STORE=memory deployments that run without a database
// and serves as the store double in tests.
type memoryCredentialRepository struct {
	mu     sync.Mutex
	nextID uint
	creds  map[string]models.UserCredential
}

// NewMemoryCredentialRepository creates an empty in-memory credential store.
func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredentialRepository{
		nextID: 1,
		creds:  make(map[string]models.UserCredential),
	}
}

func (r *memoryCredentialRepository) Upsert(identityKey string, fields CredentialFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.creds[identityKey]
	if !ok {
		cred = models.UserCredential{ID: r.nextID, IdentityKey: identityKey}
		r.nextID++
	}
	applyFields(&cred, fields)
	r.creds[identityKey] = cred
	return nil
}

func (r *memoryCredentialRepository) GetByIdentityKey(identityKey string) (*models.UserCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.creds[identityKey]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := cred
	return &out, nil
}

func (r *memoryCredentialRepository) List() ([]models.UserCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds := make([]models.UserCredential, 0, len(r.creds))
	for _, cred := range r.creds {
		creds = append(creds, cred)
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].ID < creds[j].ID })
	return creds, nil
}
