package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles all repository instances
type Repositories struct {
	Credential CredentialRepository
}

// NewRepositories creates gorm-backed repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Credential: NewCredentialRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory backed by the given database
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// NewMemoryFactory creates a factory serving in-memory repositories, used when
// gtacts runs without a database (CREDENTIAL_STORE=memory) and in tests.
func NewMemoryFactory() *Factory {
	return &Factory{
		repos: &Repositories{
			Credential: NewMemoryCredentialRepository(),
		},
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		if f.repos == nil {
			f.repos = NewRepositories(f.db)
		}
	})
	return f.repos
}

// GetCredentialRepository returns the credential repository instance
func (f *Factory) GetCredentialRepository() CredentialRepository {
	return f.GetRepositories().Credential
}

var (
	globalFactory   *Factory
	globalFactoryMu sync.Mutex
)

// SetGlobalFactory installs the application-wide factory
func SetGlobalFactory(f *Factory) {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	globalFactory = f
}

// GetGlobalFactory returns the application-wide factory, defaulting to the
// in-memory store when none was installed
func GetGlobalFactory() *Factory {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewMemoryFactory()
	}
	return globalFactory
}
