package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertCreatesAndMerges(t *testing.T) {
	repo := NewMemoryCredentialRepository()

	err := repo.Upsert("profile-1", CredentialFields{
		DisplayName:  StringPtr("Ada"),
		AccessToken:  StringPtr("access-1"),
		RefreshToken: StringPtr("refresh-1"),
	})
	require.NoError(t, err)

	cred, err := repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	assert.Equal(t, "profile-1", cred.IdentityKey)
	assert.Equal(t, "Ada", cred.DisplayName)
	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)

	// a later authentication updates name and access token
	err = repo.Upsert("profile-1", CredentialFields{
		DisplayName: StringPtr("Ada L."),
		AccessToken: StringPtr("access-2"),
	})
	require.NoError(t, err)

	cred, err = repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", cred.DisplayName)
	assert.Equal(t, "access-2", cred.AccessToken)
}

func TestUpsertNeverErasesRefreshToken(t *testing.T) {
	repo := NewMemoryCredentialRepository()

	require.NoError(t, repo.Upsert("profile-1", CredentialFields{
		AccessToken:  StringPtr("access-1"),
		RefreshToken: StringPtr("refresh-1"),
	}))

	// Google omits the refresh token on every consent after the first;
	// neither an absent nor an empty value may erase the stored one
	require.NoError(t, repo.Upsert("profile-1", CredentialFields{
		AccessToken: StringPtr("access-2"),
	}))
	require.NoError(t, repo.Upsert("profile-1", CredentialFields{
		AccessToken:  StringPtr("access-3"),
		RefreshToken: StringPtr(""),
	}))

	cred, err := repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
	assert.Equal(t, "access-3", cred.AccessToken)

	// a fresh consent with a new refresh token replaces it
	require.NoError(t, repo.Upsert("profile-1", CredentialFields{
		RefreshToken: StringPtr("refresh-2"),
	}))
	cred, err = repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	assert.Equal(t, "refresh-2", cred.RefreshToken)
}

func TestGetUnknownIdentityIsNotFound(t *testing.T) {
	repo := NewMemoryCredentialRepository()

	cred, err := repo.GetByIdentityKey("ghost")
	assert.Nil(t, cred)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	require.NoError(t, repo.Upsert("profile-1", CredentialFields{AccessToken: StringPtr("access-1")}))

	cred, err := repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	cred.AccessToken = "mutated"

	stored, err := repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken)
}

func TestListOrdersByCreation(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("profile-%d", i)
		require.NoError(t, repo.Upsert(key, CredentialFields{DisplayName: StringPtr(key)}))
	}

	creds, err := repo.List()
	require.NoError(t, err)
	require.Len(t, creds, 3)
	assert.Equal(t, "profile-0", creds[0].IdentityKey)
	assert.Equal(t, "profile-2", creds[2].IdentityKey)
}

func TestConcurrentUpsertsDoNotCorrupt(t *testing.T) {
	repo := NewMemoryCredentialRepository()
	require.NoError(t, repo.Upsert("profile-1", CredentialFields{
		RefreshToken: StringPtr("refresh-1"),
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Upsert("profile-1", CredentialFields{
				AccessToken: StringPtr(fmt.Sprintf("access-%d", i)),
			})
		}(i)
	}
	wg.Wait()

	cred, err := repo.GetByIdentityKey("profile-1")
	require.NoError(t, err)
	// last writer wins for the access token, the refresh token survives
	assert.NotEmpty(t, cred.AccessToken)
	assert.Equal(t, "refresh-1", cred.RefreshToken)
}
