package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SetGetClear(t *testing.T) {
	s := New(nil)
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.Set(State{Token: "abc", User: &User{Username: "ann"}}))
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "abc", s.Token())
	assert.Equal(t, "ann", s.Get().User.Username)

	require.NoError(t, s.Clear())
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.Get().User)
}

func TestSession_SetUserKeepsToken(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Set(State{Token: "tok"}))
	require.NoError(t, s.SetUser(&User{Username: "bob", CharactersUsed: 10}))

	st := s.Get()
	assert.Equal(t, "tok", st.Token)
	assert.Equal(t, 10, st.User.CharactersUsed)
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(State{Token: "t"})
		}()
		go func() {
			defer wg.Done()
			_ = s.LoggedIn()
		}()
	}
	wg.Wait()
	assert.Equal(t, "t", s.Token())
}

func TestFileStore_RoundTripThroughSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	s, err := Open(store)
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	require.NoError(t, s.Set(State{Token: "persisted", User: &User{Username: "cat"}}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := Open(NewFileStore(path))
	require.NoError(t, err)
	assert.Equal(t, "persisted", reopened.Token())
	assert.Equal(t, "cat", reopened.Get().User.Username)

	require.NoError(t, reopened.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_DeleteMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "none.json"))
	assert.NoError(t, store.Delete())
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := Open(NewFileStore(path))
	assert.Error(t, err)
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "transly", "session.json"), p)
}

func TestFromState_NotPersisted(t *testing.T) {
	s := FromState(State{Token: "static"})
	assert.True(t, s.LoggedIn())
	assert.Equal(t, "static", s.Token())

	require.NoError(t, s.SetUser(&User{Username: "ci"}))
	require.NoError(t, s.Clear())
	assert.False(t, s.LoggedIn())
}
