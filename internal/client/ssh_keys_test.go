package client_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rabbitz-io/rabbit/internal/client"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSHKeysClient_ListKeys(t *testing.T) {
	t.Parallel()

	executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/r/user/keys", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "title": "work laptop", "key": "ssh-ed25519 AAAA"}]`))
	})

	keys, err := client.NewSSHKeysClient(executor).ListKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "work laptop", keys[0].Title)
}

func TestSSHKeysClient_ListUserKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stamps the owner on each key", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/4/keys", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": 1, "title": "a", "key": "ssh-rsa AAAA"}, {"id": 2, "title": "b", "key": "ssh-rsa BBBB"}]`))
		})

		keys, err := client.NewSSHKeysClient(executor).ListUserKeys(ctx, 4)
		require.NoError(t, err)
		require.Len(t, keys, 2)
		assert.Equal(t, int64(4), keys[0].UserID)
		assert.Equal(t, int64(4), keys[1].UserID)
	})

	t.Run("rejects non-positive user ID", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		_, err := client.NewSSHKeysClient(executor).ListUserKeys(ctx, 0)
		require.Error(t, err)
		assert.True(t, rabbit.IsInvalidArgument(err))
	})
}

func TestSSHKeysClient_GetKey(t *testing.T) {
	t.Parallel()

	executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/r/user/keys/12", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 12, "title": "ci", "key": "ssh-ed25519 CCCC"}`))
	})

	key, err := client.NewSSHKeysClient(executor).GetKey(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "ci", key.Title)
}

func TestSSHKeysClient_GetKeyResult(t *testing.T) {
	t.Parallel()

	executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "404 Not found"}`))
	})

	result := client.NewSSHKeysClient(executor).GetKeyResult(context.Background(), 99)
	assert.False(t, result.Present())
	require.NoError(t, result.Err())
}

func TestSSHKeysClient_AddKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("posts title and key", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/r/user/keys", r.URL.Path)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "new key", r.PostForm.Get("title"))
			assert.Equal(t, "ssh-ed25519 DDDD", r.PostForm.Get("key"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 13, "title": "new key", "key": "ssh-ed25519 DDDD"}`))
		})

		key, err := client.NewSSHKeysClient(executor).AddKey(ctx, "new key", "ssh-ed25519 DDDD")
		require.NoError(t, err)
		assert.Equal(t, int64(13), key.ID)
	})

	t.Run("requires title and key", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		_, err := client.NewSSHKeysClient(executor).AddKey(ctx, "  ", "ssh-rsa AAAA")
		require.Error(t, err)
		assert.True(t, rabbit.IsInvalidArgument(err))
	})

	t.Run("admin add targets the user path", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/6/keys", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 14, "title": "deploy", "key": "ssh-rsa EEEE"}`))
		})

		key, err := client.NewSSHKeysClient(executor).AddUserKey(ctx, 6, "deploy", "ssh-rsa EEEE")
		require.NoError(t, err)
		assert.Equal(t, int64(6), key.UserID)
	})
}

func TestSSHKeysClient_DeleteKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("own key", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/r/user/keys/12", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.NewSSHKeysClient(executor).DeleteKey(ctx, 12))
	})

	t.Run("admin delete by username", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/alice/keys/12", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		err := client.NewSSHKeysClient(executor).DeleteUserKey(ctx, rabbit.Username("alice"), 12)
		require.NoError(t, err)
	})

	t.Run("rejects non-positive key ID", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		err := client.NewSSHKeysClient(executor).DeleteUserKey(ctx, rabbit.UserID(4), 0)
		require.Error(t, err)
		assert.True(t, rabbit.IsInvalidArgument(err))
	})
}
