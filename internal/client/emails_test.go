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

func TestEmailsClient_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("own emails", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/r/user/emails", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": 1, "email": "alice@example.com"}]`))
		})

		emails, err := client.NewEmailsClient(executor).ListEmails(ctx)
		require.NoError(t, err)
		require.Len(t, emails, 1)
		assert.Equal(t, "alice@example.com", emails[0].Email)
	})

	t.Run("another user's emails by username", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/bob/emails", r.URL.Path)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})

		emails, err := client.NewEmailsClient(executor).ListUserEmails(ctx, rabbit.Username("bob"))
		require.NoError(t, err)
		assert.Empty(t, emails)
	})
}

func TestEmailsClient_GetEmail(t *testing.T) {
	t.Parallel()

	executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/r/user/emails/2", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 2, "email": "work@example.com"}`))
	})

	email, err := client.NewEmailsClient(executor).GetEmail(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "work@example.com", email.Email)
}

func TestEmailsClient_AddEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("posts the address", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/r/user/emails", r.URL.Path)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "extra@example.com", r.PostForm.Get("email"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 3, "email": "extra@example.com"}`))
		})

		email, err := client.NewEmailsClient(executor).AddEmail(ctx, "extra@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(3), email.ID)
	})

	t.Run("invalid address rejected client-side", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		_, err := client.NewEmailsClient(executor).AddEmail(ctx, "bogus")
		require.ErrorIs(t, err, rabbit.ErrInvalidEmail)
	})

	t.Run("admin add with skip confirmation", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/7/emails", r.URL.Path)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "new@example.com", r.PostForm.Get("email"))
			assert.Equal(t, "true", r.PostForm.Get("skip_confirmation"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 4, "email": "new@example.com"}`))
		})

		email, err := client.NewEmailsClient(executor).AddUserEmail(ctx, rabbit.UserID(7), "new@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, int64(4), email.ID)
	})
}

func TestEmailsClient_DeleteEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("own email", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/r/user/emails/3", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.NewEmailsClient(executor).DeleteEmail(ctx, 3))
	})

	t.Run("another user's email", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/r/users/7/emails/4", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		err := client.NewEmailsClient(executor).DeleteUserEmail(ctx, rabbit.UserID(7), 4)
		require.NoError(t, err)
	})

	t.Run("rejects non-positive email ID", func(t *testing.T) {
		t.Parallel()

		executor := newExecutor(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		err := client.NewEmailsClient(executor).DeleteEmail(ctx, 0)
		require.Error(t, err)
		assert.True(t, rabbit.IsInvalidArgument(err))
	})
}
