package rabbit

import (
	"context"
	"io"
	"time"
)

// ListUsersOptions are the filters accepted by the user listing endpoint.
type ListUsersOptions struct {
	Page    int
	PerPage int
	// Active and Blocked are mutually exclusive server-side state filters.
	Active  bool
	Blocked bool
	// Search matches against name, username, and email.
	Search   string
	Username string
	// Provider and ExternUID filter by external identity; both must be set
	// together to take effect.
	Provider  string
	ExternUID string
	// WithCustomAttributes includes each user's custom attributes in the
	// response.
	WithCustomAttributes bool
	OrderBy              string
	Sort                 string
}

// UsersClient provides access to user accounts.
type UsersClient interface {
	// List returns one page of users matching the options.
	List(ctx context.Context, opts *ListUsersOptions) ([]User, error)
	// ListAll drains every page of users matching the options.
	ListAll(ctx context.Context, opts *ListUsersOptions) ([]User, error)
	// Pager returns a pager over users matching the options.
	Pager(ctx context.Context, opts *ListUsersOptions) (*Pager[User], error)
	// Stream emits users page by page on the returned channel.
	Stream(ctx context.Context, opts *ListUsersOptions) <-chan PageResult[User]

	Get(ctx context.Context, userID int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByExternalUID(ctx context.Context, provider, externUID string) (*User, error)
	// Find searches users by name, username, or email.
	Find(ctx context.Context, search string, page, perPage int) ([]User, error)

	// Optional-lookup variants distinguishing "not found" from failure.
	GetResult(ctx context.Context, userID int64) Result[*User]
	GetByUsernameResult(ctx context.Context, username string) Result[*User]
	GetByEmailResult(ctx context.Context, email string) Result[*User]
	GetByExternalUIDResult(ctx context.Context, provider, externUID string) Result[*User]

	// Create creates a user. Either password or resetPassword is required.
	Create(ctx context.Context, user *User, password string, resetPassword bool) (*User, error)
	Update(ctx context.Context, user *User, password string) (*User, error)
	// SetAvatar uploads a new avatar image for the user.
	SetAvatar(ctx context.Context, ref UserRef, fileName string, avatar io.Reader) (*User, error)
	// Delete removes a user. hardDelete also removes contributions the
	// server would otherwise ghost.
	Delete(ctx context.Context, ref UserRef, hardDelete bool) error
	Block(ctx context.Context, userID int64) error
	Unblock(ctx context.Context, userID int64) error

	// Current returns the authenticated user.
	Current(ctx context.Context) (*User, error)
}

// SSHKeysClient provides access to SSH keys.
type SSHKeysClient interface {
	// ListKeys returns the authenticated user's keys.
	ListKeys(ctx context.Context) ([]SSHKey, error)
	// ListUserKeys returns the given user's keys with UserID stamped on
	// each one.
	ListUserKeys(ctx context.Context, userID int64) ([]SSHKey, error)
	GetKey(ctx context.Context, keyID int64) (*SSHKey, error)
	GetKeyResult(ctx context.Context, keyID int64) Result[*SSHKey]
	// AddKey adds a key to the authenticated user.
	AddKey(ctx context.Context, title, key string) (*SSHKey, error)
	AddUserKey(ctx context.Context, userID int64, title, key string) (*SSHKey, error)
	// DeleteKey removes a key from the authenticated user.
	DeleteKey(ctx context.Context, keyID int64) error
	DeleteUserKey(ctx context.Context, ref UserRef, keyID int64) error
}

// ImpersonationTokensClient provides access to impersonation tokens.
// All operations are admin-only server-side.
type ImpersonationTokensClient interface {
	List(ctx context.Context, ref UserRef, state ImpersonationState) ([]ImpersonationToken, error)
	Get(ctx context.Context, ref UserRef, tokenID int64) (*ImpersonationToken, error)
	GetResult(ctx context.Context, ref UserRef, tokenID int64) Result[*ImpersonationToken]
	// Create issues a token. At least one scope is required; expiresAt is
	// optional.
	Create(ctx context.Context, ref UserRef, name string, expiresAt *time.Time, scopes []TokenScope) (*ImpersonationToken, error)
	Revoke(ctx context.Context, ref UserRef, tokenID int64) error
}

// EmailsClient provides access to email addresses.
type EmailsClient interface {
	// ListEmails returns the authenticated user's emails.
	ListEmails(ctx context.Context) ([]Email, error)
	ListUserEmails(ctx context.Context, ref UserRef) ([]Email, error)
	GetEmail(ctx context.Context, emailID int64) (*Email, error)
	AddEmail(ctx context.Context, email string) (*Email, error)
	AddUserEmail(ctx context.Context, ref UserRef, email string, skipConfirmation bool) (*Email, error)
	DeleteEmail(ctx context.Context, emailID int64) error
	DeleteUserEmail(ctx context.Context, ref UserRef, emailID int64) error
}

// CustomAttributesClient provides access to user custom attributes.
type CustomAttributesClient interface {
	List(ctx context.Context, ref UserRef) ([]CustomAttribute, error)
	Get(ctx context.Context, ref UserRef, key string) (*CustomAttribute, error)
	// Set creates or replaces an attribute. Create and change are the same
	// PUT on the server.
	Set(ctx context.Context, ref UserRef, key, value string) (*CustomAttribute, error)
	Delete(ctx context.Context, ref UserRef, key string) error
}
