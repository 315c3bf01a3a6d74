package rabbit

import (
	"fmt"
	"strings"
	"time"
)

// TokenType selects how the access credential is presented to the server.
type TokenType string

const (
	// TokenTypePrivate sends the credential in the PRIVATE-TOKEN header.
	TokenTypePrivate TokenType = "private"

	// TokenTypeAccess sends the credential as a standard bearer token in
	// the Authorization header.
	TokenTypeAccess TokenType = "access"
)

// Date is a calendar date without a time component, serialized as
// "2006-01-02" the way the server reports expiry dates.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from a time.Time, truncating the time component.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}

		return nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}

	d.Time = t

	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// String returns the wire form of the date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.Format(dateLayout)
}

// User represents a user account on the server.
type User struct {
	ID               int64      `json:"id"                           yaml:"id"`
	Username         string     `json:"username"                     yaml:"username"`
	Email            string     `json:"email,omitempty"              yaml:"email,omitempty"`
	Name             string     `json:"name"                         yaml:"name"`
	State            string     `json:"state,omitempty"              yaml:"state,omitempty"`
	Bio              string     `json:"bio,omitempty"                yaml:"bio,omitempty"`
	Location         string     `json:"location,omitempty"           yaml:"location,omitempty"`
	Skype            string     `json:"skype,omitempty"              yaml:"skype,omitempty"`
	Linkedin         string     `json:"linkedin,omitempty"           yaml:"linkedin,omitempty"`
	Twitter          string     `json:"twitter,omitempty"            yaml:"twitter,omitempty"`
	WebsiteURL       string     `json:"website_url,omitempty"        yaml:"website_url,omitempty"`
	Organization     string     `json:"organization,omitempty"       yaml:"organization,omitempty"`
	ExternUID        string     `json:"extern_uid,omitempty"         yaml:"extern_uid,omitempty"`
	Provider         string     `json:"provider,omitempty"           yaml:"provider,omitempty"`
	IsAdmin          bool       `json:"is_admin,omitempty"           yaml:"is_admin,omitempty"`
	CanCreateGroup   bool       `json:"can_create_group,omitempty"   yaml:"can_create_group,omitempty"`
	SkipConfirmation bool       `json:"skip_confirmation,omitempty"  yaml:"skip_confirmation,omitempty"`
	External         bool       `json:"external,omitempty"           yaml:"external,omitempty"`
	ProjectsLimit    int        `json:"projects_limit,omitempty"     yaml:"projects_limit,omitempty"`
	RunnerMinutes    int        `json:"shared_runners_minutes_limit,omitempty" yaml:"shared_runners_minutes_limit,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"         yaml:"avatar_url,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"         yaml:"created_at,omitempty"`
	LastActivityOn   *Date      `json:"last_activity_on,omitempty"   yaml:"last_activity_on,omitempty"`

	CustomAttributes []CustomAttribute `json:"custom_attributes,omitempty" yaml:"custom_attributes,omitempty"`
}

// SSHKey represents an SSH public key attached to a user. UserID is stamped
// by the client for admin-scoped fetches; the server does not return it.
type SSHKey struct {
	ID        int64      `json:"id"                   yaml:"id"`
	Title     string     `json:"title"                yaml:"title"`
	Key       string     `json:"key"                  yaml:"key"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UserID    int64      `json:"-"                    yaml:"user_id,omitempty"`
}

// TokenScope is a capability granted to an impersonation token.
type TokenScope string

const (
	TokenScopeAPI      TokenScope = "api"
	TokenScopeReadUser TokenScope = "read_user"
)

// ImpersonationState filters impersonation token listings.
type ImpersonationState string

const (
	ImpersonationStateAll      ImpersonationState = "all"
	ImpersonationStateActive   ImpersonationState = "active"
	ImpersonationStateInactive ImpersonationState = "inactive"
)

// ImpersonationToken represents a token an administrator created on behalf
// of another user. Token is only populated in the create response.
type ImpersonationToken struct {
	ID            int64        `json:"id"                   yaml:"id"`
	Name          string       `json:"name"                 yaml:"name"`
	Token         string       `json:"token,omitempty"      yaml:"token,omitempty"`
	Active        bool         `json:"active"               yaml:"active"`
	Revoked       bool         `json:"revoked"              yaml:"revoked"`
	Impersonation bool         `json:"impersonation"        yaml:"impersonation"`
	Scopes        []TokenScope `json:"scopes"               yaml:"scopes"`
	ExpiresAt     *Date        `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	CreatedAt     *time.Time   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Email represents a secondary email address on an account.
type Email struct {
	ID          int64      `json:"id"                     yaml:"id"`
	Email       string     `json:"email"                  yaml:"email"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" yaml:"confirmed_at,omitempty"`
}

// CustomAttribute is an arbitrary key/value pair attached to a user.
type CustomAttribute struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Version represents the server version endpoint response.
type Version struct {
	Version  string `json:"version"  yaml:"version"`
	Revision string `json:"revision" yaml:"revision"`
}
