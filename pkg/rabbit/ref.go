package rabbit

import (
	"net/url"
	"strconv"
	"strings"
)

// UserRef identifies a user for path construction. A reference may carry a
// numeric ID, a raw username, or a full User record; PathSegment resolves it
// to the string form used in the request path.
type UserRef struct {
	kind refKind
	id   int64
	name string
	user *User
}

type refKind int

const (
	refNone refKind = iota
	refID
	refName
	refUser
)

// UserID references a user by numeric ID.
func UserID(id int64) UserRef {
	return UserRef{kind: refID, id: id}
}

// Username references a user by username.
func Username(name string) UserRef {
	return UserRef{kind: refName, name: name}
}

// UserValue references a user through a fetched User record, preferring its
// numeric ID when present and positive, else its username.
func UserValue(user *User) UserRef {
	return UserRef{kind: refUser, user: user}
}

// PathSegment resolves the reference to a path segment. Usernames are
// trimmed and path-escaped, so a space becomes %20 rather than the +
// produced by query encoding.
func (r UserRef) PathSegment() (string, error) {
	switch r.kind {
	case refID:
		if r.id <= 0 {
			return "", InvalidArgumentf("user ID must be positive, got %d", r.id)
		}

		return strconv.FormatInt(r.id, 10), nil

	case refName:
		name := strings.TrimSpace(r.name)
		if name == "" {
			return "", NewInvalidArgumentError(ErrUserRefRequired)
		}

		return url.PathEscape(name), nil

	case refUser:
		if r.user == nil {
			return "", NewInvalidArgumentError(ErrUserRefRequired)
		}

		if r.user.ID > 0 {
			return strconv.FormatInt(r.user.ID, 10), nil
		}

		if name := strings.TrimSpace(r.user.Username); name != "" {
			return url.PathEscape(name), nil
		}

		return "", NewInvalidArgumentError(ErrUserRefRequired)

	default:
		return "", NewInvalidArgumentError(ErrUserRefRequired)
	}
}
