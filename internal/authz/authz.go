// Package authz decides whether a principal may perform an action on the blog.
// It holds no state and performs no I/O.
package authz

import "github.com/geocoder89/inkwell/internal/domain/user"

type Action string

const (
	ViewPost      Action = "view_post"
	CreatePost    Action = "create_post"
	EditPost      Action = "edit_post"
	DeletePost    Action = "delete_post"
	CreateComment Action = "create_comment"
	SubmitContact Action = "submit_contact"
)

const (
	ReasonAuthRequired = "authentication required"
	ReasonForbidden    = "forbidden"
	ReasonUnknown      = "unknown action"
)

// Principal is the identity behind a request. The zero value is anonymous.
type Principal struct {
	UserID int64
	Role   string
}

func Anonymous() Principal {
	return Principal{}
}

func Authenticated(userID int64, role string) Principal {
	return Principal{UserID: userID, Role: role}
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsAdmin() bool {
	return p.IsAuthenticated() && p.Role == user.RoleAdmin
}

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

func Authorize(p Principal, a Action) Decision {
	switch a {
	case ViewPost, SubmitContact:
		return allow()
	case CreateComment:
		if !p.IsAuthenticated() {
			return deny(ReasonAuthRequired)
		}
		return allow()
	case CreatePost, EditPost, DeletePost:
		if !p.IsAdmin() {
			return deny(ReasonForbidden)
		}
		return allow()
	default:
		return deny(ReasonUnknown)
	}
}

// Explain turns a deny reason into a message fit for the caller.
func Explain(reason string) string {
	switch reason {
	case ReasonAuthRequired:
		return "You need to log in to do that."
	case ReasonForbidden:
		return "Only the administrator can do that."
	default:
		return "Forbidden"
	}
}
