package manager

import "hackdash/dao/model"

// Role is what a request is allowed to do, resolved once per request.
type Role uint8

const (
	RoleAnonymous Role = iota
	RoleMember
	RoleAdmin
)

// Principal is the authenticated context of a request. The zero value is
// an anonymous caller.
type Principal struct {
	User *model.User
}

func (p Principal) Role() Role {
	switch {
	case p.User == nil:
		return RoleAnonymous
	case p.User.IsAdmin:
		return RoleAdmin
	default:
		return RoleMember
	}
}

func (p Principal) Authenticated() bool {
	return p.User != nil
}

func (p Principal) IsAdmin() bool {
	return p.Role() == RoleAdmin
}

func requireUser(p Principal) (*model.User, error) {
	if p.User == nil {
		return nil, ErrUnauthorized
	}
	return p.User, nil
}

func requireAdmin(p Principal) (*model.User, error) {
	if !p.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return p.User, nil
}
