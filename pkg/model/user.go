package model

import "time"

// User roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User statuses.
const (
	UserActive   = "active"
	UserInactive = "inactive"
	UserBanned   = "banned"
)

// User is a dashboard account.
type User struct {
	Base              `yaml:",inline"`
	Name              string     `json:"name" yaml:"name"`
	Email             string     `json:"email" yaml:"email"`
	Role              string     `json:"role" yaml:"role"`
	Status            string     `json:"status" yaml:"status"`
	UserGroupID       int64      `json:"userGroupId" yaml:"userGroupId"`
	TrafficLimit      int64      `json:"trafficLimit" yaml:"trafficLimit"`
	TrafficUsed       int64      `json:"trafficUsed" yaml:"trafficUsed"`
	ExpireAt          *time.Time `json:"expireAt,omitempty" yaml:"expireAt,omitempty"`
	SubscriptionToken string     `json:"subscriptionToken" yaml:"subscriptionToken"`
	PasswordHash      string     `json:"-" yaml:"passwordHash,omitempty"`
}

// WithBase returns a copy of u with its shared fields replaced.
func (u User) WithBase(b Base) User {
	u.Base = b
	return u
}

// Clone returns a deep copy of u.
func (u User) Clone() User {
	u.ExpireAt = cloneTime(u.ExpireAt)
	return u
}

// UserPatch is the body of user create and update requests.
type UserPatch struct {
	Name         *string             `json:"name"`
	Email        *string             `json:"email"`
	Role         *string             `json:"role"`
	Status       *string             `json:"status"`
	UserGroupID  *int64              `json:"userGroupId"`
	TrafficLimit *int64              `json:"trafficLimit"`
	TrafficUsed  *int64              `json:"trafficUsed"`
	ExpireAt     Nullable[time.Time] `json:"expireAt"`
	Password     *string             `json:"password"`
	// PasswordHash is filled in from Password by the handler before the
	// patch is applied; it is never read from the request.
	PasswordHash *string `json:"-"`
}

// Apply copies the present fields of p onto u.
func (p UserPatch) Apply(u *User) {
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Role, p.Role)
	set(&u.Status, p.Status)
	set(&u.UserGroupID, p.UserGroupID)
	set(&u.TrafficLimit, p.TrafficLimit)
	set(&u.TrafficUsed, p.TrafficUsed)
	if p.ExpireAt.Set {
		u.ExpireAt = cloneTime(p.ExpireAt.Value)
	}
	set(&u.PasswordHash, p.PasswordHash)
}
