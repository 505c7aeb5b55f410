package models

import "time"

// Role is the coarse permission tier carried in tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Toggle flips USER and ADMIN.
func (r Role) Toggle() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// User is an account row.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Picture      *BlobRef
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the client-facing projection of a User.
type UserView struct {
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Role       Role      `json:"role"`
	PictureURL string    `json:"pictureUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View strips credentials and internal identifiers.
func (u User) View() UserView {
	v := UserView{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Picture != nil {
		v.PictureURL = u.Picture.URL
	}
	return v
}

// Registration carries the fields needed to create an account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserPatch lists the self-service fields a user may change.
type UserPatch struct {
	Password  Optional[string] `json:"password"`
	FirstName Optional[string] `json:"firstName"`
	LastName  Optional[string] `json:"lastName"`
}

// Session is returned by registration and login.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}
