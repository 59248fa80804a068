package models

// User is the profile record returned by /login, /register and /profile.
type User struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// SignUpDraft is the payload of POST /register.
type SignUpDraft struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=restaurant association"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address  string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// ProfilePatch carries the fields to change; nil fields are left untouched.
// Role is deliberately absent: it only changes through SetRole.
type ProfilePatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
}

func (p ProfilePatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil
}

// Apply returns a copy of u with the patch merged in.
func (p ProfilePatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	return u
}
