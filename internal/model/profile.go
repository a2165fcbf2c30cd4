package model

import "contentbe/internal/api/dto"

// Role is the access role of a profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the owner side of the content model. A profile owns zero or
// more articles via their profile_id back-reference.
type Profile struct {
	Meta
	Name string `db:"name" json:"name"`
	Role Role   `db:"role" json:"role"`
}

// NewProfile creates an unsaved profile with the default user role.
func NewProfile(name string) *Profile {
	return &Profile{
		Meta: NewMeta(),
		Name: name,
		Role: RoleUser,
	}
}

// ResponseData implements respond.Responder.
func (p *Profile) ResponseData() any {
	return dto.ProfileData{
		ID:   p.ID,
		Name: p.Name,
		Role: string(p.Role),
	}
}
