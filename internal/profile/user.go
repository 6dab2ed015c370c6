// ABOUTME: User entity and the UserPatch merge type for profile edits
// ABOUTME: One local user record plus a directory of known users for search

package profile

// Role identifies the kind of account.
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// User is a profile record. The service holds one current user plus a
// directory of known users; there is no authentication enforcement here.
type User struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            Role     `json:"role"`
	Avatar          string   `json:"avatar,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Location        string   `json:"location,omitempty"`
	Sport           string   `json:"sport,omitempty"`
	Position        string   `json:"position,omitempty"`
	Achievements    []string `json:"achievements,omitempty"`
	Experience      string   `json:"experience,omitempty"`
	TeamAffiliation string   `json:"teamAffiliation,omitempty"`
}

// UserPatch lists the fields a caller may change on the current user.
// Nil fields are left untouched.
type UserPatch struct {
	Name            *string
	Avatar          *string
	Bio             *string
	Location        *string
	Sport           *string
	Position        *string
	Achievements    *[]string
	Experience      *string
	TeamAffiliation *string
}

// apply merges the patch into u.
func (patch UserPatch) apply(u *User) {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Location != nil {
		u.Location = *patch.Location
	}
	if patch.Sport != nil {
		u.Sport = *patch.Sport
	}
	if patch.Position != nil {
		u.Position = *patch.Position
	}
	if patch.Achievements != nil {
		u.Achievements = *patch.Achievements
	}
	if patch.Experience != nil {
		u.Experience = *patch.Experience
	}
	if patch.TeamAffiliation != nil {
		u.TeamAffiliation = *patch.TeamAffiliation
	}
}
