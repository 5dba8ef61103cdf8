package registry

import "strings"

// Role is the participant's place in the authorization hierarchy.
type Role string

const (
	RoleDeveloper Role = "Developer"
	RoleTester    Role = "Tester"
	RoleUser      Role = "User"
)

// ParseRole normalizes arbitrary casing ("developer", "TESTER") to the
// canonical role value. ok is false for anything outside the domain.
func ParseRole(s string) (Role, bool) {
	switch {
	case strings.EqualFold(s, string(RoleDeveloper)):
		return RoleDeveloper, true
	case strings.EqualFold(s, string(RoleTester)):
		return RoleTester, true
	case strings.EqualFold(s, string(RoleUser)):
		return RoleUser, true
	default:
		return "", false
	}
}

// Level ranks roles for hierarchy comparison. Unrecognized roles rank 0,
// below every real role.
func (r Role) Level() int {
	switch r {
	case RoleDeveloper:
		return 3
	case RoleTester:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// Mood colors the assistant's personality toward a participant.
type Mood string

const (
	MoodGood    Mood = "good"
	MoodBad     Mood = "bad"
	MoodNeutral Mood = "neutral"
)

// ParseMood normalizes arbitrary casing to the canonical mood value.
func ParseMood(s string) (Mood, bool) {
	switch m := Mood(strings.ToLower(strings.TrimSpace(s))); m {
	case MoodGood, MoodBad, MoodNeutral:
		return m, true
	default:
		return "", false
	}
}

// User is one participant identity record. Permissions is carried for future
// use; nothing reads it yet.
type User struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Mood        Mood     `json:"mood"`
	Permissions []string `json:"permissions"`
	Trustable   bool     `json:"trustable"`
}

// Partial carries the fields of an update; nil fields are left untouched.
type Partial struct {
	Name        *string
	Role        *Role
	Mood        *Mood
	Permissions *[]string
	Trustable   *bool
}

func (p Partial) apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Mood != nil {
		u.Mood = *p.Mood
	}
	if p.Permissions != nil {
		u.Permissions = append([]string(nil), (*p.Permissions)...)
	}
	if p.Trustable != nil {
		u.Trustable = *p.Trustable
	}
}
