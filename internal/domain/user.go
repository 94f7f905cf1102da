package domain

// AnonymousName is shown for bidders missing from the user directory.
const AnonymousName = "Anonymous"

// User is read-only reference data describing a marketplace participant.
type User struct {
	ID      int64  `json:"id" mapstructure:"id"`
	Handle  string `json:"-" mapstructure:"handle"`
	Name    string `json:"name" mapstructure:"name"`
	Credits int    `json:"credits" mapstructure:"credits"`
}

// UserDirectory resolves users by ID. Implementations must be safe for concurrent reads.
type UserDirectory interface {
	Lookup(id int64) (User, bool)
	All() map[string]User
}

// StaticDirectory is a UserDirectory over a fixed list of users.
type StaticDirectory struct {
	byID     map[int64]User
	byHandle map[string]User
}

// NewStaticDirectory indexes users by ID and handle. Later duplicates win.
func NewStaticDirectory(users []User) *StaticDirectory {
	d := &StaticDirectory{
		byID:     make(map[int64]User, len(users)),
		byHandle: make(map[string]User, len(users)),
	}
	for _, u := range users {
		d.byID[u.ID] = u
		if u.Handle != "" {
			d.byHandle[u.Handle] = u
		}
	}
	return d
}

// Lookup returns the user with the given ID.
func (d *StaticDirectory) Lookup(id int64) (User, bool) {
	u, ok := d.byID[id]
	return u, ok
}

// All returns a copy of the handle -> user mapping.
func (d *StaticDirectory) All() map[string]User {
	out := make(map[string]User, len(d.byHandle))
	for k, v := range d.byHandle {
		out[k] = v
	}
	return out
}

// DisplayName resolves a user ID to a name, falling back to AnonymousName.
func DisplayName(dir UserDirectory, id int64) string {
	if dir == nil {
		return AnonymousName
	}
	if u, ok := dir.Lookup(id); ok && u.Name != "" {
		return u.Name
	}
	return AnonymousName
}
