package models

import "encoding/json"

// User is the authenticated user's profile as returned by the backend.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// Extra keeps profile fields the shell does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known profile fields and keeps the rest in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type known User
	var base known
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "id")
	delete(all, "name")
	delete(all, "email")

	*u = User(base)
	if len(all) > 0 {
		u.Extra = all
	}
	return nil
}

// Initial returns the first letter of the user's name, or "U".
func (u *User) Initial() string {
	if u == nil {
		return "U"
	}
	for _, r := range u.Name {
		return string(r)
	}
	return "U"
}
