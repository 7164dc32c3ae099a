// Package contact defines the user record and the operations applied to an
// in-memory collection of users.
package contact

import (
	"fmt"
	"strings"
	"time"
)

// User is a single contact record. Field order matches the on-disk layout.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Complete bool   `json:"complete"`
}

// Fields holds operator-supplied values for create and update.
type Fields struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// FilterMode selects which users a listing shows.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterComplete
	FilterIncomplete
)

// FilterModes lists every mode in menu order.
var FilterModes = []FilterMode{FilterAll, FilterComplete, FilterIncomplete}

// String returns the mode name used in logs.
func (m FilterMode) String() string {
	switch m {
	case FilterAll:
		return "all"
	case FilterComplete:
		return "complete"
	case FilterIncomplete:
		return "incomplete"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// IsComplete reports whether both phone and address are present.
func IsComplete(phone, address string) bool {
	return phone != "" && address != ""
}

// NextID allocates an id for a new user. It is the creation time in
// milliseconds, bumped past the largest id already present so ids stay
// pairwise distinct under rapid creation.
func NextID(users []User, now time.Time) int64 {
	id := now.UnixMilli()
	for _, u := range users {
		if u.ID >= id {
			id = u.ID + 1
		}
	}
	return id
}

// Create appends a new user built from f and returns the grown collection
// along with the new record. Text fields are copied verbatim.
func Create(users []User, f Fields, now time.Time) ([]User, User) {
	u := User{
		ID:       NextID(users, now),
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		Address:  f.Address,
		Complete: IsComplete(f.Phone, f.Address),
	}
	return append(users, u), u
}

// FindByName returns the index of the first user whose name matches
// case-insensitively. Matching uses Unicode case folding, so names such as
// Greek "ς" and "σ" compare equal where lowercasing alone would not.
func FindByName(users []User, name string) (int, bool) {
	for i := range users {
		if strings.EqualFold(users[i].Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Update overwrites every field of u for which f carries a non-empty value.
// Complete is recomputed from the resolved phone and address.
func Update(u *User, f Fields) {
	if f.Name != "" {
		u.Name = f.Name
	}
	if f.Email != "" {
		u.Email = f.Email
	}
	if f.Phone != "" {
		u.Phone = f.Phone
	}
	if f.Address != "" {
		u.Address = f.Address
	}
	u.Complete = IsComplete(u.Phone, u.Address)
}

// DeleteByName removes every user whose name matches case-insensitively,
// using the same folding as FindByName.
// It returns the remaining users and how many were removed; when nothing
// matched the input slice is returned untouched.
func DeleteByName(users []User, name string) ([]User, int) {
	kept := make([]User, 0, len(users))
	for _, u := range users {
		if !strings.EqualFold(u.Name, name) {
			kept = append(kept, u)
		}
	}
	removed := len(users) - len(kept)
	if removed == 0 {
		return users, 0
	}
	return kept, removed
}

// Filter returns the users selected by mode, preserving order. The decision
// looks at phone and address directly rather than the stored flag.
func Filter(users []User, mode FilterMode) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		c := IsComplete(u.Phone, u.Address)
		switch {
		case mode == FilterAll,
			mode == FilterComplete && c,
			mode == FilterIncomplete && !c:
			out = append(out, u)
		}
	}
	return out
}
