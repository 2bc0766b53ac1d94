package account

import (
	"time"

	"github.com/nerrad567/opencrate/record"
)

// User statuses.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// User is a person with a login.
type User struct {
	ID        int64      `db:"id" json:"id"`
	Ref       string     `db:"ref" json:"ref"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Status    string     `db:"status" json:"status"`
	Logins    int        `db:"logins" json:"logins"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Defaults implements record.Defaulter.
func (User) Defaults() map[string]any {
	return map[string]any{
		"status": StatusActive,
		"logins": 0,
	}
}

// Users maps User onto the users table.
var Users = record.MustTable[User]("users", "id")
