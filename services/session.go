package services

import (
	"time"

	"gympro-backend/models"

	"github.com/google/uuid"
)

// Actor is the staff login an operation is performed on behalf of. It is
// passed explicitly; nothing in this package keeps a current user.
type Actor struct {
	UserID   uuid.UUID
	StaffID  *uuid.UUID
	Username string
	Role     string
}

// SystemActor attributes work done by scheduled jobs.
var SystemActor = Actor{Username: "system", Role: "system"}

// ActorFromUser builds the acting identity for a logged-in user.
func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, StaffID: u.StaffID, Username: u.Username, Role: u.Role}
}

// Clock supplies the current time. Services default to UTC wall time.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}
