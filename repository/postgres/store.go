// Package postgres implements the repositories on gorm over PostgreSQL.
package postgres

import (
	"errors"
	"fmt"
	"strings"

	"gympro-backend/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// NewStore wires every repository to db.
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Members:         &memberRepository{db: db},
		MembershipTypes: &membershipTypeRepository{db: db},
		Memberships:     &membershipRepository{db: db},
		Payments:        &paymentRepository{db: db},
		Attendance:      &attendanceRepository{db: db},
		Users:           &userRepository{db: db},
		Staff:           &staffRepository{db: db},
		Reminders:       &reminderLogRepository{db: db},
		Sequences:       &sequenceRepository{db: db},
	}
}

// translate maps unique violations onto repository.ErrDuplicate whether or
// not gorm's own error translation is switched on.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
