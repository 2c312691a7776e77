package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store-level failures, independent of the SQL driver in use.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrForeignKey     = errors.New("foreign key violation")
	ErrDuplicate      = errors.New("duplicate key")
)

// translate maps driver and gorm errors onto the sentinels above. gorm's
// TranslateError covers the common cases; the message checks catch drivers
// whose translator misses a code.
func translate(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrForeignKey
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key constraint"):
		return ErrForeignKey
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "duplicate entry"):
		return ErrDuplicate
	}
	return err
}
