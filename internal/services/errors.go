package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError marks client-correctable input problems: duplicate names,
// missing fields, malformed uploads. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Scope restricts queries to the caller's organization. Superadmins are
// unscoped.
type Scope struct {
	OrganizationID uint
	SuperAdmin     bool
}

func (sc Scope) apply(db *gorm.DB) *gorm.DB {
	if sc.SuperAdmin {
		return db
	}
	return db.Where("organization_id = ?", sc.OrganizationID)
}
