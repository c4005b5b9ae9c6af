// Package repository contains the data access layer over the transactional
// MySQL store.  This file defines the sentinel errors shared across
// repositories so that services and handlers can distinguish failure modes
// without string matching.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrScheduleNotFound indicates the requested schedule row does not exist.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrShowNotFound indicates the requested show row does not exist.
var ErrShowNotFound = errors.New("show not found")

// ErrVersionConflict is returned when a conditional update guarded by an
// optimistic version token matched zero rows: the caller read a version
// that is no longer current and must re-fetch and retry.  The losing write
// mutates nothing.
var ErrVersionConflict = errors.New("version conflict")

// ErrConflict signals that an insert or update violated a uniqueness
// constraint, e.g. creating a second schedule with the same name for one
// client.  Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by user creation when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateEntry reports whether err is MySQL error 1062 (duplicate key).
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
