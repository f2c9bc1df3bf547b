package errorvalues

import "errors"

var (
	ErrUserExists       = errors.New("such user already exists")
	ErrUserNotFound     = errors.New("user doesn't exist")
	ErrWrongCredentials = errors.New("wrong name or password")
	ErrInvalidToken     = errors.New("invalid token")

	ErrValidation = errors.New("validation failed")

	ErrHabitNotFound   = errors.New("habit doesn't exist")
	ErrHabitExists     = errors.New("user already has a habit with this name")
	ErrOwnerNotFound   = errors.New("habit owner doesn't exist")
	ErrWrongOwner      = errors.New("habit belongs to a different user")
	ErrNothingToUpdate = errors.New("no update data provided")

	ErrDateInFuture = errors.New("completion date is in the future")
	ErrDateTooOld   = errors.New("completion date is outside the backfill window")
)
