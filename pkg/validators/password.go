package validators

import "errors"

const (
	MinPasswordLength = 4
	MaxPasswordLength = 255
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 4 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if len(p) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
