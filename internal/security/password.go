package security

import (
	"unicode/utf8"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 8

var (
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters")
	ErrPasswordComposition = errors.New("password must contain at least one letter and one number")
)

// HashCost is the bcrypt work factor. Tests lower it.
var HashCost = bcrypt.DefaultCost

// CheckPasswordStrength applies the account password policy: at least eight
// ASCII letters or digits, with at least one of each.
func CheckPasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			return ErrPasswordComposition
		}
	}
	if !letter || !digit {
		return ErrPasswordComposition
	}
	return nil
}

func HashPassword(password string) (string, error) {
	if err := CheckPasswordStrength(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func VerifyPassword(password, encoded string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}
