package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AlexZinkM/sui-local-wallet/internal/model"
)

// Policy is a minimum password strength rule.
type Policy uint8

const (
	// PolicyBasic only requires a non-empty password.
	PolicyBasic Policy = iota

	// PolicyStrict requires at least 8 characters with lower and upper case
	// letters, a digit and a special character.
	PolicyStrict
)

// ParsePolicy maps a configuration value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "basic":
		return PolicyBasic, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyBasic, fmt.Errorf("unknown password policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "basic"
}

// Check returns a model.ErrValidation error describing the first rule the
// password breaks, or nil.
func (p Policy) Check(password []byte) error {
	if len(password) == 0 {
		return fmt.Errorf("%w: password cannot be empty", model.ErrValidation)
	}
	if p == PolicyBasic {
		return nil
	}

	pw := string(password)
	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", model.ErrValidation)
	}

	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		case !unicode.IsLetter(c):
			special = true
		}
	}

	switch {
	case !lower:
		return fmt.Errorf("%w: password must contain at least one lowercase letter", model.ErrValidation)
	case !upper:
		return fmt.Errorf("%w: password must contain at least one uppercase letter", model.ErrValidation)
	case !digit:
		return fmt.Errorf("%w: password must contain at least one digit", model.ErrValidation)
	case !special:
		return fmt.Errorf("%w: password must contain at least one special character", model.ErrValidation)
	}
	return nil
}

// Score rates a password from 0 to 5.
func Score(password []byte) int {
	pw := string(password)
	n := len([]rune(pw))

	score := 0
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}

	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		case !unicode.IsLetter(c):
			special = true
		}
	}
	for _, has := range []bool{lower, upper, digit, special} {
		if has {
			score++
		}
	}

	return min(score, 5)
}

// StrengthLabel describes a Score result.
func StrengthLabel(score int) string {
	switch {
	case score <= 1:
		return "Very Weak"
	case score == 2:
		return "Weak"
	case score == 3:
		return "Fair"
	case score == 4:
		return "Good"
	default:
		return "Strong"
	}
}
