package workflow

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"care_wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// Rule checks a draft and returns the message to show, or nil.
type Rule func(Draft) error

// Field formats shared by the flows.
var (
	EmailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	PhoneFormat = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	DateFormat  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	TimeFormat  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	ageFormat = regexp.MustCompile(`^(\d{1,2}|1[0-2]\d|130)$`)
)

// Validate runs rules in order and returns the first failure only.
func Validate(rules ...Rule) Rule {
	return func(d Draft) error {
		for _, r := range rules {
			if err := r(d); err != nil {
				return err
			}
		}
		return nil
	}
}

// Required fails when the trimmed field is empty.
func Required(field, msg string) Rule {
	return func(d Draft) error {
		if strings.TrimSpace(d[field]) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

// MinLength fails when the field has fewer than n characters.
func MinLength(field string, n int, msg string) Rule {
	return func(d Draft) error {
		if len([]rune(d[field])) < n {
			return errors.New(msg)
		}
		return nil
	}
}

// Matches fails when a non-empty field does not match re. Pair it with
// Required for mandatory fields.
func Matches(field string, re *regexp.Regexp, msg string) Rule {
	return func(d Draft) error {
		v := strings.TrimSpace(d[field])
		if v != "" && !re.MatchString(v) {
			return errors.New(msg)
		}
		return nil
	}
}

// EqualFields fails when the two fields differ.
func EqualFields(a, b, msg string) Rule {
	return func(d Draft) error {
		if d[a] != d[b] {
			return errors.New(msg)
		}
		return nil
	}
}

// Checked fails unless the flag field is "true".
func Checked(field, msg string) Rule {
	return func(d Draft) error {
		if d[field] != "true" {
			return errors.New(msg)
		}
		return nil
	}
}

// PositiveAmount fails unless the field parses as a number above zero with
// at most two decimal places.
func PositiveAmount(field, msg string) Rule {
	return func(d Draft) error {
		v, err := decimal.NewFromString(strings.TrimSpace(d[field]))
		if err != nil || !domain.IsMoney(v) {
			return errors.New(msg)
		}
		return nil
	}
}

// FutureOrToday fails when the YYYY-MM-DD field is before today according
// to now.
func FutureOrToday(field string, now func() time.Time, msg string) Rule {
	return func(d Draft) error {
		day, err := time.ParseInLocation("2006-01-02", d[field], time.Local)
		if err != nil {
			return errors.New(msg)
		}
		t := now()
		today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		if day.Before(today) {
			return errors.New(msg)
		}
		return nil
	}
}

// MaxLength fails when the field has more than n characters.
func MaxLength(field string, n int, msg string) Rule {
	return func(d Draft) error {
		if len([]rune(d[field])) > n {
			return errors.New(msg)
		}
		return nil
	}
}

// MaxBytes fails when the field's UTF-8 encoding is longer than n bytes.
func MaxBytes(field string, n int, msg string) Rule {
	return func(d Draft) error {
		if len(d[field]) > n {
			return errors.New(msg)
		}
		return nil
	}
}

// OneOf fails unless the field is one of options.
func OneOf(field string, options []string, msg string) Rule {
	return func(d Draft) error {
		for _, o := range options {
			if d[field] == o {
				return nil
			}
		}
		return errors.New(msg)
	}
}

// Date fails when a non-empty field is not a real YYYY-MM-DD date.
func Date(field, msg string) Rule {
	return func(d Draft) error {
		v := strings.TrimSpace(d[field])
		if v == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return errors.New(msg)
		}
		return nil
	}
}
