package metrics

import (
	"unicode"

	"github.com/pkg/errors"
)

func validateMetricName(name string) error {
	if len(name) == 0 {
		return errors.New("name cannot be empty")
	}

	if !unicode.IsLetter(rune(name[0])) {
		return errors.New("first character must be a letter")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return errors.Errorf("invalid character %q in metric name", r)
		}
	}

	return nil
}
