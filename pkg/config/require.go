package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMissing is wrapped by Required when one or more keys are empty.
var ErrMissing = errors.New("missing required config")

// Required reports every empty key in one error, sorted by name.
func Required(values map[string]string) error {
	var missing []string
	for key, v := range values {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
}
