package types

import "github.com/thurbox/thurbox/internal/thurerr"

func errValidation(field, reason string) error {
	return thurerr.Validation(field, reason)
}
