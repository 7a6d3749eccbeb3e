package order

import (
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// violations maps struct namespaces to the error reported for them.
var violations = map[string]error{
	"OrderRequest.Items":            ErrNoItems,
	"OrderRequest.Shipping.Country": ErrMissingShipping,
}

// Validator checks decoded requests against the struct tags of OrderRequest.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns a *ValidationError for the first violation in field order:
// items are checked before the shipping country.
func (v *Validator) Validate(req *OrderRequest) error {
	err := v.v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "validate order")
	}
	first := fieldErrs[0]
	verr, ok := violations[first.StructNamespace()]
	if !ok {
		verr = errors.Errorf("invalid %s", first.Field())
	}
	return &ValidationError{Field: first.StructNamespace(), Err: verr}
}
