package validator

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Binding tags registered on gin's validator engine
const (
	TagFormType    = "formtype"
	TagBookingType = "bookingtype"
	TagPhone       = "inphone"
)

// fields checks single values against the built-in tags outside of request binding
var fields = validator.New()

// IsEmail reports whether s is a bare address accepted by the email tag.
// Display-name forms such as "Asha <asha@example.com>" are rejected.
func IsEmail(s string) bool {
	return fields.Var(s, "required,email") == nil
}

// oneOf builds a field validator accepting only the given strings
func oneOf(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}

// Register attaches the custom tags to v
func Register(v *validator.Validate, formTypes, bookingTypes []string) error {
	phones := NewPhoneValidator()

	rules := map[string]validator.Func{
		TagFormType:    oneOf(formTypes),
		TagBookingType: oneOf(bookingTypes),
		TagPhone: func(fl validator.FieldLevel) bool {
			return phones.IsValid(fl.Field().String())
		},
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterBindings attaches the custom tags to gin's default validator
func RegisterBindings(formTypes, bookingTypes []string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return Register(v, formTypes, bookingTypes)
}

// FieldErrors flattens validation failures into field -> tag pairs.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
