package sessiondelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/go-petr/beverage-pos/internal/sessionservice"
)

// ValidCommand checks that the bound command name is one the session understands.
var ValidCommand validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if name, ok := fieldLevel.Field().Interface().(string); ok {
		return sessionservice.IsCommand(name)
	}

	return false
}
