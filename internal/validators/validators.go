package validators

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskmaster.com/taskmaster/internal/constants"
	apperrors "taskmaster.com/taskmaster/internal/errors"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	rules := map[string]validator.Func{
		"emailshape": func(fl validator.FieldLevel) bool {
			return emailShape.MatchString(fl.Field().String())
		},
		"taskpriority": func(fl validator.FieldLevel) bool {
			return constants.TaskPriority(fl.Field().String()).Valid()
		},
		"taskstatus": func(fl validator.FieldLevel) bool {
			return constants.TaskStatus(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	return v
}

// Struct checks s against its validate tags and reports every failing field
// in a single validation error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}
	return apperrors.NewValidationError(messages...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "taskpriority":
		return oneOf(fe.Field(), constants.Priorities())
	case "taskstatus":
		return oneOf(fe.Field(), constants.Statuses())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func oneOf[T ~string](field string, values []T) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
}
