package helper

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"blood_donation_backend/internals/constants"
	"blood_donation_backend/internals/helpers/apperror"
	"blood_donation_backend/internals/helpers/dbtime"
)

var (
	phoneRe    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

// Validator wraps validator.v10 with the custom tags used by the models:
//
//	bloodgroup  one of the eight ABO/Rh values
//	phone       optional leading '+' then 7-15 digits
//	username    letters, digits, '_' and '.'
//	notfuture   a date that is not after today (per the injected clock)
type Validator struct {
	v     *validator.Validate
	clock dbtime.Clock
}

func NewValidator(clock dbtime.Clock) *Validator {
	if clock == nil {
		clock = dbtime.SystemClock{}
	}
	v := validator.New(validator.WithRequiredStructEnabled())

	// pakai nama json di pesan error
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	out := &Validator{v: v, clock: clock}
	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return constants.BloodGroup(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notfuture", out.notFuture)
	return out
}

func (val *Validator) Clock() dbtime.Clock { return val.clock }

func (val *Validator) notFuture(fl validator.FieldLevel) bool {
	var t time.Time
	switch x := fl.Field().Interface().(type) {
	case time.Time:
		t = x
	case datatypes.Date:
		t = time.Time(x)
	default:
		return false
	}
	if t.IsZero() {
		return true
	}
	today := dbtime.StartOfDay(val.clock.Now().UTC())
	return !dbtime.StartOfDay(t.UTC()).After(today)
}

// Struct validates s and converts failures into an apperror validation error
// naming every offending field.
func (val *Validator) Struct(entity string, s any) error {
	if err := val.v.Struct(s); err != nil {
		return formatValidationError(entity, err)
	}
	return nil
}

// formatValidationError mengubah error validasi menjadi format yang lebih jelas
func formatValidationError(entity string, err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make(map[string]string, len(validationErrs))
	first := validationErrs[0]
	for _, fieldErr := range validationErrs {
		name := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required":
			messages[name] = name + " is required."
		case "email":
			messages[name] = "invalid email format."
		case "url":
			messages[name] = "invalid url."
		case "min":
			if isNumeric(fieldErr.Kind()) {
				messages[name] = name + " must be at least " + fieldErr.Param() + "."
			} else {
				messages[name] = name + " must be at least " + fieldErr.Param() + " characters."
			}
		case "max":
			if isNumeric(fieldErr.Kind()) {
				messages[name] = name + " must be at most " + fieldErr.Param() + "."
			} else {
				messages[name] = name + " must be at most " + fieldErr.Param() + " characters."
			}
		case "oneof":
			messages[name] = name + " must be one of " + fieldErr.Param() + "."
		case "bloodgroup":
			messages[name] = name + " must be one of A+ A- B+ B- AB+ AB- O+ O-."
		case "phone":
			messages[name] = name + " must be 7-15 digits with an optional leading +."
		case "username":
			messages[name] = name + " may only contain letters, digits, '_' and '.'."
		case "notfuture":
			messages[name] = name + " must not be in the future."
		default:
			messages[name] = "invalid format."
		}
	}
	out := apperror.Validation(entity, messages)
	if len(validationErrs) == 1 {
		out.Field = first.Field()
		out.Constraint = first.Tag()
	}
	return out
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
