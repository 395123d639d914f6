package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/checkmarble/datalab/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// InitValidator registers the custom binding tags on gin's validator, and makes validation errors
// refer to fields by their json (or form) name.
func InitValidator() {
	// Rows are decoded into map[string]any: keep big integers exact
	binding.EnableDecoderUseNumber = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerValidations(v)
	}
}

func registerValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(fieldNameFromTag)
	_ = v.RegisterValidation("dataset_name", validateDatasetName)
}

func validateDatasetName(fl validator.FieldLevel) bool {
	_, err := models.NewDatasetName(fl.Field().String())
	return err == nil
}

func fieldNameFromTag(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form", "uri"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// adaptFieldValidationError turns a validation failure into a message that can be returned to the caller.
func adaptFieldValidationError(fe validator.FieldError) string {
	inner := func(fe validator.FieldError) string {
		switch fe.ActualTag() {
		case "required":
			return "is required"
		case "oneof":
			return fmt.Sprintf("must be one of %s", strings.Join(strings.Split(fe.Param(), " "), ", "))
		case "gt":
			if reflect.TypeOf(fe.Value()).Kind() == reflect.Slice {
				return fmt.Sprintf("must have more than %s items", fe.Param())
			}
			return fmt.Sprintf("must be greater than %s", fe.Param())
		case "lte", "max":
			return fmt.Sprintf("must be at most %s", fe.Param())
		case "min":
			return fmt.Sprintf("must be at least %s", fe.Param())
		case "required_with":
			return fmt.Sprintf("is required when used with %s", fe.Param())
		case "uuid":
			return "should be a UUID"
		case "dataset_name":
			return fmt.Sprintf("may only contain letters, digits and underscores, and at most %d characters",
				models.MAX_DATASET_NAME_LENGTH)
		}
		return "is invalid"
	}

	return fmt.Sprintf("field `%s` %s", fe.Field(), inner(fe))
}
