package api

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxPictureKB is the upload ceiling for recipe pictures.
const maxPictureKB = 2048

var pictureExtensions = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the wire name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// fieldErrors is a mapping from field name to ordered human-readable
// messages, rendered inside a 422 envelope.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, message string) {
	fe[field] = append(fe[field], message)
}

// validateStruct runs the validator over req and folds the outcome into
// field-keyed messages.
func validateStruct(req interface{}) fieldErrors {
	errs := fieldErrors{}
	err := validate.Struct(req)
	if err == nil {
		return errs
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.add("request", "The request could not be validated.")
		return errs
	}

	for _, fe := range verrs {
		errs.add(fe.Field(), messageFor(fe))
	}
	return errs
}

func messageFor(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", field, fe.Param())
	case "eqfield":
		return "The password confirmation does not match."
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// validatePicture checks an optional upload against the format and size
// rules. A nil header is a no-op.
func validatePicture(header *multipart.FileHeader, errs fieldErrors) string {
	if header == nil {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := pictureExtensions[ext]
	if !ok {
		errs.add("picture", "The picture must be a file of type: jpeg, png, jpg, gif.")
		return ""
	}
	if header.Size > maxPictureKB*1024 {
		errs.add("picture", fmt.Sprintf("The picture must not be greater than %d kilobytes.", maxPictureKB))
		return ""
	}
	return contentType
}
