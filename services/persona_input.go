package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// PersonaRequest is a decoded create/update body. Fields holds only the keys the
// client sent: json.Number, string, bool or nil for JSON bodies, plain strings for
// form bodies. Image is the uploaded file, nil when none was sent.
type PersonaRequest struct {
	Fields map[string]interface{}
	Image  io.Reader
}

// PersonaInput is the typed field set the rules run against. nil means absent
// or null.
type PersonaInput struct {
	Nombre *string `json:"nombre" validate:"required,notblank,max=255"`
	Email  *string `json:"email" validate:"required,email,max=255"`
	Edad   *int    `json:"edad" validate:"required,min=0"`
	Sexo   *string `json:"sexo" validate:"required,len=1"`
	Imagen *string `json:"imagen" validate:"omitempty,max=2048"`
}

// personaFields maps wire names to PersonaInput field names.
var personaFields = map[string]string{
	"nombre": "Nombre",
	"email":  "Email",
	"edad":   "Edad",
	"sexo":   "Sexo",
	"imagen": "Imagen",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return v
}

type fieldErrors map[string][]string

func (fe fieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// decodePersonaFields coerces raw values into PersonaInput. it returns the
// wire names that were present (explicit nulls included) and type errors.
func decodePersonaFields(raw map[string]interface{}) (PersonaInput, []string, fieldErrors) {
	var in PersonaInput
	var present []string
	errs := fieldErrors{}

	for _, name := range []string{"nombre", "email", "edad", "sexo", "imagen"} {
		value, ok := raw[name]
		if !ok {
			continue
		}
		present = append(present, name)

		if name == "edad" {
			n, isNull, err := coerceInt(value)
			if err != nil {
				errs.add(name, fmt.Sprintf("El campo %s debe ser un número entero.", name))
				continue
			}
			if !isNull {
				in.Edad = &n
			}
			continue
		}

		s, isNull, err := coerceString(value)
		if err != nil {
			errs.add(name, fmt.Sprintf("El campo %s debe ser una cadena de texto.", name))
			continue
		}
		if isNull {
			continue
		}
		switch name {
		case "nombre":
			in.Nombre = &s
		case "email":
			in.Email = &s
		case "sexo":
			in.Sexo = &s
		case "imagen":
			in.Imagen = &s
		}
	}

	return in, present, errs
}

// coerceString trims and treats empty strings as null.
func coerceString(value interface{}) (string, bool, error) {
	switch v := value.(type) {
	case nil:
		return "", true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", true, nil
		}
		return s, false, nil
	default:
		return "", false, errors.New("not a string")
	}
}

// coerceInt accepts JSON integers and numeric strings.
func coerceInt(value interface{}) (int, bool, error) {
	switch v := value.(type) {
	case nil:
		return 0, true, nil
	case json.Number:
		return parseInt(v.String())
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, true, nil
		}
		return parseInt(v)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false, errors.New("not an integer")
		}
		return int(v), false, nil
	case int:
		return v, false, nil
	default:
		return 0, false, errors.New("not an integer")
	}
}

func parseInt(s string) (int, bool, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false, err
	}
	return int(n), false, nil
}

// validateInput runs the struct-tag rules. partial restricts them to the
// present fields.
func (s *PersonaService) validateInput(in PersonaInput, present []string, partial bool) fieldErrors {
	var err error
	if partial {
		names := make([]string, 0, len(present))
		for _, p := range present {
			names = append(names, personaFields[p])
		}
		if len(names) == 0 {
			return fieldErrors{}
		}
		err = s.validate.StructPartial(in, names...)
	} else {
		err = s.validate.Struct(in)
	}

	errs := fieldErrors{}
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add("_", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.add(fe.Field(), ruleMessage(fe))
	}
	return errs
}

func ruleMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("El campo %s es obligatorio.", field)
	case "email":
		return fmt.Sprintf("El campo %s debe ser una dirección de correo válida.", field)
	case "max":
		return fmt.Sprintf("El campo %s no debe tener más de %s caracteres.", field, fe.Param())
	case "min":
		return fmt.Sprintf("El campo %s debe ser al menos %s.", field, fe.Param())
	case "len":
		return fmt.Sprintf("El campo %s debe tener %s caracteres.", field, fe.Param())
	default:
		return fmt.Sprintf("El campo %s no es válido.", field)
	}
}

// merge adds rule errors for fields that decoded cleanly; a type error already
// explains the field.
func (fe fieldErrors) merge(other fieldErrors) {
	for field, msgs := range other {
		if _, ok := fe[field]; ok {
			continue
		}
		fe[field] = append(fe[field], msgs...)
	}
}
