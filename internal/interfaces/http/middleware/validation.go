package middleware

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator: field names come from json or
// form tags, and the "tipo" tag accepts entrada or saida.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}
	RegisterValidations(v)
	return nil
}

// RegisterValidations installs the tag name func and custom rules on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("tipo", func(fl validator.FieldLevel) bool {
		return finance.Tipo(strings.TrimSpace(fl.Field().String())).IsValid()
	})
}

// requiredMessages are the messages for missing fields, by field name
var requiredMessages = map[string]string{
	"categoria": "Categoria obrigatória",
	"data":      "Data obrigatória",
	"nome":      "Nome da categoria obrigatório",
	"tipo":      "Tipo inválido. Use: entrada ou saida",
}

// BindingError converts a gin binding failure into an invalid-argument
// error. Only the first failing field is reported.
func BindingError(err error) *shared.DomainError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return shared.InvalidArgument(validationMessage(verrs[0]))
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return shared.InvalidArgument("Campo " + typeErr.Field + " com tipo inválido")
	case errors.As(err, &syntaxErr):
		return shared.InvalidArgument("JSON inválido")
	}
	return shared.InvalidArgument("Requisição inválida")
}

func validationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return "Campo " + field + " obrigatório"
	case "tipo":
		return requiredMessages["tipo"]
	case "max":
		if e.Kind() == reflect.String {
			return "Campo " + field + " excede " + e.Param() + " caracteres"
		}
		return "Campo " + field + " deve ser no máximo " + e.Param()
	case "min":
		return "Campo " + field + " deve ser no mínimo " + e.Param()
	default:
		return "Campo " + field + " inválido"
	}
}
