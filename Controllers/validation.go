package Controllers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/rs/zerolog/log"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	// Messages name the field by its label tag ("Nombres") instead of the Go name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})

	spanish := es.New()
	translator, _ = ut.New(spanish, spanish).GetTranslator("es")
	if err := es_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		log.Error().Err(err).Msg("failed to register validator translations")
	}
}

// validateStruct returns the first failed rule as a Spanish sentence.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return errors.New(fieldErrors[0].Translate(translator))
	}
	return err
}
