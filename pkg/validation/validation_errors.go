package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the form field names the site's
// visitors see in error messages.
var FieldLabels = map[string]string{
	"Name":    "name",
	"Phone":   "phone",
	"Email":   "email",
	"Service": "service",
	"Message": "message",
}

// FormatValidationErrors converts validator.ValidationErrors to the
// user-facing pt-BR messages, one per failing field, in struct order.
func FormatValidationErrors(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}

	var messages []string
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("O campo %s é obrigatório", label)
	case "email":
		return "E-mail inválido"
	case "br_phone":
		return "Telefone deve estar no formato (XX) XXXXX-XXXX"
	case "oneof":
		return "Serviço inválido"
	default:
		return fmt.Sprintf("O campo %s é inválido", label)
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return fieldName
}
