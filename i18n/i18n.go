// Package i18n holds the translated messages for API error codes and the
// Accept-Language negotiation used by the preferences middleware.
package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// DefaultLang is used when nothing in the request matches a supported language.
const DefaultLang = "pt"

type ctxKey struct{}

var (
	supported = []string{"pt", "en"}
	matcher   = language.NewMatcher([]language.Tag{language.BrazilianPortuguese, language.English})
)

var messages = map[string]map[string]string{
	"pt": {
		"required":              "Obrigatório",
		"invalid_email":         "E-mail inválido",
		"invalid_national_id":   "CPF inválido",
		"invalid_phone":         "Telefone inválido",
		"invalid_postal_code":   "CEP inválido",
		"must_not_be_negative":  "Não pode ser negativo",
		"out_of_range":          "Fora do intervalo permitido",
		"invalid_payment":       "Forma de pagamento inválida",
		"invalid_window":        "Período inválido",
		"invalid_id":            "Identificador inválido",
		"invalid_json":          "Corpo da requisição inválido",
		"validation_failed":     "Dados inválidos",
		"not_found":             "Registro não encontrado",
		"persistence_error":     "Falha ao salvar os dados",
		"store_timeout":         "O banco de dados não respondeu a tempo, tente novamente",
		"partial_commit":        "A venda foi salva parcialmente",
		"unauthorized":          "Não autenticado",
		"invalid_credentials":   "E-mail ou senha inválidos",
		"email_taken":           "E-mail já cadastrado",
		"internal_error":        "Erro interno",
		"unknown_customer":      "Cliente não identificado",
		"customer_required":     "Selecione um cliente",
		"items_required":        "Adicione pelo menos um produto",
		"item_product_required": "Selecione um produto para cada item",
		"label_taken":           "Já existe uma categoria com este nome",
	},
	"en": {
		"required":              "Required",
		"invalid_email":         "Invalid email",
		"invalid_national_id":   "Invalid national id",
		"invalid_phone":         "Invalid phone number",
		"invalid_postal_code":   "Invalid postal code",
		"must_not_be_negative":  "Must not be negative",
		"out_of_range":          "Out of range",
		"invalid_payment":       "Invalid payment method",
		"invalid_window":        "Invalid report window",
		"invalid_id":            "Invalid identifier",
		"invalid_json":          "Invalid request body",
		"validation_failed":     "Invalid data",
		"not_found":             "Record not found",
		"persistence_error":     "Could not save data",
		"store_timeout":         "The database did not answer in time, please retry",
		"partial_commit":        "The sale was only partially saved",
		"unauthorized":          "Not authenticated",
		"invalid_credentials":   "Invalid email or password",
		"email_taken":           "Email already registered",
		"internal_error":        "Internal error",
		"unknown_customer":      "Unknown customer",
		"customer_required":     "Select a customer",
		"items_required":        "Add at least one product",
		"item_product_required": "Select a product for every item",
		"label_taken":           "A category with this name already exists",
	},
}

// DetectLanguage picks the best supported language for an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return supported[idx]
}

// Supported reports whether lang has a message catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates code into lang, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// WithLang stores the negotiated language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored in ctx, or DefaultLang.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}
