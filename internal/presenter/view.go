// Package presenter renders policy lookups as HTML pages or terminal output.
package presenter

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/DeafMist/policy-depot/internal/models"
	"github.com/DeafMist/policy-depot/internal/policyapi"
)

// User-facing text shared by every presenter.
const (
	PageTitle         = "Depósito de Pólizas"
	InputLabel        = "ID Póliza"
	PromptMessage     = "Ingrese ID póliza/cláusula y presione Enter."
	SearchingMessage  = "Buscando..."
	NotFoundMessage   = "Documento no encontrado..."
	ErrorMessage      = "Error..."
	NoArticlesMessage = "No articles available."
	Placeholder       = "N/A"
)

// State selects which block a page shows below the input.
type State int

const (
	StatePrompt State = iota
	StateDocument
	StateNotFound
	StateError
)

// PageView is everything a presenter needs for one submission.
type PageView struct {
	Identifier string
	State      State
	Document   models.PolicyDocument
}

// PromptView is the page shown before anything was entered.
func PromptView() PageView {
	return PageView{State: StatePrompt}
}

// ViewFor branches on the lookup result. The failure detail is deliberately not
// carried into the view.
func ViewFor(id string, res policyapi.Result) PageView {
	view := PageView{Identifier: id}
	switch res.Kind() {
	case policyapi.KindDocument:
		view.State = StateDocument
		view.Document = res.Document()
	case policyapi.KindNotFound:
		view.State = StateNotFound
	default:
		view.State = StateError
	}
	return view
}

func orPlaceholder(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// articleTitle upper-cases the first rune and lower-cases the rest.
func articleTitle(name *string) string {
	if name == nil {
		return Placeholder
	}
	r, size := utf8.DecodeRuneInString(*name)
	if size == 0 {
		return ""
	}
	return string(unicode.ToTitle(r)) + strings.ToLower((*name)[size:])
}
