package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/DeafMist/policy-depot/internal/models"
)

// Terminal renders the same views as HTML for a text console.
type Terminal struct {
	md      *glamour.TermRenderer
	heading lipgloss.Style
	label   lipgloss.Style
	badge   lipgloss.Style
	related lipgloss.Style
	article lipgloss.Style
	notice  lipgloss.Style
	alert   lipgloss.Style
}

// NewTerminal builds a terminal presenter. style is a glamour style name
// ("auto", "dark", "light", "notty"); width wraps article text.
func NewTerminal(style string, width int) (*Terminal, error) {
	if width <= 0 {
		width = 80
	}

	styleOpt := glamour.WithStylePath(style)
	if style == "" || style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}

	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	badge := lipgloss.NewStyle().
		Padding(0, 1).
		Bold(true).
		Foreground(lipgloss.Color("#333333")).
		Background(lipgloss.Color("#E0E0E0"))

	return &Terminal{
		md:      md,
		heading: lipgloss.NewStyle().Bold(true).Underline(true),
		label:   lipgloss.NewStyle().Bold(true),
		badge:   badge,
		related: badge.Background(lipgloss.Color("#D0D0D0")).Italic(true),
		article: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A3D7C")),
		notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("#1A3D7C")),
		alert:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8A1C1C")),
	}, nil
}

// Render writes the block selected by view.State.
func (t *Terminal) Render(w io.Writer, view PageView) error {
	switch view.State {
	case StatePrompt:
		return writeLine(w, t.notice.Render(PromptMessage))
	case StateNotFound:
		return writeLine(w, t.alert.Render(NotFoundMessage))
	case StateError:
		return writeLine(w, t.alert.Render(ErrorMessage))
	case StateDocument:
		doc := view.Document
		if err := t.MainInfo(w, doc); err != nil {
			return err
		}
		if err := t.Tags(w, doc.Tags); err != nil {
			return err
		}
		if err := t.Related(w, doc.Related); err != nil {
			return err
		}
		return t.Articles(w, doc.Articles)
	default:
		return fmt.Errorf("unknown page state %d", view.State)
	}
}

// MainInfo writes title, company, date and the optional links.
func (t *Terminal) MainInfo(w io.Writer, doc models.PolicyDocument) error {
	lines := []string{
		t.heading.Render("Información"),
		t.label.Render("Nombre:") + " " + orPlaceholder(doc.Title),
		t.label.Render("Empresa:") + " " + orPlaceholder(doc.Company),
		t.label.Render("Fecha:") + " " + orPlaceholder(doc.Date),
	}
	if present(doc.URL) {
		lines = append(lines, t.label.Render("Url Póliza:")+" "+*doc.URL)
	}
	if present(doc.SearchURL) {
		lines = append(lines, t.label.Render("Url búsqueda:")+" "+*doc.SearchURL)
	}
	return writeLine(w, strings.Join(lines, "\n")+"\n")
}

// Tags writes a badge row, or nothing when there are no tags.
func (t *Terminal) Tags(w io.Writer, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	return writeLine(w, t.label.Render("Ramas")+"\n"+t.badges(t.badge, tags)+"\n")
}

// Related writes a badge row of related identifiers, or nothing.
func (t *Terminal) Related(w io.Writer, related []string) error {
	if len(related) == 0 {
		return nil
	}
	return writeLine(w, t.label.Render("Relacionados:")+"\n"+t.badges(t.related, related)+"\n")
}

// Articles writes each article's title and markdown description, or the
// explicit "no articles" message.
func (t *Terminal) Articles(w io.Writer, articles []models.Article) error {
	if len(articles) == 0 {
		return writeLine(w, NoArticlesMessage)
	}

	for _, article := range articles {
		body := Placeholder
		if article.Description != nil {
			rendered, err := t.md.Render(*article.Description)
			if err != nil {
				return fmt.Errorf("render article %q: %w", articleTitle(article.Name), err)
			}
			body = strings.TrimRight(rendered, "\n")
		}
		if err := writeLine(w, t.article.Render("▸ "+articleTitle(article.Name))+"\n"+body+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (t *Terminal) badges(style lipgloss.Style, values []string) string {
	rendered := make([]string, 0, len(values))
	for _, v := range values {
		rendered = append(rendered, style.Render(v))
	}
	return strings.Join(rendered, " ")
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}
