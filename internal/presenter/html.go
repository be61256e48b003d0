package presenter

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/url"

	"github.com/flosch/pongo2/v6"

	"github.com/DeafMist/policy-depot/internal/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templateNames = []string{"page.html", "main_info.html", "tags.html", "related.html", "articles.html"}

// HTML renders the viewer page and its four document views.
type HTML struct {
	templates map[string]*pongo2.Template
}

// NewHTML parses the embedded templates.
func NewHTML() (*HTML, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("open templates: %w", err)
	}

	set := pongo2.NewSet("policy-depot", pongo2.NewFSLoader(sub))
	h := &HTML{templates: make(map[string]*pongo2.Template, len(templateNames))}
	for _, name := range templateNames {
		tpl, err := set.FromFile(name)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		h.templates[name] = tpl
	}
	return h, nil
}

// MainInfo renders title, company, date and the optional document links.
func (h *HTML) MainInfo(doc models.PolicyDocument) (string, error) {
	ctx := pongo2.Context{
		"title":   orPlaceholder(doc.Title),
		"company": orPlaceholder(doc.Company),
		"date":    orPlaceholder(doc.Date),
	}
	if present(doc.URL) {
		ctx["url"] = safeHref(*doc.URL)
	}
	if present(doc.SearchURL) {
		ctx["search_url"] = safeHref(*doc.SearchURL)
	}
	return h.execute("main_info.html", ctx)
}

// Tags renders one badge per tag, or nothing when there are none.
func (h *HTML) Tags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "", nil
	}
	return h.execute("tags.html", pongo2.Context{"tags": tags})
}

// Related renders one linked badge per related document, or nothing.
func (h *HTML) Related(related []string) (string, error) {
	if len(related) == 0 {
		return "", nil
	}

	items := make([]map[string]string, 0, len(related))
	for _, id := range related {
		items = append(items, map[string]string{
			"label": id,
			"href":  PolicyHref(id),
		})
	}
	return h.execute("related.html", pongo2.Context{"related": items})
}

// Articles renders a collapsible section per article, or an explicit
// "no articles" message when the list is empty.
func (h *HTML) Articles(articles []models.Article) (string, error) {
	items := make([]map[string]string, 0, len(articles))
	for _, article := range articles {
		body := Placeholder
		if article.Description != nil {
			rendered, err := renderRichText(*article.Description)
			if err != nil {
				return "", err
			}
			body = rendered
		}
		items = append(items, map[string]string{
			"title": articleTitle(article.Name),
			"body":  body,
		})
	}

	return h.execute("articles.html", pongo2.Context{
		"articles":    items,
		"no_articles": NoArticlesMessage,
	})
}

// Page writes the full viewer page for view to w.
func (h *HTML) Page(w io.Writer, view PageView) error {
	ctx := pongo2.Context{
		"page_title":  PageTitle,
		"input_label": InputLabel,
		"searching":   SearchingMessage,
		"identifier":  view.Identifier,
		"prompt":      PromptMessage,
		"not_found":   NotFoundMessage,
		"error":       ErrorMessage,
	}

	switch view.State {
	case StatePrompt:
		ctx["state"] = "prompt"
	case StateNotFound:
		ctx["state"] = "not_found"
	case StateError:
		ctx["state"] = "error"
	case StateDocument:
		ctx["state"] = "document"
		if err := h.documentSections(ctx, view.Document); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown page state %d", view.State)
	}

	out, err := h.execute("page.html", ctx)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// documentSections renders the four views in display order.
func (h *HTML) documentSections(ctx pongo2.Context, doc models.PolicyDocument) error {
	var err error
	if ctx["main_info"], err = h.MainInfo(doc); err != nil {
		return err
	}
	if ctx["tags"], err = h.Tags(doc.Tags); err != nil {
		return err
	}
	if ctx["related"], err = h.Related(doc.Related); err != nil {
		return err
	}
	if ctx["articles"], err = h.Articles(doc.Articles); err != nil {
		return err
	}
	return nil
}

func (h *HTML) execute(name string, ctx pongo2.Context) (string, error) {
	tpl, ok := h.templates[name]
	if !ok {
		return "", fmt.Errorf("template %q not loaded", name)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return buf.String(), nil
}

// PolicyHref is the viewer path for a policy identifier.
func PolicyHref(id string) string {
	return "/policy/" + url.PathEscape(id)
}
