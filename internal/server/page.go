package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/propdash/internal/search"
	"github.com/oakwood-commons/propdash/internal/transform"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"isNumeric":    func(k transform.Kind) bool { return k == transform.KindNumeric },
	"isBoolean":    func(k transform.Kind) bool { return k == transform.KindBoolean },
	"isStructured": func(k transform.Kind) bool { return k == transform.KindStructured },
}).ParseFS(templateFS, "templates/index.html.tmpl"))

// renderMarkdown converts trusted Markdown from the config file to HTML.
func renderMarkdown(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	renderer := html.NewRenderer(opts)
	// #nosec G203 -- operator-supplied config
	return template.HTML(markdown.Render(doc, renderer))
}

type formValues struct {
	Query  string
	Lat    string
	Lng    string
	Filter string
	Expr   string
	Demo   bool
}

type pageData struct {
	Name      string
	About     template.HTML
	RepoURL   string
	Form      formValues
	Submitted bool
	Error     string
	Report    *transform.Report
	Shown     int
	Total     int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	form := formValues{
		Query:  params.Get("q"),
		Lat:    params.Get("lat"),
		Lng:    params.Get("lng"),
		Filter: params.Get("filter"),
		Expr:   params.Get("expr"),
		Demo:   params.Get("demo") != "",
	}
	data := pageData{
		Name:    s.about.Name,
		About:   s.aboutHTML,
		RepoURL: s.about.RepositoryURL,
		Form:    form,
	}

	status := http.StatusOK
	if form.Demo || strings.TrimSpace(form.Query+form.Lat+form.Lng) != "" {
		data.Submitted = true
		req, err := parseReportRequest(r, form.Demo)
		if err != nil {
			status = http.StatusBadRequest
			data.Error = describeRequestError(err)
		} else if full, err := s.build(r.Context(), req); err != nil {
			s.log.Error(err, "dashboard report failed", "query", req.query.String(), "demo", req.demo)
			status = statusFor(err)
			data.Error = describe(err)
		} else {
			filtered := search.Filter(full, req.filter)
			data.Report = &filtered
			data.Shown = filtered.RowCount()
			data.Total = full.RowCount()
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.Error(err, "render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
