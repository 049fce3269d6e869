package dashboard

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "dashboard", "admin"}

// pageRender parses each page together with the shared layout so that
// every page can define its own "content" block.
type pageRender struct {
	pages map[string]*template.Template
}

func newPageRender() (*pageRender, error) {
	funcs := sprig.FuncMap()
	funcs["statusLabel"] = StatusLabel
	funcs["statusColor"] = func(s string) string { return statusColors[s] }
	funcs["pct"] = func(f float64) string { return fmt.Sprintf("%.1f%%", f) }
	funcs["intOr"] = func(p *int, def string) string {
		if p == nil {
			return def
		}
		return fmt.Sprint(*p)
	}
	funcs["strOr"] = func(p *string, def string) string {
		if p == nil {
			return def
		}
		return *p
	}

	r := &pageRender{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("dashboard: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *pageRender) Instance(name string, data any) render.Render {
	return render.HTML{Template: r.pages[name], Name: "layout.html", Data: data}
}
