package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/cespare/xxhash/v2"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/d60-Lab/birdnest/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// 页面名称
const (
	PagePosts  = "posts"
	PagePost   = "post"
	PageNew    = "new"
	PageEdit   = "edit"
	PageDelete = "delete"
)

var pageNames = []string{PagePosts, PagePost, PageNew, PageEdit, PageDelete}

// Page 模板数据。Site 由 Renderer 填充
type Page struct {
	Site    string
	Title   string
	Posts   []*model.Post
	Post    *model.Post
	Content template.HTML
}

// Renderer 渲染内嵌模板，输出压缩后的 HTML 及其 ETag
type Renderer struct {
	site     string
	pages    map[string]*template.Template
	minifier *minify.M
}

func NewRenderer(site string) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})

	return &Renderer{site: site, pages: pages, minifier: m}, nil
}

// Render 执行页面模板并压缩，etag 为内容的 xxhash
func (r *Renderer) Render(name string, page Page) (body []byte, etag string, err error) {
	t, ok := r.pages[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown page %q", name)
	}
	page.Site = r.site

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return nil, "", fmt.Errorf("render page %s: %w", name, err)
	}

	body, err = r.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, "", fmt.Errorf("minify page %s: %w", name, err)
	}
	return body, ETag(body), nil
}

// ETag 强校验 ETag
func ETag(b []byte) string {
	return fmt.Sprintf(`"%x"`, xxhash.Sum64(b))
}
