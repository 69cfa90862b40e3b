package markdown

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var policy = bluemonday.UGCPolicy()

// Render 将文章 markdown 转成 HTML，输出经过 UGC 策略清洗
func Render(src string) template.HTML {
	unsafe := blackfriday.Run([]byte(src))
	return template.HTML(policy.SanitizeBytes(unsafe))
}
