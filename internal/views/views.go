// Package views embeds the server-rendered pages.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var files embed.FS

// Engine returns a fiber view engine over the embedded templates.
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
