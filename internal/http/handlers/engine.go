package handlers

import (
	html "github.com/gofiber/template/html/v2"

	"mbaayadmin/internal/views"
)

// NewEngine loads the page templates in dir with the formatting helpers the
// pages call.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(views.Funcs())
	return engine
}
