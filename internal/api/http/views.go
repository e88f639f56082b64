package http

import (
	"embed"
	"io/fs"
	nethttp "net/http"

	"github.com/gofiber/template/html/v2"

	"github.com/spec-kit/helpdesk/internal/domain"
)

//go:embed views/*.html views/layouts/*.html
var viewFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// NewViews builds the template engine over the embedded page templates.
func NewViews() *html.Engine {
	sub, err := fs.Sub(viewFiles, "views")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(nethttp.FS(sub), ".html")
	engine.AddFunc("isAssignee", func(t domain.TicketView, userID int64) bool {
		return t.AssignedTo != nil && *t.AssignedTo == userID
	})
	engine.AddFunc("statusClass", func(s domain.TicketStatus) string {
		switch s {
		case domain.TicketStatusOpen:
			return "open"
		case domain.TicketStatusInProgress:
			return "in-progress"
		default:
			return "closed"
		}
	})
	return engine
}

// StaticFS exposes the embedded assets; the "static" prefix is kept.
func StaticFS() nethttp.FileSystem {
	return nethttp.FS(staticFiles)
}
