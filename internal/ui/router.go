package ui

import (
	"path"
	"strings"

	"WebCanvas/internal/store"
)

// Scheme prefixes deep links that open a canvas in the desktop editor.
const Scheme = "webcanvas://"

type Page int

const (
	PageLanding Page = iota
	PageEditor
)

// Route is a parsed navigation target.
type Route struct {
	Page     Page
	CanvasID string
}

// CanvasPath returns the editor route for id.
func CanvasPath(id string) string {
	return "/canvas/" + id
}

// ShareLink returns the deep link that opens id in another editor.
func ShareLink(id string) string {
	return Scheme + "canvas/" + id
}

// ParseRoute accepts "/", "/canvas/{id}" or a webcanvas:// deep link.
// Anything else routes to the landing page.
func ParseRoute(target string) Route {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, Scheme) {
		target = "/" + strings.TrimPrefix(target, Scheme)
	}
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return Route{Page: PageLanding}
	}
	clean := path.Clean("/" + target)
	parts := strings.Split(strings.Trim(clean, "/"), "/")
	if len(parts) == 2 && parts[0] == "canvas" && store.ValidateID(parts[1]) == nil {
		return Route{Page: PageEditor, CanvasID: parts[1]}
	}
	return Route{Page: PageLanding}
}

func (r Route) Path() string {
	if r.Page == PageEditor {
		return CanvasPath(r.CanvasID)
	}
	return "/"
}
