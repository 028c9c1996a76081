// Package handlers contains the controllers and route declarations of the
// demo application.
package handlers

import (
	"github.com/a-h/templ"

	craft "github.com/datahihi1/craft-mini"
	"github.com/datahihi1/craft-mini/example/views"
)

// Home is registered as the "home" controller and referenced by name from
// the route table.
type Home struct {
	appName string
}

// NewHome creates the home controller.
func NewHome(appName string) *Home {
	return &Home{appName: appName}
}

// Index renders the landing page.
func (h *Home) Index(c craft.Context) templ.Component {
	return views.Home(h.appName, Nav(c))
}

// Hello greets the name taken from the path.
func (h *Home) Hello(name string, c craft.Context) templ.Component {
	return views.Hello(name, Nav(c))
}

// HelloAPI is the JSON variant of Hello.
func HelloAPI(name string) map[string]any {
	return map[string]any{"message": "Hello, " + name + "!"}
}

// Nav builds the navigation links from named routes.
func Nav(c craft.Context) []views.Link {
	var links []views.Link
	for _, l := range []struct{ title, name string }{
		{"Home", "home"},
		{"Users", "users.index"},
	} {
		if p, ok := c.Path(l.name); ok {
			links = append(links, views.Link{Title: l.title, URL: p})
		}
	}
	return links
}
