// Package views holds the templ components of the demo application.
package views

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/datahihi1/craft-mini/pkg/db"
)

// Link is a navigation entry.
type Link struct {
	Title string
	URL   string
}

// Layout renders the page skeleton around the children in ctx.
func Layout(title string, nav []Link) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children := templ.GetChildren(ctx)
		ctx = templ.ClearChildren(ctx)

		if err := write(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"><title>",
			templ.EscapeString(title), "</title></head>\n<body>\n<nav>"); err != nil {
			return err
		}
		for i, l := range nav {
			if i > 0 {
				if err := write(w, " | "); err != nil {
					return err
				}
			}
			href := templ.EscapeString(string(templ.URL(l.URL)))
			if err := write(w, `<a href="`, href, `">`, templ.EscapeString(l.Title), "</a>"); err != nil {
				return err
			}
		}
		if err := write(w, "</nav>\n<main>\n"); err != nil {
			return err
		}
		if children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		return write(w, "\n</main>\n</body>\n</html>\n")
	})
}

// Page renders body inside Layout.
func Page(title string, nav []Link, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(title, nav).Render(templ.WithChildren(ctx, body), w)
	})
}

// Home renders the landing page.
func Home(appName string, nav []Link) templ.Component {
	return Page(appName, nav, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, "<h1>", templ.EscapeString(appName), "</h1>\n<p>It works.</p>")
	}))
}

// Hello renders a greeting for name.
func Hello(name string, nav []Link) templ.Component {
	return Page("Hello", nav, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w, "<h1>Hello, ", templ.EscapeString(name), "!</h1>")
	}))
}

// Users renders the user list.
func Users(users []db.Row, nav []Link) templ.Component {
	return Page("Users", nav, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := write(w, fmt.Sprintf("<h1>Users (%d)</h1>\n", len(users))); err != nil {
			return err
		}
		if len(users) == 0 {
			return write(w, "<p>No users yet.</p>")
		}
		if err := write(w, "<table>\n<tr><th>ID</th><th>Name</th><th>Email</th><th>Joined</th></tr>\n"); err != nil {
			return err
		}
		for _, u := range users {
			if err := write(w,
				"<tr><td>", templ.EscapeString(str(u["id"])),
				"</td><td>", templ.EscapeString(str(u["name"])),
				"</td><td>", templ.EscapeString(str(u["email"])),
				"</td><td>", templ.EscapeString(formatTime(u["created_at"])),
				"</td></tr>\n",
			); err != nil {
				return err
			}
		}
		return write(w, "</table>")
	}))
}

func write(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}

// formatTime formats a timestamp column for display.
func formatTime(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.Format("Jan 2, 2006")
	}
	return str(v)
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(v)
}
