package handlers

import (
	"errors"
	"net/http"

	craft "github.com/datahihi1/craft-mini"
	"github.com/datahihi1/craft-mini/example/requests"
	"github.com/datahihi1/craft-mini/example/views"
	"github.com/datahihi1/craft-mini/pkg/db"
	"github.com/datahihi1/craft-mini/pkg/hash"
)

const usersTable = "users"

// Users serves the user pages and the users JSON API.
// Receives the database via constructor injection.
type Users struct {
	conn *db.DB
}

// NewUsers creates the users handler.
func NewUsers(conn *db.DB) *Users {
	return &Users{conn: conn}
}

// Routes implements craft.Handler.
func (h *Users) Routes(r *craft.Router) {
	r.Group("/users").NamePrefix("users.").Middleware(craft.Named("no-cache")).Action(func(r *craft.Router) {
		r.Get("/", craft.RouteFunc(h.index)).Name("index")
		r.Get("/{id}", craft.RouteFunc(h.show)).Name("show")
	})

	api := r.API()
	api.Get("users", craft.RouteFunc(h.list))
	api.Get("users/{id}", craft.RouteFunc(h.find))
	api.Post("users", craft.RouteFunc(h.create))
	api.Put("users/{id}", craft.RouteFunc(h.update))
	api.Delete("users/{id}", craft.RouteFunc(h.delete))
}

func (h *Users) index(c craft.Context) (any, error) {
	users, err := h.conn.Table(usersTable).All(c.Context())
	if err != nil {
		return nil, err
	}
	return nil, c.Render(http.StatusOK, views.Users(users, Nav(c)))
}

func (h *Users) show(c craft.Context) (any, error) {
	user, err := h.conn.Table(usersTable).Find(c.Context(), craft.Param[int64](c, 0))
	if errors.Is(err, db.ErrNotFound) {
		return nil, craft.ErrNotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return views.Users([]db.Row{user}, Nav(c)), nil
}

func (h *Users) list(c craft.Context) (any, error) {
	users, err := h.conn.Table(usersTable).All(c.Context())
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		delete(u, "password")
	}
	if users == nil {
		users = []db.Row{}
	}
	return map[string]any{"data": users}, nil
}

func (h *Users) find(c craft.Context) (any, error) {
	user, err := h.conn.Table(usersTable).Find(c.Context(), craft.Param[int64](c, 0))
	if errors.Is(err, db.ErrNotFound) {
		return notFound(), nil
	}
	if err != nil {
		return nil, err
	}
	delete(user, "password")
	return map[string]any{"data": user}, nil
}

// create demonstrates the sanitize → validate → hash flow.
func (h *Users) create(c craft.Context) (any, error) {
	data, errs := requests.User(c.Input().Body, requests.CreateUserRules)
	if len(errs) > 0 {
		return invalid(errs), nil
	}

	password, err := hash.Default(data["password"].(string))
	if err != nil {
		return nil, err
	}
	data["password"] = password

	id, err := h.conn.Table(usersTable).Insert(c.Context(), data)
	if err != nil {
		return nil, err
	}
	c.LogInfo("user created", "user_id", id)
	return map[string]any{"code": http.StatusCreated, "data": map[string]any{
		"id":    id,
		"name":  data["name"],
		"email": data["email"],
	}}, nil
}

func (h *Users) update(c craft.Context) (any, error) {
	data, errs := requests.User(c.Input().Body, requests.UpdateUserRules)
	if len(errs) > 0 {
		return invalid(errs), nil
	}
	delete(data, "password")
	if len(data) == 0 {
		return map[string]any{"code": http.StatusBadRequest, "error": "Nothing to update"}, nil
	}

	n, err := h.conn.Table(usersTable).Update(c.Context(), craft.Param[int64](c, 0), db.Row(data))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return notFound(), nil
	}
	return map[string]any{"updated": true}, nil
}

func (h *Users) delete(c craft.Context) (any, error) {
	n, err := h.conn.Table(usersTable).Delete(c.Context(), craft.Param[int64](c, 0))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return notFound(), nil
	}
	return map[string]any{"deleted": true}, nil
}

func notFound() map[string]any {
	return map[string]any{"code": http.StatusNotFound, "error": "User not found"}
}

func invalid(errs map[string][]string) map[string]any {
	return map[string]any{"code": http.StatusUnprocessableEntity, "errors": errs}
}

// NoCache is the "no-cache" route middleware.
func NoCache(c craft.Context) any {
	c.SetHeader("Cache-Control", "no-store")
	return nil
}
