package web

import (
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/mmynk/storefront/internal/auth"
)

// NavLink is a plain link in the navigation bar.
type NavLink struct {
	Label string
	Href  string
}

// navLinks are shown regardless of auth state.
var navLinks = []NavLink{
	{Label: "View Cart", Href: "/cart"},
	{Label: "Purchase History", Href: "/products"},
}

// NavData is what the nav template renders.
type NavData struct {
	State      auth.State
	SignInURL  string
	SignOutURL string
	Links      []NavLink
}

// NavView renders the navigation bar: one auth control followed by the
// cart and purchase history links. It keeps no state of its own; everything
// comes from the provider on each request.
type NavView struct {
	provider auth.Provider
	tmpl     *template.Template
}

// NewNavView parses the nav template.
func NewNavView(provider auth.Provider) (*NavView, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/nav.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse nav template: %w", err)
	}
	return &NavView{provider: provider, tmpl: tmpl}, nil
}

// Data resolves the nav for r.
func (v *NavView) Data(r *http.Request) NavData {
	return NavData{
		State:      v.provider.State(r),
		SignInURL:  v.provider.SignInURL(),
		SignOutURL: v.provider.SignOutURL(),
		Links:      navLinks,
	}
}

// Render writes the nav markup for r to w.
func (v *NavView) Render(w io.Writer, r *http.Request) error {
	return v.tmpl.ExecuteTemplate(w, "nav", v.Data(r))
}
