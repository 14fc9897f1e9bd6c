package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/storefront/internal/auth"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type signInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	DisplayName string `validate:"required,max=64"`
	Email       string `validate:"required,email"`
	Password    string `validate:"required,min=8"`
}

// fieldMessages are shown instead of raw validator output.
var fieldMessages = map[string]string{
	"Email":       "Enter a valid email address.",
	"Password":    "Passwords must be at least 8 characters.",
	"DisplayName": "Enter a name of at most 64 characters.",
}

// formError turns the first validation failure into a user-facing message.
func formError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := fieldMessages[fieldErrs[0].Field()]; ok {
			return msg
		}
	}
	return "Please check the form and try again."
}

func (s *Server) handleSignInForm(w http.ResponseWriter, r *http.Request) {
	if s.sessions.State(r).SignedIn {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, http.StatusOK, "signin", page{Title: "Log In", Data: signInForm{}})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	form := signInForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "signin", page{Title: "Log In", Flash: formError(err), Data: form})
		return
	}

	user, err := s.authenticator.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		s.logger.Warn("Sign in failed", "email", form.Email, "error", err)
		s.renderPage(w, r, http.StatusUnauthorized, "signin", page{Title: "Log In", Flash: "Invalid email or password.", Data: form})
		return
	}

	if _, err := s.sessions.StartSession(w, user); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.logger.Info("User signed in", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if s.sessions.State(r).SignedIn {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderPage(w, r, http.StatusOK, "register", page{Title: "Register", Data: registerForm{}})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		DisplayName: strings.TrimSpace(r.PostFormValue("display_name")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
	}
	if err := validate.Struct(form); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "register", page{Title: "Register", Flash: formError(err), Data: form})
		return
	}

	user, err := s.authenticator.Register(r.Context(), form.Email, form.DisplayName, form.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		s.renderPage(w, r, http.StatusConflict, "register", page{Title: "Register", Flash: "That email is already registered.", Data: form})
		return
	case errors.Is(err, auth.ErrWeakPassword):
		s.renderPage(w, r, http.StatusBadRequest, "register", page{Title: "Register", Flash: fieldMessages["Password"], Data: form})
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	if _, err := s.sessions.StartSession(w, user); err != nil {
		s.serverError(w, r, err)
		return
	}
	s.logger.Info("User registered", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.sessions.EndSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
