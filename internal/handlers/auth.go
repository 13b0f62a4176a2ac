package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/go-sales/auth"
	"github.com/diewo77/go-sales/httpx"
	"github.com/diewo77/go-sales/internal/models"
	"github.com/diewo77/go-sales/internal/services"
	"github.com/diewo77/go-sales/internal/store"
	"github.com/diewo77/go-sales/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	responder
	store store.Store
}

func NewAuthHandler(s store.Store) *AuthHandler {
	return &AuthHandler{store: s}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) findUser(ctx context.Context, email string) (*models.User, error) {
	var users []models.User
	q := store.Query{Where: store.Where{store.Eq("email", email)}, Limit: 1}
	if err := h.store.Select(ctx, store.TableUsers, &users, q); err != nil {
		return nil, &services.PersistenceError{Op: "select", Table: store.TableUsers, Err: err}
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.badJSON(w, r, err)
		return
	}
	user, err := h.findUser(r.Context(), strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		h.errorCode(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.DecodeJSON(r, &in); err != nil {
		h.badJSON(w, r, err)
		return
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		h.fail(w, r, &services.ValidationError{Violations: v})
		return
	}

	existing, err := h.findUser(r.Context(), in.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if existing != nil {
		h.errorCode(w, r, http.StatusConflict, "email_taken", nil)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	user := models.User{Email: in.Email, Name: strings.TrimSpace(in.Name), Password: string(hashed)}
	if err := h.store.Insert(r.Context(), store.TableUsers, &user); err != nil {
		h.fail(w, r, &services.PersistenceError{Op: "insert", Table: store.TableUsers, Err: err})
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// UserExists builds the session verifier: a session is valid only while its
// user row exists and is not soft-deleted.
func UserExists(s store.Store) auth.UserVerifier {
	return func(ctx context.Context, uid uuid.UUID) bool {
		n, err := s.Count(ctx, store.TableUsers, store.Query{Where: store.Where{store.Eq("id", uid)}})
		return err == nil && n > 0
	}
}
