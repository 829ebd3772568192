package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ecom/internal/core"
	applog "ecom/internal/log"
)

type newUserRequest struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Photo  string `json:"photo"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
}

// handleNewUser registers a user, or greets them when the id is already
// known. Roles are never taken from the request.
func (s *Server) handleNewUser(w http.ResponseWriter, r *http.Request) {
	var req newUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}

	id := sanitizeInput(req.ID)
	if id != "" {
		existing, err := s.store.GetUser(r.Context(), id)
		switch {
		case err == nil:
			respond(w, http.StatusOK, fmt.Sprintf("Welcome %s", existing.Name), nil)
			return
		case !errors.Is(err, core.ErrNotFound):
			fail(w, r, err)
			return
		}
	}

	u := core.User{
		ID:     id,
		Name:   sanitizeInput(req.Name),
		Email:  strings.ToLower(sanitizeInput(req.Email)),
		Photo:  sanitizeInput(req.Photo),
		Gender: core.Gender(strings.ToLower(sanitizeInput(req.Gender))),
		Role:   core.RoleUser,
	}
	if req.DOB != "" {
		dob, err := parseDate(req.DOB)
		if err != nil {
			fail(w, r, badRequest("Please enter a valid Date of Birth"))
			return
		}
		u.DOB = dob
	}
	if err := u.Validate(); err != nil {
		fail(w, r, err)
		return
	}

	created, err := s.store.CreateUser(r.Context(), u)
	if err != nil {
		fail(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "User registered", applog.FieldUserID, created.ID)
	respond(w, http.StatusCreated, fmt.Sprintf("Welcome, %s", created.Name), nil)
}

func (s *Server) handleAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context(), core.UserFilter{})
	if err != nil {
		fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Users Received Successfully", envelope{"users": nonNil(users)})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, notFoundAs(err, "Invalid ID"))
		return
	}
	respond(w, http.StatusOK, "", envelope{"user": u})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, notFoundAs(err, "Invalid ID"))
		return
	}
	respond(w, http.StatusOK, "User Deleted Successfully", nil)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
