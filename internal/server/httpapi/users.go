package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/models"
	"github.com/mkravets/auth-service/internal/server/services"
)

type userRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	TenantID  *int64 `json:"tenantId"`
}

// validate checks the shared fields. Password rules apply only on create,
// where requirePassword is set.
func (req *userRequest) validate(requirePassword bool) error {
	var errs common.FieldErrors
	if req.FirstName == "" {
		errs = append(errs, common.FieldError{Field: "firstName", Msg: "first name is required"})
	}
	if req.LastName == "" {
		errs = append(errs, common.FieldError{Field: "lastName", Msg: "last name is required"})
	}
	if !emailPattern.MatchString(req.Email) {
		errs = append(errs, common.FieldError{Field: "email", Msg: "email is invalid"})
	}
	if requirePassword && len(req.Password) < minPasswordLength {
		errs = append(errs, common.FieldError{Field: "password", Msg: "password must be at least 8 characters"})
	}
	if !models.Role(req.Role).Valid() {
		errs = append(errs, common.FieldError{Field: "role", Msg: "role must be admin, manager or customer"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.FieldErrors{{Field: "id", Msg: "id must be a positive integer"}}
	}
	return id, nil
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}
	if err := req.validate(true); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.users.Create(r.Context(), services.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      models.Role(req.Role),
		TenantID:  req.TenantID,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}
	if err := req.validate(false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.users.Update(r.Context(), id, services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.Role(req.Role),
		TenantID:  req.TenantID,
	}); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
