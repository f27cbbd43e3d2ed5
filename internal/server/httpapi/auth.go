package httpapi

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/services"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (req *registerRequest) validate() error {
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
	if len(req.Password) < minPasswordLength {
		errs = append(errs, common.FieldError{Field: "password", Msg: "password must be at least 8 characters"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, pair, err := s.tokens.Register(r.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	setTokenCookies(w, pair)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}

	var errs common.FieldErrors
	if req.Email == "" {
		errs = append(errs, common.FieldError{Field: "email", Msg: "email is required"})
	}
	if req.Password == "" {
		errs = append(errs, common.FieldError{Field: "password", Msg: "password is required"})
	}
	if len(errs) > 0 {
		s.writeServiceError(w, r, errs)
		return
	}

	user, pair, err := s.tokens.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	recordID, ok2 := recordIDFromContext(r.Context())
	if !ok || !ok2 {
		writeUnauthenticated(w)
		return
	}

	pair, err := s.tokens.Refresh(r.Context(), id.UserID, recordID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	setTokenCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	recordID, ok := recordIDFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	if err := s.tokens.Logout(r.Context(), recordID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	clearTokenCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeUnauthenticated(w)
		return
	}

	user, err := s.tokens.Self(r.Context(), id.UserID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
