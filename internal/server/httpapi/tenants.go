package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mkravets/auth-service/internal/common"
	"github.com/mkravets/auth-service/internal/server/models"
)

type tenantRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (req *tenantRequest) validate() error {
	if req.Name == "" {
		return common.FieldErrors{{Field: "name", Msg: "name is required"}}
	}
	return nil
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	tenant, err := s.tenants.Create(r.Context(), req.Name, req.Address)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
}

func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var req tenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.tenants.Update(r.Context(), id, req.Name, req.Address); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	tenant, err := s.tenants.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.tenants.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if tenants == nil {
		tenants = []models.Tenant{}
	}
	writeJSON(w, http.StatusOK, tenants)
}

func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.tenants.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
