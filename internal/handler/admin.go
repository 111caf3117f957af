package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/userfolio/accounts-api/internal/domain"
	"github.com/userfolio/accounts-api/internal/logging"
)

type adminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// AdminHandler exposes the dashboard operations. Routes using it must sit
// behind the auth and admin middleware; the handler itself assumes the
// caller has already been vetted.
type AdminHandler struct {
	svc adminService
}

func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type usersResponse struct {
	Success bool          `json:"success"`
	Users   []userPayload `json:"users"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list users", "error", err)
		RespondDomainError(w, err)
		return
	}

	payloads := make([]userPayload, 0, len(users))
	for i := range users {
		payloads = append(payloads, newUserPayload(&users[i]))
	}

	RespondJSON(w, http.StatusOK, usersResponse{Success: true, Users: payloads})
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}

	user, err := h.svc.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "User status updated",
		User:    newUserPayload(user),
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User deleted successfully",
	})
}
