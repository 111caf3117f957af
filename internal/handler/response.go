package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/userfolio/accounts-api/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// userPayload is the client-facing projection of a user record. It is the
// only user shape that ever leaves a handler, and it has no password field
// at all, so the hash cannot leak through a stray struct tag.
type userPayload struct {
	ID              string      `json:"_id"`
	GUID            string      `json:"guid"`
	Email           string      `json:"email"`
	Name            domain.Name `json:"name"`
	IsActive        bool        `json:"isActive"`
	Company         string      `json:"company"`
	Phone           string      `json:"phone"`
	Address         string      `json:"address"`
	Age             int         `json:"age"`
	EyeColor        string      `json:"eyeColor"`
	Balance         string      `json:"balance"`
	Picture         string      `json:"picture"`
	PicturePublicID string      `json:"picturePublicId"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func newUserPayload(u *domain.User) userPayload {
	return userPayload{
		ID:              u.ID,
		GUID:            u.GUID,
		Email:           u.Email,
		Name:            u.Name,
		IsActive:        u.IsActive,
		Company:         u.Company,
		Phone:           u.Phone,
		Address:         u.Address,
		Age:             u.Age,
		EyeColor:        u.EyeColor,
		Balance:         u.Balance,
		Picture:         u.Picture,
		PicturePublicID: u.PicturePublicID,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondAppError(w http.ResponseWriter, appErr *AppError) {
	RespondJSON(w, appErr.Status, errorResponse{
		Success: false,
		Message: appErr.Message,
	})
}

// RespondAppErrorDetail additionally surfaces an upstream error string, the
// way upload failures carry the remote service's message.
func RespondAppErrorDetail(w http.ResponseWriter, appErr *AppError, detail string) {
	RespondJSON(w, appErr.Status, errorResponse{
		Success: false,
		Message: appErr.Message,
		Error:   detail,
	})
}

// RespondDomainError maps domain sentinels onto the wire error table.
// Anything unrecognized is logged and reported as a generic 500.
func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrUserNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		appErr = ErrUserExists
	case errors.Is(err, domain.ErrInvalidCredentials):
		appErr = ErrInvalidCredentials
	case errors.Is(err, domain.ErrMissingFields):
		appErr = ErrMissingCredentials
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr)
}
