package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/userfolio/accounts-api/internal/auth"
	"github.com/userfolio/accounts-api/internal/domain"
	"github.com/userfolio/accounts-api/internal/logging"
	"github.com/userfolio/accounts-api/internal/service"
)

type accountService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetProfile(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, patch domain.Patch) (*domain.User, error)
}

type AuthHandler struct {
	svc         accountService
	jwtSecret   string
	jwtExpiry   time.Duration
	adminEmails map[string]bool
}

func NewAuthHandler(svc accountService, jwtSecret string, jwtExpiry time.Duration, adminEmails []string) *AuthHandler {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[e] = true
	}
	return &AuthHandler{
		svc:         svc,
		jwtSecret:   jwtSecret,
		jwtExpiry:   jwtExpiry,
		adminEmails: admins,
	}
}

// nameField accepts either {"first":..,"last":..} or a single "First Last"
// string; anything else decodes to the zero value and picks up the record
// defaults downstream.
type nameField struct {
	domain.Name
}

func (n *nameField) UnmarshalJSON(data []byte) error {
	var obj domain.Name
	if err := json.Unmarshal(data, &obj); err == nil {
		n.Name = obj
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Name = domain.SplitName(s)
		return nil
	}

	n.Name = domain.Name{}
	return nil
}

type registerRequest struct {
	Name     nameField `json:"name"`
	Company  string    `json:"company"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Age      int       `json:"age"`
	EyeColor string    `json:"eyeColor"`
	Balance  string    `json:"balance"`
	Picture  string    `json:"picture"`
}

type userResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    userPayload `json:"user"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		RespondAppError(w, ErrMissingCredentials)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name.Name,
		Company:  req.Company,
		Phone:    req.Phone,
		Address:  req.Address,
		Age:      req.Age,
		EyeColor: req.EyeColor,
		Balance:  req.Balance,
		Picture:  req.Picture,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("registration failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, userResponse{
		Success: true,
		Message: "User registered successfully",
		User:    newUserPayload(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		RespondAppError(w, ErrMissingCredentials)
		return
	}

	user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Admin:  h.adminEmails[user.Email],
	}, h.jwtSecret, h.jwtExpiry)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to issue token", "error", err)
		RespondAppError(w, ErrInternalError)
		return
	}

	RespondJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    newUserPayload(user),
	})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		RespondAppError(w, ErrMissingEmailField)
		return
	}

	user, err := h.svc.GetProfile(r.Context(), email)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, userResponse{
		Success: true,
		User:    newUserPayload(user),
	})
}

type updateProfileRequest struct {
	Email   string        `json:"email"`
	Updates *domain.Patch `json:"updates"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}

	if req.Email == "" || req.Updates == nil {
		RespondAppError(w, ErrMissingUpdates)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), req.Email, *req.Updates)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    newUserPayload(user),
	})
}
