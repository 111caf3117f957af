package handler

import "net/http"

type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken       = &AppError{http.StatusUnauthorized, "Authorization header required"}
	ErrInvalidToken       = &AppError{http.StatusUnauthorized, "Token is invalid or expired"}
	ErrAdminRequired      = &AppError{http.StatusForbidden, "Admin access required"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "Invalid credentials"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "Invalid request body"}
	ErrMissingEmailField  = &AppError{http.StatusBadRequest, "Email parameter is required"}
	ErrMissingCredentials = &AppError{http.StatusBadRequest, "Email and password are required"}
	ErrMissingUpdates     = &AppError{http.StatusBadRequest, "Email and updates are required"}
	ErrNoFileUploaded     = &AppError{http.StatusBadRequest, "No file uploaded"}
	ErrInvalidImage       = &AppError{http.StatusBadRequest, "Invalid image file"}
	ErrUserExists         = &AppError{http.StatusConflict, "User already exists"}
	ErrUserNotFound       = &AppError{http.StatusNotFound, "User not found"}
	ErrUploadFailed       = &AppError{http.StatusInternalServerError, "Failed to upload image"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "Internal server error"}
)
