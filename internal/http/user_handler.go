package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"storyroom/internal/auth"
	"storyroom/internal/entity"
	"storyroom/internal/usecase"
)

const accessTokenTTL = 24 * time.Hour

type UserHandler struct {
	repo   usecase.UserRepository
	secret string
}

func NewUserHandler(repo usecase.UserRepository, secret string) *UserHandler {
	return &UserHandler{repo: repo, secret: secret}
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password_strength"`
}

// @Summary Register new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body registerReq true "User registration data"
// @Success 201 {object} entity.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if details := ValidateStruct(req); len(details) > 0 {
		writeError(w, http.StatusBadRequest, "Validation Error", details)
		return
	}

	if _, err := h.repo.GetByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "Username or Email already exists", nil)
		return
	} else if !errors.Is(err, usecase.ErrNotFound) {
		h.internalError(w, "register: lookup failed", err)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, "register: hash failed", err)
		return
	}

	newUser := &entity.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}
	if err := h.repo.Create(r.Context(), newUser); err != nil {
		// Unique constraint backstop for the register race.
		if errors.Is(err, usecase.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "Username or Email already exists", nil)
			return
		}
		h.internalError(w, "register: create failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, publicUser(*newUser))
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Login user
// @Description Authenticate with email and password, returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param login body loginReq true "Login credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *UserHandler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if details := ValidateStruct(req); len(details) > 0 {
		writeError(w, http.StatusBadRequest, "Validation Error", details)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil || !auth.VerifyPassword(user.Password, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := auth.GenerateToken(h.secret, user.ID, accessTokenTTL)
	if err != nil {
		h.internalError(w, "login: token generation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"expires_in":   int(accessTokenTTL.Seconds()),
	})
}

// @Summary Get current user
// @Description Get the authenticated user's public record
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} entity.User
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFrom(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	user, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	writeJSON(w, http.StatusOK, publicUser(user))
}

func (h *UserHandler) internalError(w http.ResponseWriter, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	writeError(w, http.StatusInternalServerError, "Internal server error", nil)
}

func publicUser(u entity.User) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	}
}
