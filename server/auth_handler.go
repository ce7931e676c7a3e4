package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"musichub/core/auth"
	"musichub/logger"
	"musichub/model"
	"musichub/repository"
)

// SignupRequest represents the account creation request body.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the signed token together with the account it
// belongs to. PasswordHash is never serialized.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// SignupHandler handles listener account registration.
func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleUser)
}

// AdminSignupHandler registers an administrator account.
func (h *APIHandler) AdminSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.signup(w, r, model.RoleAdmin)
}

func (h *APIHandler) signup(w http.ResponseWriter, r *http.Request, role string) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	userID, err := h.userRepo.CreateUser(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		logger.Error("Failed to create user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	user.ID = userID

	token, err := h.signer.GenerateToken(userID, role)
	if err != nil {
		logger.Error("Failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logger.Info("Account created",
		logger.Int64("userId", userID),
		logger.String("role", role),
	)
	writeJSON(w, http.StatusCreated, &AuthResponse{Token: token, User: user})
}

// LoginHandler authenticates a listener account by email and password.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, model.RoleUser)
}

// AdminLoginHandler authenticates an administrator account. Accounts
// without the admin role are rejected even with a valid password.
func (h *APIHandler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, model.RoleAdmin)
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request, requiredRole string) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		logger.Error("Failed to query user", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	// 未知邮箱和密码错误返回同一个提示
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if requiredRole == model.RoleAdmin && user.Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	token, err := h.signer.GenerateToken(user.ID, user.Role)
	if err != nil {
		logger.Error("Failed to generate token", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("Login succeeded",
		logger.Int64("userId", user.ID),
		logger.String("role", user.Role),
	)
	writeJSON(w, http.StatusOK, &AuthResponse{Token: token, User: user})
}
