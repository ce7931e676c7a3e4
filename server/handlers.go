package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"musichub/cache"
	"musichub/config"
	"musichub/core/auth"
	"musichub/logger"
	"musichub/model"
	"musichub/repository"
	"musichub/storage"
)

// APIHandler 处理所有API请求
type APIHandler struct {
	userRepo     repository.UserRepository
	songRepo     repository.SongRepository
	playlistRepo repository.PlaylistRepository
	likeRepo     repository.LikeRepository
	media        *storage.MediaStore
	catalogCache *cache.CatalogCache
	playerCache  *cache.PlayerStateCache
	signer       *auth.TokenSigner
	cfg          *config.Config
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	userRepo repository.UserRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	likeRepo repository.LikeRepository,
	media *storage.MediaStore,
	catalogCache *cache.CatalogCache,
	playerCache *cache.PlayerStateCache,
	signer *auth.TokenSigner,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		songRepo:     songRepo,
		playlistRepo: playlistRepo,
		likeRepo:     likeRepo,
		media:        media,
		catalogCache: catalogCache,
		playerCache:  playerCache,
		signer:       signer,
		cfg:          cfg,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", logger.ErrorField(err))
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type contextKey string

const (
	contextKeyUserID contextKey = "userID"
	contextKeyRole   contextKey = "role"
)

// AuthMiddleware is a middleware function that checks for a valid JWT token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.signer.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, contextKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware additionally requires the token to carry the admin role.
// 管理端接口在普通认证之上再校验角色
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		role, err := GetRoleFromContext(r.Context())
		if err != nil || role != model.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// GetRoleFromContext extracts the account role from the request context.
func GetRoleFromContext(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextKeyRole).(string)
	if !ok {
		return "", fmt.Errorf("role not found in context")
	}
	return role, nil
}
