package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/transport/http/dto"
	"social_backend/internal/platform/logging"
)

// AuthService はログイン操作を定義します。
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthHandler はログインのHTTPリクエストを処理します。
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login はユーザーログインAPIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - 認証失敗時は原因を伏せて401を返却
// - ストレージ障害やトークン生成失敗時は500を返却
// - 認証成功時はJWTトークン付きで200を返却
func (h *AuthHandler) Login(c *gin.Context) {
	log := logging.FromContext(c.Request.Context())

	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("login validation failed", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation, domain.KindNotFound:
			// 列挙攻撃を防ぐため、原因はログにのみ残す
			log.Warn("login failed", "error", err, "email", req.Email)
			c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: domain.ErrInvalidCredentials.Error()})
		default:
			log.Error("login failed", "error", err)
			internalError(c)
		}
		return
	}
	log.Info("user login successful", "email", req.Email)
	c.JSON(http.StatusOK, dto.TokenRes{Token: token})
}
