// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social_backend/internal/feature/user/domain"
	"social_backend/internal/feature/user/domain/entity"
	"social_backend/internal/feature/user/transport/http/dto"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/platform/logging"
)

// UserService はハンドラーが依存するユーザー操作を定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserService interface {
	FindAll(ctx context.Context) ([]entity.User, error)
	FindOne(ctx context.Context, seq uint) (*entity.User, error)
	Save(ctx context.Context, email entity.Email, password string) (*entity.User, error)
	Delete(ctx context.Context, email string) error
}

// UserHandler はユーザー管理のHTTPリクエストを処理します。
type UserHandler struct {
	users UserService
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Join は新規ユーザー登録APIエンドポイントを処理します。
// - ボディ・メールアドレス・パスワードが不正な場合は400を返却
// - メールアドレスが登録済みの場合は409を返却
// - 成功時は作成したユーザー付きで201を返却
func (h *UserHandler) Join(c *gin.Context) {
	log := logging.FromContext(c.Request.Context())

	var req dto.JoinReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("join validation failed", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid request"})
		return
	}
	email, err := entity.NewEmail(req.Email)
	if err != nil {
		log.Warn("join rejected", "error", err)
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: domain.ErrInvalidEmail.Error()})
		return
	}

	user, err := h.users.Save(c.Request.Context(), email, req.Password)
	if err != nil {
		writeError(c, "join failed", err)
		return
	}
	log.Info("user joined", "seq", user.Seq, "email", user.Email.String())
	c.JSON(http.StatusCreated, dto.NewUserRes(user))
}

// List はすべてのユーザーを返します。
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.FindAll(c.Request.Context())
	if err != nil {
		writeError(c, "list users failed", err)
		return
	}
	out := make([]dto.UserRes, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserRes(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Get はパスパラメータ :seq で指定されたユーザーを返します。
func (h *UserHandler) Get(c *gin.Context) {
	seq, err := strconv.ParseUint(c.Param("seq"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "invalid seq"})
		return
	}
	user, err := h.users.FindOne(c.Request.Context(), uint(seq))
	if err != nil {
		writeError(c, "get user failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserRes(user))
}

// Delete はクエリパラメータ email で指定されたユーザーを削除します。
// 削除できるのは認証済みユーザー自身のアカウントのみです。
// - 認証情報がない場合は401、他人のアカウントの場合は403を返却
// - 対象が存在しない場合は404を返却
// - 成功時は204を返却
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx)

	var q dto.DeleteUserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: "email is required"})
		return
	}
	callerSeq := c.GetUint(jwtmw.ContextUserSeq)
	if callerSeq == 0 {
		c.JSON(http.StatusUnauthorized, dto.ErrorRes{Error: "unauthorized"})
		return
	}
	email, err := entity.NewEmail(q.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorRes{Error: domain.ErrInvalidEmail.Error()})
		return
	}

	caller, err := h.users.FindOne(ctx, callerSeq)
	if err != nil {
		writeError(c, "delete user failed", err)
		return
	}
	if caller.Email != email {
		log.Warn("delete of another account rejected", "email", email.String())
		c.JSON(http.StatusForbidden, dto.ErrorRes{Error: "cannot delete another user"})
		return
	}

	if err := h.users.Delete(ctx, email.String()); err != nil {
		writeError(c, "delete user failed", err)
		return
	}
	log.Info("user deleted", "email", email.String())
	c.Status(http.StatusNoContent)
}

// writeError はエラーのKindをステータスコードに変換します。
// ストレージ由来の詳細はログにのみ出力し、レスポンスには含めません。
func writeError(c *gin.Context, msg string, err error) {
	log := logging.FromContext(c.Request.Context())

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		log.Info(msg, "error", err)
		c.JSON(http.StatusNotFound, dto.ErrorRes{Error: domain.ErrUserNotFound.Error()})
	case domain.KindValidation:
		log.Warn(msg, "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			status = http.StatusConflict
		}
		c.JSON(status, dto.ErrorRes{Error: publicMessage(err)})
	default:
		log.Error(msg, "error", err)
		internalError(c)
	}
}

// internalError は500を返却します。問い合わせ用にリクエストIDを含めます。
func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.ErrorRes{
		Error:     "internal server error",
		RequestID: logging.RequestIDFromContext(c.Request.Context()),
	})
}

// publicMessage はドメインエラーから操作名のプレフィックスを取り除きます。
func publicMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Err.Error()
	}
	return err.Error()
}
