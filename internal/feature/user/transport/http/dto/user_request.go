// Package dto はuserフィーチャーのHTTPトランスポート層で使用するデータ転送オブジェクトを定義します。
package dto

// JoinReq は /api/users/join エンドポイントのリクエストボディを表します。
// メールアドレスの書式はbindingタグではなく entity.NewEmail で検証します。
type JoinReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginReq は /api/users/login エンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DeleteUserQuery は DELETE /api/users のクエリ文字列を表します。
type DeleteUserQuery struct {
	Email string `form:"email" binding:"required"`
}
