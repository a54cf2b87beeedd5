// Package ratelimit は未認証エンドポイントへのリクエストをクライアントごとに制限します。
package ratelimit

import "context"

// Limiter はkeyで識別される呼び出し元のリクエストを許可するかを判定するインターフェースです。
// エラーは判定できなかったことを表します。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
