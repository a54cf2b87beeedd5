package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectHit は1回分のINCR + EXPIRE NXトランザクションを期待値として登録します。
func expectHit(mock redismock.ClientMock, key string, window time.Duration, count int64, expireErr error) {
	mock.ExpectTxPipeline()
	mock.ExpectIncr(key).SetVal(count)
	if expireErr != nil {
		mock.ExpectExpireNX(key, window).SetErr(expireErr)
	} else {
		mock.ExpectExpireNX(key, window).SetVal(count == 1)
	}
	mock.ExpectTxPipelineExec()
}

// TestNewRedisLimiter_Defaults は不正な値がデフォルト値に置き換えられることを検証します。
func TestNewRedisLimiter_Defaults(t *testing.T) {
	t.Parallel()

	rdb, _ := redismock.NewClientMock()
	l := NewRedisLimiter(rdb, "rl", 0, 0)

	assert.Equal(t, int64(1), l.limit)
	assert.Equal(t, time.Minute, l.window)
	assert.Equal(t, "rl", l.prefix)
}

// TestRedisLimiter_Allow はカウントが上限以下の間だけ許可されることを検証します。
func TestRedisLimiter_Allow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		count  int64
		expect bool
	}{
		{"first request opens window", 1, true},
		{"at limit", 3, true},
		{"over limit", 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rdb, mock := redismock.NewClientMock()
			l := NewRedisLimiter(rdb, "rl", 3, time.Minute)

			expectHit(mock, "rl:join:10.0.0.1", time.Minute, tt.count, nil)

			allowed, err := l.Allow(context.Background(), "join:10.0.0.1")

			require.NoError(t, err)
			assert.Equal(t, tt.expect, allowed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestRedisLimiter_Allow_RearmsTTLAfterExpireFailure は初回のEXPIREが失敗しても
// 以降のリクエストでTTLが再設定され、キーが永続化されないことを検証します。
func TestRedisLimiter_Allow_RearmsTTLAfterExpireFailure(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	l := NewRedisLimiter(rdb, "rl", 2, time.Minute)
	ctx := context.Background()

	expectHit(mock, "rl:k", time.Minute, 1, errors.New("i/o timeout"))
	expectHit(mock, "rl:k", time.Minute, 2, nil)
	expectHit(mock, "rl:k", time.Minute, 3, nil)

	_, err := l.Allow(ctx, "k")
	assert.Error(t, err, "first hit reports the failed EXPIRE")

	allowed, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.NoError(t, mock.ExpectationsWereMet(), "every hit must send EXPIRE NX")
}

// TestRedisLimiter_Allow_Error はRedisエラー時にエラーが返されることを検証します。
func TestRedisLimiter_Allow_Error(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	l := NewRedisLimiter(rdb, "rl", 3, time.Minute)

	mock.ExpectTxPipeline()
	mock.ExpectIncr("rl:k").SetErr(errors.New("connection refused"))
	mock.ExpectExpireNX("rl:k", time.Minute).SetVal(false)
	mock.ExpectTxPipelineExec()

	allowed, err := l.Allow(context.Background(), "k")

	assert.False(t, allowed)
	assert.ErrorContains(t, err, "connection refused")
}
