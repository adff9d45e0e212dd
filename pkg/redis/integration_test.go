//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"school-lunch/backend/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(&config.RedisConfig{Addr: addr, DB: 15}, zap.NewNop())
	if err != nil {
		t.Fatalf("无法连接测试 Redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCheckRateLimit(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	for i := 1; i <= 3; i++ {
		ok, err := c.CheckRateLimit(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("第 %d 次请求应放行: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := c.CheckRateLimit(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if ok {
		t.Error("超过限额后应拒绝")
	}
}

func TestBlacklistAndReportCache(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	jti := "jti-" + time.Now().Format(time.RFC3339Nano)

	if err := c.BlacklistToken(ctx, jti, time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	if hit, _ := c.IsBlacklisted(ctx, jti); !hit {
		t.Error("加入黑名单后应命中")
	}

	v1, err := c.ReportVersion(ctx)
	if err != nil {
		t.Fatalf("ReportVersion 失败: %v", err)
	}
	if err := c.BumpReportVersion(ctx); err != nil {
		t.Fatalf("BumpReportVersion 失败: %v", err)
	}
	v2, _ := c.ReportVersion(ctx)
	if v2 != v1+1 {
		t.Errorf("版本号应递增，v1=%d v2=%d", v1, v2)
	}

	key := ReportKey(v2, "test")
	if err := c.SetCached(ctx, key, []byte(`{"ok":true}`), time.Minute); err != nil {
		t.Fatalf("SetCached 失败: %v", err)
	}
	b, hit, err := c.GetCached(ctx, key)
	if err != nil || !hit || string(b) != `{"ok":true}` {
		t.Errorf("缓存读取不一致: hit=%v err=%v val=%s", hit, err, b)
	}
	if _, hit, _ := c.GetCached(ctx, ReportKey(v2+100, "test")); hit {
		t.Error("不存在的键不应命中")
	}
}
