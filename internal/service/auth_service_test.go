package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"school-lunch/backend/config"
	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/pkg/jwt"
)

func setupTestAuthService() (AuthService, *testRepos, *mockBlacklist, *jwt.Manager) {
	r := newTestRepos()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	classID := uint(1)
	r.teachers.teachers[3] = &model.Teacher{
		TeacherID: 3, FirstName: "Tom", LastName: "Hill",
		Email: "tom.hill@school.test", ClassID: &classID, PasswordHash: string(hash),
	}
	r.teachers.teachers[4] = &model.Teacher{TeacherID: 4, FirstName: "No", LastName: "Password", Email: "nopw@school.test"}

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: time.Hour,
	})
	bl := &mockBlacklist{}
	return NewAuthService(r.repo, jwtMgr, bl, zap.NewNop()), r, bl, jwtMgr
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _, jwtMgr := setupTestAuthService()

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "Tom.Hill@school.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.Teacher.ID != 3 || resp.Teacher.ClassID == nil || *resp.Teacher.ClassID != 1 {
		t.Errorf("教师信息不符: %+v", resp.Teacher)
	}
	if resp.ExpiresIn <= 0 || resp.ExpiresIn > 3600 {
		t.Errorf("ExpiresIn 应在 (0, 3600]，实际 %d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("签发的 Token 应可解析: %v", err)
	}
	if claims.TeacherID != 3 {
		t.Errorf("Token 中 TeacherID 期望 3，实际 %d", claims.TeacherID)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	ctx := context.Background()

	cases := []dto.LoginRequest{
		{Email: "tom.hill@school.test", Password: "wrong"},
		{Email: "nobody@school.test", Password: "correct-horse"},
		{Email: "nopw@school.test", Password: ""},
	}
	for _, req := range cases {
		if _, err := svc.Login(ctx, &req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s 期望 ErrInvalidCredentials，实际: %v", req.Email, err)
		}
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, bl, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := bl.tokens["jti-1"]
	if !ok {
		t.Fatal("jti 应加入黑名单")
	}
	if ttl <= 0 || ttl > 30*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际 %v", ttl)
	}
}

func TestAuthService_Logout_WithoutRedis(t *testing.T) {
	r := newTestRepos()
	svc := NewAuthService(r.repo, nil, nil, zap.NewNop())
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("无 Redis 时 Logout 应静默成功: %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	me, err := svc.Me(context.Background(), 3)
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if me.Email != "tom.hill@school.test" {
		t.Errorf("期望 Email=tom.hill@school.test，实际=%s", me.Email)
	}
	if _, err := svc.Me(context.Background(), 99); !errors.Is(err, ErrTeacherNotFound) {
		t.Errorf("期望 ErrTeacherNotFound，实际: %v", err)
	}
}
