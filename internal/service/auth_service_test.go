package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"class-schedule/backend/config"
	"class-schedule/backend/internal/dto"
	"class-schedule/backend/internal/model"
	"class-schedule/backend/pkg/jwt"
)

func setupAuthService(t *testing.T) (AuthService, *testRepos) {
	t.Helper()
	repos := newTestRepos()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	repos.user.users["fac-1"] = &model.User{
		UserID: "fac-1", Name: "张老师", EmployeeID: "T1001",
		Email: "zhang@example.edu", PasswordHash: string(hash),
		Role: model.RoleFaculty, DepartmentID: "dept-1",
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repos.toRepository(), jwtMgr, nil, zap.NewNop())
	return svc, repos
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := setupAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "zhang@example.edu", Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录不应失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("应签发 AccessToken")
	}
	if resp.User == nil || resp.User.ID != "fac-1" || resp.User.Role != model.RoleFaculty {
		t.Errorf("用户信息不符: %+v", resp.User)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "zhang@example.edu", Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误应拒绝, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "nobody@example.edu", Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱应与密码错误同样响应, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _ := setupAuthService(t)

	resp, err := svc.Me(context.Background(), "fac-1")
	if err != nil {
		t.Fatalf("身份查询不应失败: %v", err)
	}
	if resp.EmployeeID != "T1001" {
		t.Errorf("工号不符, got %s", resp.EmployeeID)
	}
}

func TestMeNotFound(t *testing.T) {
	svc, _ := setupAuthService(t)

	_, err := svc.Me(context.Background(), "missing")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("应报用户不存在, got %v", err)
	}
}
