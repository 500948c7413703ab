package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shudian-next/internal/config"
	"github.com/shudian-next/internal/models"
	"github.com/shudian-next/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-for-auth-service"
	cfg.JWT.ExpireHours = 24
	return NewAuthService(cfg, repository.NewAdminRepository(db)), db
}

func createTestAdmin(t *testing.T, db *gorm.DB, username, password string) *models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginAndParseJWT(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, db, "admin", "admin123456")

	admin, token, expiresAt, err := svc.Login("admin", "admin123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("login should return a token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("token expiry should be in the future, got %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	createTestAdmin(t, db, "admin", "admin123456")

	if _, _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrPasswordIncorrect) {
		t.Fatalf("want ErrPasswordIncorrect got %v", err)
	}
	// 不存在的账号与密码错误同错误，避免账号探测
	if _, _, _, err := svc.Login("ghost", "admin123456"); !errors.Is(err, ErrPasswordIncorrect) {
		t.Fatalf("want ErrPasswordIncorrect got %v", err)
	}
}

func TestParseJWTRejectsForeignToken(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)

	other, _ := setupAuthServiceTest(t)
	other.cfg.JWT.SecretKey = "another-secret-key-entirely-here"
	foreign, _, err := other.GenerateJWT(&models.Admin{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("generate foreign token failed: %v", err)
	}
	if _, err := svc.ParseJWT(foreign); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestGetAdminNotFound(t *testing.T) {
	svc, _ := setupAuthServiceTest(t)
	if _, err := svc.GetAdmin(999); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("want ErrAdminNotFound got %v", err)
	}
}
