package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Auth:     AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Lunch:    LunchConfig{Timezone: "Europe/London"},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"空密钥", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, "16"},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"未知驱动", func(c *Config) { c.Database.Driver = "mysql" }, "mysql"},
		{"sqlite 无路径", func(c *Config) { c.Database.Driver = DriverSQLite; c.Database.SQLitePath = "" }, "sqlite_path"},
		{"时区无效", func(c *Config) { c.Lunch.Timezone = "Mars/Olympus" }, "timezone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("期望校验失败")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("错误信息应包含 %q，实际: %v", tc.want, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", Name: "lunch", SSLMode: "disable", Timezone: "UTC"}
	if got := pg.DSN(); !strings.Contains(got, "host=db") || !strings.Contains(got, "dbname=lunch") {
		t.Errorf("postgres DSN 不正确: %s", got)
	}

	lite := DatabaseConfig{Driver: DriverSQLite, SQLitePath: "cafeteria.db"}
	if got := lite.DSN(); !strings.HasPrefix(got, "file:cafeteria.db") || !strings.Contains(got, "_foreign_keys=on") {
		t.Errorf("sqlite DSN 不正确: %s", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LUNCH_AUTH_JWT_SECRET", "env-secret-key-0123456789")
	t.Setenv("LUNCH_DB_DRIVER", "sqlite")
	t.Setenv("LUNCH_LUNCH_TIMEZONE", "Europe/London")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("期望 driver=sqlite，实际=%s", cfg.Database.Driver)
	}
	if cfg.Lunch.Location().String() != "Europe/London" {
		t.Errorf("期望时区 Europe/London，实际=%s", cfg.Lunch.Location())
	}
	if cfg.Auth.AccessTokenTTL != 12*time.Hour {
		t.Errorf("期望默认 TTL=12h，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Lunch.ReportCacheTTL != time.Minute {
		t.Errorf("期望默认缓存 TTL=1m，实际=%v", cfg.Lunch.ReportCacheTTL)
	}
}
