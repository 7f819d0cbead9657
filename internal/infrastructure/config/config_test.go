package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
  mode: test
database:
  host: db
  port: 3306
  user: shop
  password: secret
  dbname: bookshop
  loc: Asia/Shanghai
redis:
  host: cache
  port: 6380
jwt:
  secret: test-secret
  access_token_expire: 30m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadFrom(t *testing.T) {
	dir := writeConfig(t, testYAML)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTokenExpire)
	// 未配置的键取默认值
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenExpire)
	assert.True(t, cfg.Order.VerifyUnitPrice)
	assert.Equal(t, "topic", cfg.MQ.ExchangeType)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Password.ResetTokenExpire)
}

func TestLoadFromEnvOverride(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("BOOKSHOP_DATABASE_PASSWORD", "from-env")
	t.Setenv("BOOKSHOP_ORDER_VERIFY_UNIT_PRICE", "false")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.False(t, cfg.Order.VerifyUnitPrice)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: 3306, User: "shop", Password: "secret", DBName: "bookshop",
		Charset: "utf8mb4", ParseTime: true, Loc: "Asia/Shanghai",
	}
	want := "shop:secret@tcp(db:3306)/bookshop?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai"
	if got := d.DSN(); got != want {
		t.Errorf("DSN错误:\n got  %s\n want %s", got, want)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, Mode: "release"},
			Database: DatabaseConfig{MaxOpenConns: 10, MaxIdleConns: 5},
			Redis:    RedisConfig{PoolSize: 10},
			JWT:      JWTConfig{Secret: "a-real-secret"},
		}
	}

	require.NoError(t, validate(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"非法端口", func(c *Config) { c.Server.Port = 70000 }},
		{"生产环境默认密钥", func(c *Config) { c.JWT.Secret = "your-secret-key-change-in-production" }},
		{"连接池为0", func(c *Config) { c.Database.MaxIdleConns = 0 }},
		{"Redis连接池为0", func(c *Config) { c.Redis.PoolSize = 0 }},
		{"启用MQ缺少URL", func(c *Config) { c.MQ.Enabled = true }},
		{"采样率越界", func(c *Config) { c.Tracing.SampleRatio = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}
