package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_KEY", "")
	t.Setenv("EMAIL_USER", "")
	t.Setenv("EMAIL_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_KEY")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ProductionComplete(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_KEY", "admin")
	t.Setenv("EMAIL_USER", "bot@example.com")
	t.Setenv("EMAIL_PASSWORD", "pw")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.MailEnabled())
}

func TestValidate_RejectsBadSMTPPort(t *testing.T) {
	cfg := &Config{AppEnv: "development", Port: "3001", SMTPPort: 70000}
	assert.Error(t, validate(cfg))
}
