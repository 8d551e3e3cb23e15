package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 1.0, cfg.Grading.MinScore)
	assert.Equal(t, 10.0, cfg.Grading.MaxScore)
	assert.Equal(t, 6.0, cfg.Grading.AtRiskThreshold)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("AT_RISK_THRESHOLD", "6.5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("CACHE_TTL", "not-a-duration")

	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 6.5, cfg.Grading.AtRiskThreshold)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
}

func TestFromViperRejectsInvalidValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := fromViper(newTestViper())
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("GRADE_MIN_SCORE", "10")
	_, err = fromViper(newTestViper())
	assert.Error(t, err)
}

func TestFromViperProductionNeedsSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	_, err := fromViper(newTestViper())
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := fromViper(newTestViper())
	require.NoError(t, err)
	assert.Equal(t, "a-real-secret", cfg.JWT.Secret)
}

func TestFromViperRejectsNonPositiveThreshold(t *testing.T) {
	t.Setenv("AT_RISK_THRESHOLD", "0")
	_, err := fromViper(newTestViper())
	assert.Error(t, err)
}
