package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, PasswordSchemePlain, cfg.Auth.PasswordScheme)
	assert.Equal(t, 5, cfg.Sales.LowStockThreshold)
	assert.Equal(t, 480, cfg.JWT.Expiration)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.DB.Migrate)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "Memory")
	v.Set("AUTH_PASSWORD_SCHEME", "bcrypt")
	v.Set("SALES_LOW_STOCK_THRESHOLD", "10")
	v.Set("HTTP_PORT", 9090)
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("DB_MIGRATE", false)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, PasswordSchemeBcrypt, cfg.Auth.PasswordScheme)
	assert.Equal(t, 10, cfg.Sales.LowStockThreshold)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.False(t, cfg.DB.Migrate)
}

func TestFromViper_Invalidos(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":              "mongo",
		"AUTH_PASSWORD_SCHEME":      "md5",
		"SALES_LOW_STOCK_THRESHOLD": "-1",
	}
	for key, val := range cases {
		v := viper.New()
		v.Set(key, val)
		_, err := fromViper(v)
		assert.Error(t, err, key)
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "pos", Password: "p@ss:word", DBName: "ventas", SSLMode: "disable"}
	assert.Equal(t, "postgres://pos:p%40ss%3Aword@db:5432/ventas?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
