package utils

import "testing"

func TestPostgresPoolDefaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns <= 0 || c.PingTimeout <= 0 {
		t.Fatalf("expected safe defaults, got %+v", c)
	}
}

func TestRedisDefaults(t *testing.T) {
	c := RedisConfig{Addr: "localhost:6379"}.withDefaults()
	if c.DialTimeout <= 0 || c.PoolSize <= 0 || c.PingTimeout <= 0 {
		t.Fatalf("expected safe defaults, got %+v", c)
	}
}
