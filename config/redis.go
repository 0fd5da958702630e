package config

// RedisConfig contains Redis configuration for the durable result slot.
// Leave Addr empty to fall back to the in-process memory store (dev mode only).
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// IsConfigured returns true when a Redis endpoint was provided.
func (c *RedisConfig) IsConfigured() bool {
	return c.Addr != ""
}
