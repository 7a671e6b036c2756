package config

// PostgresConfig is the shared Postgres connection block embedded by process
// configs (api, migrator).
type PostgresConfig struct {
	DSN string `env:"PG_DSN"`
}

// RedisConfig is the shared Redis connection block. Redis holds the
// matchmaking queue partitions.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" default:""`
	DB       int    `env:"REDIS_DB" default:"0"`
}
