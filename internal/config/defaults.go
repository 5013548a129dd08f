package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	// Manager
	v.SetDefault("manager.gameStateCacheTTL", 60000)
	v.SetDefault("manager.resultsCacheTTL", 30000)
	v.SetDefault("manager.storageTimeout", 2000)
	v.SetDefault("manager.debug", false)

	// Storage
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.namespace", "marathon_fantasy")
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.keyTTL", 0)
	v.SetDefault("storage.sqlite.path", "marathon-draft.db")

	// Remote endpoint
	v.SetDefault("remote.baseURL", "http://localhost:8080")
	v.SetDefault("remote.timeout", 10)

	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)
	v.SetDefault("server.writeTimeout", 15)
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("manager.gameStateCacheTTL", "DRAFT_GAME_STATE_CACHE_TTL")
	v.BindEnv("manager.resultsCacheTTL", "DRAFT_RESULTS_CACHE_TTL")
	v.BindEnv("manager.storageTimeout", "DRAFT_STORAGE_TIMEOUT")
	v.BindEnv("manager.debug", "DRAFT_DEBUG")

	v.BindEnv("storage.driver", "DRAFT_STORAGE_DRIVER")
	v.BindEnv("storage.namespace", "DRAFT_STORAGE_NAMESPACE")
	v.BindEnv("storage.redis.address", "DRAFT_REDIS_ADDRESS")
	v.BindEnv("storage.redis.password", "DRAFT_REDIS_PASSWORD")
	v.BindEnv("storage.redis.db", "DRAFT_REDIS_DB")
	v.BindEnv("storage.redis.keyTTL", "DRAFT_REDIS_KEY_TTL")
	v.BindEnv("storage.sqlite.path", "DRAFT_SQLITE_PATH")
	v.BindEnv("storage.postgres.dsn", "DRAFT_POSTGRES_DSN")

	v.BindEnv("remote.baseURL", "DRAFT_REMOTE_BASE_URL")
	v.BindEnv("remote.timeout", "DRAFT_REMOTE_TIMEOUT")

	v.BindEnv("server.port", "DRAFT_PORT")
	v.BindEnv("server.readTimeout", "DRAFT_READ_TIMEOUT")
	v.BindEnv("server.writeTimeout", "DRAFT_WRITE_TIMEOUT")
}
