package config

// CacheConfig selects the cache backend. An empty RedisURL means in-process memory.
type CacheConfig struct {
	RedisURL  string
	KeyPrefix string
	Disabled  bool
}

func loadCache() CacheConfig {
	return CacheConfig{
		RedisURL:  envOrDefault(envRedisURL, ""),
		KeyPrefix: envOrDefault(envCachePrefix, ""),
		Disabled:  boolEnvOrDefault(envCacheDisabled, false),
	}
}
