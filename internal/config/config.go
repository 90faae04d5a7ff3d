package config

// Config holds runtime configuration for the server.
type Config struct {
	Port     string
	Cache    CacheConfig
	Upstream UpstreamConfig
	NextGame NextGameConfig
	Refresh  RefreshConfig
	Admin    AdminConfig
	Metrics  MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:     envOrDefault(envPort, defaultPort),
		Cache:    loadCache(),
		Upstream: loadUpstream(),
		NextGame: loadNextGame(),
		Refresh:  loadRefresh(),
		Admin:    loadAdmin(),
		Metrics:  loadMetrics(),
	}
}
