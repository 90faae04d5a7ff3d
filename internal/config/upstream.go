package config

// UpstreamConfig controls how we reach the NBA feeds and the injury fallback.
type UpstreamConfig struct {
	ScheduleURL     string
	StatsBaseURL    string
	LiveBaseURL     string
	InjuryPageURL   string
	InjuryDocURL    string
	InjuryHTMLURL   string
	Timeout         Duration
	RequestsPerSec  float64
	Burst           int
	MaxAttempts     int
	BreakerFailures int
	BreakerCooldown Duration
}

func loadUpstream() UpstreamConfig {
	return UpstreamConfig{
		ScheduleURL:     envOrDefault(envScheduleURL, defaultScheduleURL),
		StatsBaseURL:    envOrDefault(envStatsBaseURL, defaultStatsBaseURL),
		LiveBaseURL:     envOrDefault(envLiveBaseURL, defaultLiveBaseURL),
		InjuryPageURL:   envOrDefault(envInjuryPageURL, defaultInjuryPageURL),
		InjuryDocURL:    envOrDefault(envInjuryDocURL, defaultInjuryDocURL),
		InjuryHTMLURL:   envOrDefault(envInjuryHTMLURL, defaultInjuryHTMLURL),
		Timeout:         durationEnvOrDefault(envUpstreamTimeout, defaultUpstreamTimeout),
		RequestsPerSec:  floatEnvOrDefault(envUpstreamRPS, defaultUpstreamRPS),
		Burst:           intEnvOrDefault(envUpstreamBurst, defaultUpstreamBurst),
		MaxAttempts:     intEnvOrDefault(envUpstreamRetries, defaultUpstreamAttempts),
		BreakerFailures: intEnvOrDefault(envBreakerFailures, defaultBreakerFailures),
		BreakerCooldown: durationEnvOrDefault(envBreakerCooldown, defaultBreakerCooldown),
	}
}
