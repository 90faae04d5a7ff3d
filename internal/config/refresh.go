package config

// RefreshConfig controls the scheduled cache warm.
type RefreshConfig struct {
	Enabled  bool
	Schedule string // standard 5-field cron spec, evaluated in NextGameConfig.Timezone
}

func loadRefresh() RefreshConfig {
	return RefreshConfig{
		Enabled:  boolEnvOrDefault(envRefreshEnabled, defaultRefreshEnabled),
		Schedule: envOrDefault(envRefreshSchedule, defaultRefreshSchedule),
	}
}

// AdminConfig holds shared secrets for the administrative endpoints.
// An empty value leaves the matching endpoint unauthenticated.
type AdminConfig struct {
	Token      string
	CronSecret string
}

func loadAdmin() AdminConfig {
	return AdminConfig{
		Token:      envOrDefault(envAdminToken, ""),
		CronSecret: envOrDefault(envCronSecret, ""),
	}
}
