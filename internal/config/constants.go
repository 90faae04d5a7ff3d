package config

import "time"

const (
	envPort          = "PORT"
	envMetricsPort   = "METRICS_PORT"
	envMetricsOn     = "METRICS_ENABLED"
	envOtelEndpoint  = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService   = "OTEL_SERVICE_NAME"
	envOtelInsecure  = "OTEL_EXPORTER_OTLP_INSECURE"
	envAdminToken    = "ADMIN_TOKEN"
	envCronSecret    = "CRON_SECRET"
	envRedisURL      = "REDIS_URL"
	envCachePrefix   = "CACHE_KEY_PREFIX"
	envCacheDisabled = "CACHE_DISABLED"

	envScheduleURL     = "SCHEDULE_URL"
	envStatsBaseURL    = "STATS_BASE_URL"
	envLiveBaseURL     = "LIVE_BASE_URL"
	envInjuryPageURL   = "INJURY_PAGE_URL"
	envInjuryDocURL    = "INJURY_DOC_BASE_URL"
	envInjuryHTMLURL   = "INJURY_FALLBACK_URL"
	envUpstreamTimeout = "UPSTREAM_TIMEOUT"
	envUpstreamRPS     = "UPSTREAM_RPS"
	envUpstreamBurst   = "UPSTREAM_BURST"
	envUpstreamRetries = "UPSTREAM_MAX_ATTEMPTS"
	envBreakerFailures = "BREAKER_FAILURES"
	envBreakerCooldown = "BREAKER_COOLDOWN"

	envDefaultTeam      = "DEFAULT_TEAM_ID"
	envAggregateTimeout = "AGGREGATE_TIMEOUT"
	envLineupOrder      = "LINEUP_ORDER"
	envTimezone         = "TIMEZONE"

	envRefreshEnabled  = "REFRESH_ENABLED"
	envRefreshSchedule = "REFRESH_SCHEDULE"

	defaultPort        = "4000"
	defaultMetricsPort = "9090"

	defaultScheduleURL   = "https://cdn.nba.com/static/json/staticData/scheduleLeagueV2.json"
	defaultStatsBaseURL  = "https://stats.nba.com/stats"
	defaultLiveBaseURL   = "https://cdn.nba.com/static/json/liveData"
	defaultInjuryPageURL = "https://official.nba.com/nba-injury-report-2025-26-season/"
	defaultInjuryDocURL  = "https://ak-static.cms.nba.com/referee/injury/"
	defaultInjuryHTMLURL = "https://www.cbssports.com/nba/injuries/"

	defaultUpstreamTimeout = 10 * Duration(time.Second)
	// stats.nba.com throttles aggressively; stay well under a request per second.
	defaultUpstreamRPS      = 2.0
	defaultUpstreamBurst    = 4
	defaultUpstreamAttempts = 3
	defaultBreakerFailures  = 5
	defaultBreakerCooldown  = 30 * Duration(time.Second)

	// Cleveland Cavaliers.
	defaultTeamID           = 1610612739
	defaultAggregateTimeout = 10 * Duration(time.Second)
	defaultLineupOrder      = "position"
	defaultTimezone         = "America/New_York"

	defaultRefreshEnabled  = true
	defaultRefreshSchedule = "0 */6 * * *"
)
