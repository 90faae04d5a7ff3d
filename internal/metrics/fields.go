package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrUpstream = "upstream"
	AttrResource = "resource"
	AttrResult   = "result"
	AttrReason   = "reason"
)
