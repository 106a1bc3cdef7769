package rod

var (
	ToHTTPCookies = toHTTPCookies
	HostOf        = hostOf
	IsTargetGone  = isTargetGone
)
