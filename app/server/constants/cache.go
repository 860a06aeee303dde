package constants

import "time"

const (
	CacheKeyAccountState  = "rcm:account:state:%d"
	CacheKeyLoginFailures = "rcm:login:failures:%s"
)

const (
	CacheExpireAccountState  = 5 * time.Minute
	CacheExpireLoginFailures = 15 * time.Minute
)
