package config

const (
	DefaultBaseURL     = "http://127.0.0.1:8080/api"
	DefaultTimeout     = "30s"
	DefaultCacheDriver = "sqlite3"
	DefaultAlertRange  = "high,critical"
	DefaultListen      = "127.0.0.1:16868"
	DefaultWorkers     = 4
)
