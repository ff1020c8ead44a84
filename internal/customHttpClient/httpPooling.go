package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/DoubtSolver/internal/config"
)

// shared by every generation client so keep-alive connections are reused across requests
var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}

func CloseIdleConnections() {
	customTransport.CloseIdleConnections()
}
