package httpclient

import (
	"net"
	"net/http"
	"time"
)

// New returns a client with a bounded total timeout and pooled keep-alive
// connections, used for outbound calls to the push provider.
func New(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	transport.MaxIdleConnsPerHost = 16
	return &http.Client{Timeout: timeout, Transport: transport}
}
