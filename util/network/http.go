package network

import (
	"net/http"
	"time"
)

// NewHttpClient returns new HTTP client.
//
// <timeout> is a time limit for requests made by returned client.
func NewHttpClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
