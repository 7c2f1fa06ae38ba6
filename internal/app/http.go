package app

import (
	"net/http"
	"time"
)

// newHTTPServer returns a server with bounded header, read and write times so
// slow uploads cannot hold connections open indefinitely.
func newHTTPServer(cfg Config, h http.Handler) *http.Server {
	read := cfg.ReadTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}
	write := cfg.WriteTimeout
	if write <= 0 {
		write = DefaultWriteTimeout
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
