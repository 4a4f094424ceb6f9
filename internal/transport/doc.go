// Package transport builds the HTTP clients used to fetch documents.
//
// Requests go out directly by default. When a SOCKS5 proxy is configured
// all connections are dialed through it with golang.org/x/net/proxy, and
// CheckConnection verifies the proxy with a real SOCKS5 handshake before a
// search starts.
package transport
