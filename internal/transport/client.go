package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout is the timeout for checking if the proxy is available.
// It is short because this is only a handshake, not a real request.
const checkProxyTimeout = 2 * time.Second

// maxRedirects limits redirect chains. Wikipedia title redirects are a
// single hop; anything longer than this is a loop.
const maxRedirects = 10

// Client builds HTTP clients that reach the web directly or through a
// SOCKS5 proxy.
type Client struct {
	// proxyAddress is the SOCKS5 proxy address in "host:port" format.
	// Empty means direct connections.
	proxyAddress string

	// auth holds optional SOCKS5 username/password credentials.
	auth *proxy.Auth

	// dialer is the SOCKS5 dialer, nil for direct connections.
	dialer proxy.Dialer

	// timeout is the per-request timeout of created HTTP clients.
	timeout time.Duration

	// headers are injected into every request.
	headers map[string]string

	// cookie is injected into every request if set.
	cookie string
}

// Option configures a Client.
type Option func(*Client) error

// WithProxy routes all connections through the SOCKS5 proxy at address.
// The address is "host:port" or "socks5://[user:pass@]host:port".
func WithProxy(address string) Option {
	return func(c *Client) error {
		if address == "" {
			return nil
		}
		hostPort, auth, err := ParseProxy(address)
		if err != nil {
			return err
		}
		c.proxyAddress = hostPort
		c.auth = auth
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) error {
		for k, v := range headers {
			c.headers[k] = v
		}
		return nil
	}
}

// WithCookie sends a raw cookie string ("name=value") with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) error {
		c.cookie = cookie
		return nil
	}
}

// NewClient creates a Client.
//
// This function validates the proxy address format but does not verify
// that the proxy is actually running. Call CheckConnection() to verify.
//
// Design decision: We don't connect to the proxy in the constructor because:
// 1. It separates object creation from network operations
// 2. It allows for better testing with mock proxies
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{headers: make(map[string]string)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.proxyAddress != "" {
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, c.auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		c.dialer = dialer
	}

	return c, nil
}

// ParseProxy splits a proxy address into "host:port" and optional
// credentials.
func ParseProxy(address string) (string, *proxy.Auth, error) {
	if !strings.Contains(address, "://") {
		if !isValidProxyAddress(address) {
			return "", nil, ErrInvalidProxyAddress
		}
		return address, nil, nil
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidProxyAddress, err)
	}
	if u.Scheme != "socks5" && u.Scheme != "socks5h" {
		return "", nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxyAddress, u.Scheme)
	}
	if !isValidProxyAddress(u.Host) {
		return "", nil, ErrInvalidProxyAddress
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}
	return u.Host, auth, nil
}

// isValidProxyAddress checks if the address is in valid "host:port" format.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 protocol constants
const (
	socks5Version       = 0x05
	socks5AuthNone      = 0x00
	socks5AuthPassword  = 0x02
	socks5AuthNoAccept  = 0xFF
	socks5CmdConnect    = 0x01
	socks5AddrTypeDomID = 0x03

	// socks5PasswordVersion is the subnegotiation version of RFC 1929.
	socks5PasswordVersion = 0x01

	// socks5TestHost is the destination used to verify that the proxy
	// processes CONNECT requests.
	socks5TestHost = "en.wikipedia.org"
	socks5TestPort = 443
)

// CheckConnection verifies that the SOCKS5 proxy is running and accessible.
// Without a proxy it reports ProxyStatusOK immediately.
//
// The check works by performing a SOCKS5 protocol handshake to verify:
// 1. The proxy speaks SOCKS5 protocol
// 2. The proxy accepts our credentials, if any
// 3. The proxy answers a CONNECT request
func (c *Client) CheckConnection(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// Step 1: version and method negotiation.
	greeting := []byte{socks5Version, 0x01, socks5AuthNone}
	if c.auth != nil {
		greeting = []byte{socks5Version, 0x02, socks5AuthNone, socks5AuthPassword}
	}
	if _, err := conn.Write(greeting); err != nil {
		return ProxyStatusCannotConnect
	}

	authResp := make([]byte, 2)
	if _, err := io.ReadFull(conn, authResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if authResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	switch authResp[1] {
	case socks5AuthNone:
	case socks5AuthPassword:
		if c.auth == nil {
			return ProxyStatusAuthFailed
		}
		if status := c.authenticate(conn); status != ProxyStatusOK {
			return status
		}
	case socks5AuthNoAccept:
		if c.auth == nil {
			return ProxyStatusAuthFailed
		}
		return ProxyStatusWrongType
	default:
		return ProxyStatusWrongType
	}

	// Step 2: the proxy must answer a CONNECT request. Failure replies are
	// fine; we only verify it is actually proxying.
	connectReq := []byte{
		socks5Version,
		socks5CmdConnect,
		0x00, // reserved
		socks5AddrTypeDomID,
		byte(len(socks5TestHost)),
	}
	connectReq = append(connectReq, []byte(socks5TestHost)...)
	connectReq = append(connectReq, byte(socks5TestPort>>8), byte(socks5TestPort&0xFF))

	if _, err := conn.Write(connectReq); err != nil {
		return ProxyStatusCannotConnect
	}

	connectResp := make([]byte, 4)
	if _, err := io.ReadFull(conn, connectResp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if connectResp[0] != socks5Version {
		return ProxyStatusWrongType
	}

	return ProxyStatusOK
}

// authenticate performs the RFC 1929 username/password subnegotiation.
func (c *Client) authenticate(conn net.Conn) ProxyStatus {
	req := []byte{socks5PasswordVersion, byte(len(c.auth.User))}
	req = append(req, c.auth.User...)
	req = append(req, byte(len(c.auth.Password)))
	req = append(req, c.auth.Password...)
	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		if isTimeout(err) {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}
	if resp[1] != 0x00 {
		return ProxyStatusAuthFailed
	}
	return ProxyStatusOK
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// HTTPClient creates an HTTP client for document fetches.
//
// Design decisions:
// - We enable cookies via a cookie jar so that redirects keep their session
// - Redirect limit is 10 to prevent redirect loops while allowing normal redirects
// - With a proxy, every connection is dialed through it, including DNS resolution
func (c *Client) HTTPClient() *http.Client {
	base, ok := http.DefaultTransport.(*http.Transport)
	var transport *http.Transport
	if ok {
		transport = base.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.DialContext
	}

	var rt http.RoundTripper = transport
	if c.cookie != "" || len(c.headers) > 0 {
		rt = &headerInjectingTransport{
			base:    transport,
			cookie:  c.cookie,
			headers: c.headers,
		}
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: rt,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// DialContext establishes a TCP connection, through the proxy if one is
// configured.
//
// The SOCKS5 dialer from x/net/proxy supports contexts directly; other
// dialers are raced against ctx, and a connection that completes after
// cancellation is closed.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if c.dialer == nil {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	}
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := c.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		go func() {
			if result := <-resultCh; result.conn != nil {
				result.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// ProxyAddress returns the configured proxy address, or "" for direct
// connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers and cookies into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
