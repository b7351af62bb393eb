// Package network builds the outbound HTTP clients used to fetch feeds,
// pages and icons.
package network

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// ProxyProvider supplies the proxy URL for outbound requests. An empty
// string means a direct connection.
type ProxyProvider interface {
	GetProxyURL(ctx context.Context) string
}

// StaticProxy is a ProxyProvider with a fixed URL, usually from PROXY_URL.
type StaticProxy string

func (p StaticProxy) GetProxyURL(context.Context) string {
	return strings.TrimSpace(string(p))
}

type ClientFactory struct {
	proxyProvider  ProxyProvider
	userAgent      string
	testHTTPClient *http.Client
}

func NewClientFactory(proxyProvider ProxyProvider, userAgent string) *ClientFactory {
	if proxyProvider == nil {
		proxyProvider = StaticProxy("")
	}
	return &ClientFactory{proxyProvider: proxyProvider, userAgent: userAgent}
}

// NewClientFactoryForTest makes every NewHTTPClient call return client.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{
		proxyProvider:  StaticProxy(""),
		testHTTPClient: client,
	}
}

// NewHTTPClient returns a client honoring the proxy and user agent.
func (f *ClientFactory) NewHTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: f.NewHTTPTransport(ctx), userAgent: f.userAgent},
	}
}

// NewHTTPTransport is useful when the caller customizes the client, e.g.
// CheckRedirect.
func (f *ClientFactory) NewHTTPTransport(ctx context.Context) *http.Transport {
	proxyURL := f.proxyProvider.GetProxyURL(ctx)
	if proxyURL != "" {
		return newTransportWithProxy(proxyURL)
	}
	return http.DefaultTransport.(*http.Transport).Clone()
}

func (f *ClientFactory) GetProxyURL(ctx context.Context) string {
	return f.proxyProvider.GetProxyURL(ctx)
}

// userAgentTransport sets User-Agent unless the request already has one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// newTransportWithProxy uses golang.org/x/net/proxy for SOCKS5 and
// http.ProxyURL for HTTP(S) proxies.
func newTransportWithProxy(proxyURL string) *http.Transport {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return &http.Transport{}
	}

	if strings.HasPrefix(parsed.Scheme, "socks") {
		var auth *proxy.Auth
		if parsed.User != nil {
			auth = &proxy.Auth{User: parsed.User.Username()}
			if password, ok := parsed.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return &http.Transport{}
		}
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			return &http.Transport{DialContext: contextDialer.DialContext}
		}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}
	}

	return &http.Transport{Proxy: http.ProxyURL(parsed)}
}
