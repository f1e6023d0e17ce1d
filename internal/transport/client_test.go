package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("direct client", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(Options{Timeout: 5 * time.Second})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s", client.Timeout)
		}
	})

	t.Run("valid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPClient(Options{ProxyAddress: "127.0.0.1:9050"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		_, err := NewHTTPClient(Options{ProxyAddress: "127.0.0.1"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("redirect limit", func(t *testing.T) {
		t.Parallel()

		client, err := NewHTTPClient(Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		via := make([]*http.Request, maxRedirects)
		if err := client.CheckRedirect(nil, via); !errors.Is(err, http.ErrUseLastResponse) {
			t.Errorf("expected ErrUseLastResponse, got %v", err)
		}
		if err := client.CheckRedirect(nil, via[:1]); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})
}

func TestUserAgentHeader(t *testing.T) {
	t.Parallel()

	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewHTTPClient(Options{UserAgent: "searchcrawl-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if ua := <-got; ua != "searchcrawl-test" {
		t.Errorf("User-Agent = %q, want %q", ua, "searchcrawl-test")
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("original request should not be modified")
	}
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid hostname with port", "proxy.example.com:1080", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:65536", false},
		{"non-numeric port", "127.0.0.1:abc", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"bracketed IPv6 loopback", "[::1]:9050", true},
		{"bracketed IPv6", "[2001:db8::1]:1080", true},
		{"unbracketed IPv6", "::1:9050", false},
		{"IPv6 without port", "[::1]", false},
		{"signed port", "127.0.0.1:+9050", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

// serveOnce accepts one connection, reads the greeting and writes reply.
func serveOnce(t *testing.T, reply []byte) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		_, _ = conn.Read(buf)
		_, _ = conn.Write(reply)
	}()

	return listener.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("accepts SOCKS5 without auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{0x05, 0x00})
		if err := CheckProxy(context.Background(), addr); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte{0x05, 0xFF})
		if err := CheckProxy(context.Background(), addr); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("rejects HTTP server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, []byte("HTTP/1.1 200 OK\r\n\r\n"))
		if err := CheckProxy(context.Background(), addr); !errors.Is(err, ErrProxyNotSOCKS5) {
			t.Errorf("expected ErrProxyNotSOCKS5, got %v", err)
		}
	})

	t.Run("nothing listening", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		addr := listener.Addr().String()
		listener.Close()

		if err := CheckProxy(context.Background(), addr); !errors.Is(err, ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", err)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		if err := CheckProxy(context.Background(), "nope"); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}
