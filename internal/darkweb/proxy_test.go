package darkweb

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// TestNewProxy tests address validation.
func TestNewProxy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "valid localhost", address: "127.0.0.1:9050", wantErr: false},
		{name: "valid hostname", address: "tor-proxy:9050", wantErr: false},
		{name: "missing port", address: "127.0.0.1", wantErr: true},
		{name: "empty host", address: ":9050", wantErr: true},
		{name: "non-numeric port", address: "127.0.0.1:abc", wantErr: true},
		{name: "port zero", address: "127.0.0.1:0", wantErr: true},
		{name: "port too large", address: "127.0.0.1:70000", wantErr: true},
		{name: "empty", address: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewProxy(tt.address, 30*time.Second)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidProxyAddress) {
					t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewProxy(%q) error = %v", tt.address, err)
			}
		})
	}
}

// fakeSOCKS5 runs a minimal SOCKS5 responder for connection probing tests.
// It completes the no-auth negotiation and answers every CONNECT with
// "host unreachable", which is what Tor does for a bogus onion address.
func fakeSOCKS5(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()

				// Auth negotiation.
				buf := make([]byte, 2)
				if _, err := io.ReadFull(c, buf); err != nil {
					return
				}
				methods := make([]byte, int(buf[1]))
				if _, err := io.ReadFull(c, methods); err != nil {
					return
				}
				c.Write([]byte{0x05, 0x00})

				// CONNECT request header + domain + port.
				head := make([]byte, 5)
				if _, err := io.ReadFull(c, head); err != nil {
					return
				}
				rest := make([]byte, int(head[4])+2)
				if _, err := io.ReadFull(c, rest); err != nil {
					return
				}

				// Host unreachable, null bind address.
				c.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
			}(conn)
		}
	}()

	return ln.Addr().String()
}

// TestCheckConnection tests the SOCKS5 readiness probe.
func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("working SOCKS5 proxy is OK", func(t *testing.T) {
		t.Parallel()

		addr := fakeSOCKS5(t)
		p, err := NewProxy(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("NewProxy() error = %v", err)
		}

		status := p.CheckConnection(context.Background())
		if status != ProxyStatusOK {
			t.Errorf("expected OK, got %v", status)
		}
		if status.Err() != nil {
			t.Errorf("OK status should carry no error, got %v", status.Err())
		}
	})

	t.Run("nothing listening is cannot-connect", func(t *testing.T) {
		t.Parallel()

		// Reserve a port, then close it so the dial is refused.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		addr := ln.Addr().String()
		ln.Close()

		p, err := NewProxy(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("NewProxy() error = %v", err)
		}

		status := p.CheckConnection(context.Background())
		if status != ProxyStatusCannotConnect {
			t.Errorf("expected cannot-connect, got %v", status)
		}
		if !errors.Is(status.Err(), ErrProxyCannotConnect) {
			t.Errorf("expected ErrProxyCannotConnect, got %v", status.Err())
		}
	})

	t.Run("non-SOCKS responder is wrong type", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		t.Cleanup(func() { ln.Close() })

		go func() {
			for {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				// Answer like an HTTP server would.
				conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
				conn.Close()
			}
		}()

		p, err := NewProxy(ln.Addr().String(), 30*time.Second)
		if err != nil {
			t.Fatalf("NewProxy() error = %v", err)
		}

		status := p.CheckConnection(context.Background())
		if status != ProxyStatusWrongType {
			t.Errorf("expected wrong-type, got %v", status)
		}
		if !errors.Is(status.Err(), ErrProxyNotTor) {
			t.Errorf("expected ErrProxyNotTor, got %v", status.Err())
		}
	})
}

// TestHTTPClient tests client construction.
func TestHTTPClient(t *testing.T) {
	t.Parallel()

	p, err := NewProxy("127.0.0.1:9050", 45*time.Second)
	if err != nil {
		t.Fatalf("NewProxy() error = %v", err)
	}

	client := p.HTTPClient()
	if client.Timeout != 45*time.Second {
		t.Errorf("expected configured timeout, got %v", client.Timeout)
	}
	if client.Transport == nil {
		t.Error("expected a Tor-routed transport")
	}
}

// TestIsOnionHost tests v3 onion address detection.
func TestIsOnionHost(t *testing.T) {
	t.Parallel()

	v3 := "vww6ybal4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyyd"

	tests := []struct {
		name string
		host string
		want bool
	}{
		{name: "v3 onion", host: v3 + ".onion", want: true},
		{name: "v3 onion with port", host: v3 + ".onion:80", want: true},
		{name: "uppercase folded", host: "VWW6YBAL4BD7SZMGNCYRUUCPGFKQAHZDDI37KTCEO3AH7NGMCOPNPYYD.ONION", want: true},
		{name: "clearnet host", host: "example.com", want: false},
		{name: "short onion label", host: "abcdef.onion", want: false},
		{name: "invalid base32 characters", host: "vww6ybal4bd7szmgncyruucpgfkqahzddi37ktceo3ah7ngmcopnpyy1.onion", want: false},
		{name: "empty", host: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsOnionHost(tt.host); got != tt.want {
				t.Errorf("IsOnionHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}
