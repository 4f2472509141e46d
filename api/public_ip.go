// Package api holds the small network probes behind Help → Check public IP:
// a STUN binding request for the direct address and an HTTP echo request
// through the local SOCKS5 listener for the tunnelled address.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pion/stun"
	"github.com/txthinking/socks5"
)

const (
	// DefaultEchoURL answers with the caller's address as plain text.
	DefaultEchoURL = "https://api.ipify.org"

	probeTimeout    = 5 * time.Second
	maxEchoBodySize = 256
)

// STUNPublicIP asks serverAddr (host:port, UDP) for our mapped address.
func STUNPublicIP(ctx context.Context, serverAddr string) (string, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", serverAddr)
	if err != nil {
		return "", fmt.Errorf("failed to dial STUN server: %w", err)
	}
	defer conn.Close()

	c, err := stun.NewClient(conn)
	if err != nil {
		return "", fmt.Errorf("failed to create STUN client: %w", err)
	}
	defer c.Close()

	message := stun.MustBuild(stun.TransactionID, stun.BindingRequest)

	var (
		xorAddr   stun.XORMappedAddress
		errResult error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := c.Do(message, func(res stun.Event) {
			if res.Error != nil {
				errResult = res.Error
				return
			}
			if err := xorAddr.GetFrom(res.Message); err != nil {
				errResult = err
			}
		})
		if err != nil {
			errResult = err
		}
	}()

	timer := time.NewTimer(probeTimeout)
	defer timer.Stop()
	select {
	case <-done:
		if errResult != nil {
			return "", fmt.Errorf("STUN request failed: %w", errResult)
		}
		return xorAddr.IP.String(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
		return "", errors.New("STUN request timed out")
	}
}

// ProxyEndpoint is a SOCKS5 listener with optional credentials.
type ProxyEndpoint struct {
	Addr     string
	User     string
	Password string
}

// SOCKS5HTTPClient returns an HTTP client whose connections go through p.
func SOCKS5HTTPClient(p ProxyEndpoint) (*http.Client, error) {
	client, err := socks5.NewClient(p.Addr, p.User, p.Password, int(probeTimeout.Seconds()), 0)
	if err != nil {
		return nil, fmt.Errorf("SOCKS5HTTPClient: %w", err)
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return client.Dial(network, addr)
		},
		DisableKeepAlives: true,
	}
	return &http.Client{Transport: transport, Timeout: 2 * probeTimeout}, nil
}

// EchoPublicIP fetches echoURL with client and returns the address it reports.
func EchoPublicIP(ctx context.Context, client *http.Client, echoURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, echoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("echo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("echo request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEchoBodySize))
	if err != nil {
		return "", fmt.Errorf("echo request failed: %w", err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("echo service returned %q", ip)
	}
	return ip, nil
}
