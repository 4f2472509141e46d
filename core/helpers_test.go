package core

import (
	"context"
	"net"

	"overtls-manager/internal/overtls"
)

func exampleNode() overtls.Config {
	return overtls.Config{
		Remarks:    "A",
		TunnelPath: overtls.Single("/secret-tunnel-path/"),
		Client: &overtls.ClientConfig{
			ServerHost: "example.com",
			ServerPort: 443,
		},
	}
}

func fixedLookup(ip string) overtls.LookupFunc {
	return func(context.Context, string) ([]net.IP, error) {
		return []net.IP{net.ParseIP(ip)}, nil
	}
}

func failingLookup(context.Context, string) ([]net.IP, error) {
	return nil, &net.DNSError{Err: "no such host", Name: "example.com", IsNotFound: true}
}
