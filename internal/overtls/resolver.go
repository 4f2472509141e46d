package overtls

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	dnsCacheTTL     = 5 * time.Minute
	dnsCacheCleanup = 10 * time.Minute
	lookupTimeout   = 5 * time.Second
)

// LookupFunc resolves a host name to IP addresses.
type LookupFunc func(ctx context.Context, host string) ([]net.IP, error)

func defaultLookup(ctx context.Context, host string) ([]net.IP, error) {
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// Resolver resolves the server host, optionally caching answers.
type Resolver struct {
	lookup LookupFunc
	cache  *cache.Cache
}

// NewResolver creates a resolver. With cacheDNS the answers are kept for
// five minutes. A nil lookup uses the system resolver.
func NewResolver(cacheDNS bool, lookup LookupFunc) *Resolver {
	if lookup == nil {
		lookup = defaultLookup
	}
	r := &Resolver{lookup: lookup}
	if cacheDNS {
		r.cache = cache.New(dnsCacheTTL, dnsCacheCleanup)
	}
	return r
}

// ResolveIP returns one IP for host, preferring IPv4. IP literals are
// returned without a lookup.
func (r *Resolver) ResolveIP(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	if r.cache != nil {
		if v, ok := r.cache.Get(host); ok {
			return v.(net.IP), nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	ips, err := r.lookup(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("resolve %s: no addresses", host)
	}
	ip := ips[0]
	for _, candidate := range ips {
		if candidate.To4() != nil {
			ip = candidate
			break
		}
	}
	if r.cache != nil {
		r.cache.SetDefault(host, ip)
	}
	return ip, nil
}

// ServerIPAddr resolves the server host of a client config with the system
// resolver.
func (c *ClientConfig) ServerIPAddr(ctx context.Context) (net.IP, error) {
	return NewResolver(false, nil).ResolveIP(ctx, c.ServerHost)
}
