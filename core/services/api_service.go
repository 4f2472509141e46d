package services

import (
	"context"
	"sync"
	"time"

	"overtls-manager/api"
	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
)

// PublicIPReport is the outcome of one public address check.
type PublicIPReport struct {
	Direct    string
	DirectErr error

	// Tunnel is only checked while a node is running.
	TunnelChecked bool
	Tunnel        string
	TunnelErr     error

	CheckedAt time.Time
}

// APIService runs the public IP probes and remembers the last result.
type APIService struct {
	STUNServer string
	EchoURL    string

	mu   sync.Mutex
	last *PublicIPReport
}

// NewAPIService creates a service with the default probe endpoints.
func NewAPIService() *APIService {
	return &APIService{
		STUNServer: constants.DefaultSTUNServer,
		EchoURL:    api.DefaultEchoURL,
	}
}

// CheckPublicIP probes the direct address over STUN and, when tunnel is
// set, the tunnelled address through it. Blocks; call off the GUI goroutine.
func (s *APIService) CheckPublicIP(ctx context.Context, tunnel *api.ProxyEndpoint) PublicIPReport {
	report := PublicIPReport{CheckedAt: time.Now()}

	report.Direct, report.DirectErr = api.STUNPublicIP(ctx, s.STUNServer)
	if report.DirectErr != nil {
		debuglog.WarnLog("CheckPublicIP: STUN check failed: %v", report.DirectErr)
	}

	if tunnel != nil {
		report.TunnelChecked = true
		client, err := api.SOCKS5HTTPClient(*tunnel)
		if err == nil {
			report.Tunnel, err = api.EchoPublicIP(ctx, client, s.EchoURL)
		}
		report.TunnelErr = err
		if err != nil {
			debuglog.WarnLog("CheckPublicIP: tunnel check failed: %v", err)
		}
	}

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
	return report
}

// LastReport returns the most recent report, if any.
func (s *APIService) LastReport() (PublicIPReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return PublicIPReport{}, false
	}
	return *s.last, true
}
