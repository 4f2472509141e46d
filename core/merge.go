package core

import (
	"context"
	"net"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/tun2proxy"
)

// MergeSystemSettings copies the listen address, credentials, pool size and
// DNS caching from settings into the node's client record. Nodes without a
// client record are left unchanged. Applying it twice gives the same node.
func MergeSystemSettings(settings SystemSettings, node *overtls.Config) {
	if node == nil || node.Client == nil {
		return
	}
	c := node.Client
	c.ListenHost = settings.ListenHost
	c.ListenPort = settings.ListenPort
	c.ListenUser = settings.ListenUser
	c.ListenPassword = settings.ListenPassword
	c.PoolMaxSize = settings.PoolMaxSize
	c.CacheDNS = settings.CacheDNS
}

// CookTun2ProxyArgs derives interception args for running node. It returns
// nil when interception is disabled, when the listen host is not an IP, or
// when the server address cannot be resolved. The server IP is always in
// the bypass list so tunnel traffic itself is not captured.
func CookTun2ProxyArgs(ctx context.Context, settings SystemSettings, node overtls.Config, lookup overtls.LookupFunc) *tun2proxy.Args {
	if !settings.InterceptionEnabled() || node.Client == nil {
		return nil
	}
	serverIP, err := overtls.NewResolver(false, lookup).ResolveIP(ctx, node.Client.ServerHost)
	if err != nil {
		debuglog.DebugLog("CookTun2ProxyArgs: server address unresolved, interception skipped: %v", err)
		return nil
	}
	listenIP := net.ParseIP(settings.ListenHost)
	if listenIP == nil {
		debuglog.DebugLog("CookTun2ProxyArgs: listen host %q is not an IP, interception skipped", settings.ListenHost)
		return nil
	}

	args := settings.Tun2Proxy.Clone()
	args.Normalize()
	args.AddBypass(serverIP.String())
	args.Proxy = tun2proxy.SOCKS5URL(listenIP.String(), settings.ListenPort, settings.ListenUser, settings.ListenPassword)
	return &args
}
