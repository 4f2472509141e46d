package core

import (
	"context"
	"reflect"
	"slices"
	"testing"

	"overtls-manager/internal/tun2proxy"
)

// TestMergeSystemSettings tests that settings land in the client record
func TestMergeSystemSettings(t *testing.T) {
	s := DefaultSystemSettings()
	s.ListenHost = "127.0.0.2"
	s.ListenPort = 1081
	s.ListenUser = "user"
	s.ListenPassword = "pass"
	s.PoolMaxSize = 7
	s.CacheDNS = true

	node := exampleNode()
	MergeSystemSettings(s, &node)
	c := node.Client
	if c.ListenHost != "127.0.0.2" || c.ListenPort != 1081 || c.ListenUser != "user" ||
		c.ListenPassword != "pass" || c.PoolMaxSize != 7 || !c.CacheDNS {
		t.Errorf("Settings not merged: %+v", *c)
	}

	t.Run("Idempotent", func(t *testing.T) {
		again := node.Clone()
		MergeSystemSettings(s, &again)
		if !reflect.DeepEqual(node, again) {
			t.Errorf("Second merge changed the node:\n%+v\n%+v", *node.Client, *again.Client)
		}
	})

	t.Run("No client record", func(t *testing.T) {
		bare := exampleNode()
		bare.Client = nil
		MergeSystemSettings(s, &bare)
		if bare.Client != nil {
			t.Errorf("Merge created a client record")
		}
		MergeSystemSettings(s, nil)
	})
}

// TestCookTun2ProxyArgs tests deriving interception args
func TestCookTun2ProxyArgs(t *testing.T) {
	node := exampleNode()

	t.Run("Enabled", func(t *testing.T) {
		s := DefaultSystemSettings()
		args := CookTun2ProxyArgs(context.Background(), s, node, fixedLookup("203.0.113.10"))
		if args == nil {
			t.Fatal("Expected args")
		}
		if !slices.Contains(args.Bypass, "203.0.113.10") {
			t.Errorf("Server IP missing from bypass: %v", args.Bypass)
		}
		if args.Proxy != "socks5://127.0.0.1:5080" {
			t.Errorf("Unexpected proxy %q", args.Proxy)
		}
		if args.MaxSessions != s.Tun2Proxy.MaxSessions {
			t.Errorf("Expected %d sessions, got %d", s.Tun2Proxy.MaxSessions, args.MaxSessions)
		}
	})

	t.Run("Credentials", func(t *testing.T) {
		s := DefaultSystemSettings()
		s.ListenUser = "u"
		s.ListenPassword = "p"
		args := CookTun2ProxyArgs(context.Background(), s, node, fixedLookup("203.0.113.10"))
		if args == nil || args.Proxy != "socks5://u:p@127.0.0.1:5080" {
			t.Errorf("Unexpected args %+v", args)
		}
	})

	t.Run("Settings bypass kept", func(t *testing.T) {
		s := DefaultSystemSettings()
		s.Tun2Proxy.Bypass = []string{"10.0.0.0/8"}
		args := CookTun2ProxyArgs(context.Background(), s, node, fixedLookup("203.0.113.10"))
		if args == nil || !slices.Contains(args.Bypass, "10.0.0.0/8") {
			t.Fatalf("Configured bypass lost: %+v", args)
		}
		if len(s.Tun2Proxy.Bypass) != 1 {
			t.Errorf("Settings bypass list was modified: %v", s.Tun2Proxy.Bypass)
		}
	})

	tests := []struct {
		name   string
		mutate func(*SystemSettings)
	}{
		{"Disabled", func(s *SystemSettings) { s.SetInterceptionEnabled(false) }},
		{"Absent flag", func(s *SystemSettings) { s.Tun2ProxyEnable = nil }},
		{"Listen host not an IP", func(s *SystemSettings) { s.ListenHost = "localhost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSystemSettings()
			tt.mutate(&s)
			if args := CookTun2ProxyArgs(context.Background(), s, node, fixedLookup("203.0.113.10")); args != nil {
				t.Errorf("Expected nil args, got %+v", args)
			}
		})
	}

	t.Run("Unresolvable server", func(t *testing.T) {
		if args := CookTun2ProxyArgs(context.Background(), DefaultSystemSettings(), node, failingLookup); args != nil {
			t.Errorf("Expected nil args, got %+v", args)
		}
	})

	t.Run("DNS strategy carried", func(t *testing.T) {
		s := DefaultSystemSettings()
		s.Tun2Proxy.DNS = tun2proxy.DNSDirect
		args := CookTun2ProxyArgs(context.Background(), s, node, fixedLookup("203.0.113.10"))
		if args == nil || args.DNS != tun2proxy.DNSDirect {
			t.Errorf("Unexpected args %+v", args)
		}
	})
}
