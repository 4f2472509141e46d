package overtls

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/txthinking/socks5"
	"golang.org/x/sync/semaphore"

	"overtls-manager/internal/debuglog"
)

const (
	tcpTimeoutSeconds = 0
	udpTimeoutSeconds = 60
	dialTimeout       = 10 * time.Second

	headerTargetAddress = "Target-Address"
	headerClientID      = "Client-Id"
)

var (
	errUDPNotSupported = errors.New("udp associate is not supported by this client")
	errClientClosing   = errors.New("client is shutting down")
)

// Client runs the local side of an OverTLS tunnel: a SOCKS5 listener on the
// configured listen address whose CONNECT requests are carried to the server
// over WebSocket (TLS unless disabled).
type Client struct {
	// Lookup overrides server name resolution; nil uses the system resolver.
	Lookup LookupFunc
}

// NewClient creates a client with the system resolver.
func NewClient() *Client {
	return &Client{}
}

// Run serves until ctx is cancelled or the listener fails. A cancelled
// context is a clean shutdown and returns nil.
func (c *Client) Run(ctx context.Context, cfg Config) error {
	cfg = cfg.Clone()
	if err := CheckCorrectness(&cfg); err != nil {
		return err
	}
	client := cfg.Client

	tlsConfig, err := buildTLSConfig(client)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	listenAddr := net.JoinHostPort(client.ListenHost, strconv.Itoa(int(client.ListenPort)))
	srv, err := socks5.NewClassicServer(listenAddr, client.ListenHost, client.ListenUser, client.ListenPassword, tcpTimeoutSeconds, udpTimeoutSeconds)
	if err != nil {
		return fmt.Errorf("Run: cannot create SOCKS5 listener on %s: %w", listenAddr, err)
	}

	h := &relayHandler{
		ctx:      ctx,
		cfg:      cfg,
		tls:      tlsConfig,
		resolver: NewResolver(client.CacheDNS, c.Lookup),
		pool:     semaphore.NewWeighted(int64(client.PoolMaxSize)),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(h)
	}()
	debuglog.InfoLog("Run: listening on %s, server %s:%d%s", listenAddr, client.ServerHost, client.ServerPort, cfg.TunnelPath.First())

	select {
	case <-ctx.Done():
		debuglog.DebugLog("Run: shutdown requested")
		debuglog.RunAndLog("Run: SOCKS5 shutdown", srv.Shutdown)
		h.closeAndWait()
		return nil
	case err := <-errCh:
		if err == nil {
			return nil
		}
		return fmt.Errorf("Run: SOCKS5 listener stopped: %w", err)
	}
}

type relayHandler struct {
	ctx      context.Context
	cfg      Config
	tls      *tls.Config
	resolver *Resolver
	pool     *semaphore.Weighted

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// begin registers a connection; it fails once closeAndWait has started.
func (h *relayHandler) begin() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.wg.Add(1)
	return true
}

// closeAndWait refuses new connections and waits for the active ones.
func (h *relayHandler) closeAndWait() {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *relayHandler) TCPHandle(s *socks5.Server, conn *net.TCPConn, r *socks5.Request) error {
	if r.Cmd != socks5.CmdConnect {
		writeReply(conn, socks5.RepCommandNotSupported)
		return fmt.Errorf("TCPHandle: unsupported command %d", r.Cmd)
	}
	if !h.begin() {
		return errClientClosing
	}
	defer h.wg.Done()
	if err := h.pool.Acquire(h.ctx, 1); err != nil {
		return err
	}
	defer h.pool.Release(1)

	target := r.Address()
	upstream, err := h.dial(target)
	if err != nil {
		debuglog.WarnLog("TCPHandle: tunnel to %s failed: %v", target, err)
		writeReply(conn, socks5.RepHostUnreachable)
		return err
	}
	defer debuglog.CloseWithLog("TCPHandle: close upstream", upstream)

	if err := writeReply(conn, socks5.RepSuccess); err != nil {
		return err
	}
	debuglog.TraceLog("TCPHandle: relaying %s", target)
	relay(h.ctx, conn, upstream)
	return nil
}

func (h *relayHandler) UDPHandle(s *socks5.Server, addr *net.UDPAddr, d *socks5.Datagram) error {
	debuglog.TraceLog("UDPHandle: dropping datagram from %s", addr)
	return errUDPNotSupported
}

// dial opens one websocket to the server carrying the stream for target.
func (h *relayHandler) dial(target string) (net.Conn, error) {
	client := h.cfg.Client
	ctx, cancel := context.WithTimeout(h.ctx, dialTimeout)
	defer cancel()

	serverIP, err := h.resolver.ResolveIP(ctx, client.ServerHost)
	if err != nil {
		return nil, err
	}
	serverAddr := net.JoinHostPort(serverIP.String(), strconv.Itoa(int(client.ServerPort)))

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, serverAddr)
		},
		TLSClientConfig: h.tls,
	}
	headers := http.Header{}
	headers.Set(headerTargetAddress, base64.RawURLEncoding.EncodeToString([]byte(target)))
	if client.ClientID != "" {
		headers.Set(headerClientID, client.ClientID)
	}

	ws, _, err := websocket.Dial(ctx, tunnelURL(h.cfg), &websocket.DialOptions{
		HTTPClient: &http.Client{Transport: transport},
		HTTPHeader: headers,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", serverAddr, err)
	}
	return websocket.NetConn(h.ctx, ws, websocket.MessageBinary), nil
}

// tunnelURL builds ws(s)://domain:port/path. The TCP connection itself goes to
// the server host; the domain only serves as SNI and Host header.
func tunnelURL(cfg Config) string {
	client := cfg.Client
	scheme := "wss"
	if client.DisableTLS {
		scheme = "ws"
	}
	host := client.ServerDomain
	if host == "" {
		host = client.ServerHost
	}
	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, strconv.Itoa(int(client.ServerPort))),
		Path:   cfg.TunnelPath.First(),
	}
	return u.String()
}

func buildTLSConfig(client *ClientConfig) (*tls.Config, error) {
	if client.DisableTLS {
		return nil, nil
	}
	conf := &tls.Config{
		ServerName:         client.ServerDomain,
		InsecureSkipVerify: client.DangerousMode,
		MinVersion:         tls.VersionTLS12,
	}
	pem, err := client.CertificatePEM()
	if err != nil {
		return nil, err
	}
	if pem != nil {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no usable certificate in CA material")
		}
		conf.RootCAs = pool
	}
	return conf, nil
}

func writeReply(conn net.Conn, rep byte) error {
	reply := socks5.NewReply(rep, socks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00})
	_, err := reply.WriteTo(conn)
	return err
}

// relay copies both directions until one side finishes or ctx is cancelled.
func relay(ctx context.Context, a, b net.Conn) {
	done := make(chan struct{}, 2)
	pipe := func(dst, src net.Conn) {
		_, _ = io.Copy(dst, src)
		done <- struct{}{}
	}
	go pipe(a, b)
	go pipe(b, a)

	select {
	case <-done:
	case <-ctx.Done():
	}
	_ = a.Close()
	_ = b.Close()
	<-done
}
