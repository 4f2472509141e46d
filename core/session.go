package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/platform"
	"overtls-manager/internal/tun2proxy"
)

// TunnelEngine runs the protocol client until ctx is cancelled.
type TunnelEngine interface {
	Run(ctx context.Context, cfg overtls.Config) error
}

// InterceptEngine captures system traffic until ctx is cancelled.
type InterceptEngine interface {
	Run(ctx context.Context, args tun2proxy.Args) error
}

// InterceptFunc adapts a function to InterceptEngine.
type InterceptFunc func(ctx context.Context, args tun2proxy.Args) error

func (f InterceptFunc) Run(ctx context.Context, args tun2proxy.Args) error {
	return f(ctx, args)
}

// Session is the handle pair of one running node: the cancel func and the
// completion signal of its worker goroutine.
type Session struct {
	Title     string
	StartedAt time.Time
	// Intercepting reports whether the session also captures system traffic.
	Intercepting bool

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed when the worker goroutine has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the session result. Only meaningful after Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Finished reports whether the worker goroutine has returned.
func (s *Session) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Join waits up to timeout for the worker goroutine. finished is false when
// the deadline passed first; the goroutine keeps running in that case.
func (s *Session) Join(timeout time.Duration) (finished bool, err error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case <-s.done:
		return true, s.err
	case <-deadline.C:
		return false, nil
	}
}

// SessionRunner starts and stops the single tunnel session. Start and Stop
// may be called from any goroutine.
type SessionRunner struct {
	Tunnel    TunnelEngine
	Intercept InterceptEngine
	// IsElevated reports whether the process may capture traffic.
	IsElevated func() bool
	// Lookup resolves the server host when deriving interception args.
	Lookup overtls.LookupFunc
	// StopTimeout bounds the join in Stop.
	StopTimeout time.Duration
	// OnExit, if set, is called from the worker goroutine when a session ends.
	OnExit func(s *Session)

	mu      sync.Mutex
	session *Session
	// starting is set while Start prepares a node outside the lock;
	// startCancelled records a Stop that arrived meanwhile.
	starting       bool
	startCancelled bool
}

// NewSessionRunner wires the real tunnel client and interception engine.
func NewSessionRunner() *SessionRunner {
	return &SessionRunner{
		Tunnel:      overtls.NewClient(),
		Intercept:   InterceptFunc(tun2proxy.Run),
		IsElevated:  platform.IsElevated,
		StopTimeout: constants.StopTimeout,
	}
}

// Start validates node with settings merged in and launches the session.
// On any error the runner state is unchanged. The slot is reserved while the
// server name resolves so Running and Stop never wait on the lookup.
func (r *SessionRunner) Start(node overtls.Config, settings SystemSettings) error {
	r.mu.Lock()
	if r.starting {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	if r.session != nil {
		if !r.session.Finished() {
			r.mu.Unlock()
			return ErrAlreadyRunning
		}
		r.session = nil
	}
	r.starting = true
	r.startCancelled = false
	r.mu.Unlock()

	cfg, args, err := r.prepare(node, settings)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starting = false
	if err != nil {
		return err
	}
	if r.startCancelled {
		debuglog.InfoLog("Start: node '%s' was stopped before it started", cfg.Title())
		return ErrStartCancelled
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		Title:        cfg.Title(),
		StartedAt:    time.Now(),
		Intercepting: args != nil,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
	r.session = s
	go r.work(ctx, s, cfg, args)
	debuglog.InfoLog("Start: node '%s' is starting (interception: %v)", s.Title, s.Intercepting)
	return nil
}

// prepare merges settings into a copy of node, checks it and derives the
// interception args. It runs without the runner lock.
func (r *SessionRunner) prepare(node overtls.Config, settings SystemSettings) (overtls.Config, *tun2proxy.Args, error) {
	intercept := settings.InterceptionEnabled()
	if intercept && r.IsElevated != nil && !r.IsElevated() {
		return overtls.Config{}, nil, ErrElevationRequired
	}

	cfg := node.Clone()
	MergeSystemSettings(settings, &cfg)
	if err := overtls.CheckCorrectness(&cfg); err != nil {
		return overtls.Config{}, nil, fmt.Errorf("Start: %w", err)
	}

	var args *tun2proxy.Args
	if intercept {
		args = CookTun2ProxyArgs(context.Background(), settings, cfg, r.Lookup)
	}
	return cfg, args, nil
}

// work races the tunnel against the optional interception. Whichever returns
// first cancels the other; the first error is the session result.
func (r *SessionRunner) work(ctx context.Context, s *Session, cfg overtls.Config, args *tun2proxy.Args) {
	defer s.cancel()

	results := make(chan error, 2)
	tasks := 1
	go func() {
		err := r.Tunnel.Run(ctx, cfg)
		if err != nil {
			debuglog.ErrorLog("work: tunnel task error: %v", err)
		}
		results <- err
	}()
	if args != nil && r.Intercept != nil {
		tasks++
		go func() {
			err := r.Intercept.Run(ctx, *args)
			if err != nil {
				debuglog.ErrorLog("work: interception task error: %v", err)
			}
			results <- err
		}()
	}

	var errs []error
	for i := 0; i < tasks; i++ {
		err := <-results
		if i == 0 {
			s.cancel()
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		s.err = errs[0]
	}
	close(s.done)
	debuglog.InfoLog("work: node '%s' stopped", s.Title)
	if r.OnExit != nil {
		r.OnExit(s)
	}
}

// Stop cancels the session and waits up to StopTimeout for it. The handles
// are cleared either way; on ErrStopTimeout the goroutine is abandoned and
// may still hold resources until its tasks notice the cancellation. A Stop
// during Start makes that Start return ErrStartCancelled.
func (r *SessionRunner) Stop() error {
	r.mu.Lock()
	s := r.session
	r.session = nil
	if s == nil && r.starting {
		r.startCancelled = true
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	s.cancel()

	timeout := r.StopTimeout
	if timeout <= 0 {
		timeout = constants.StopTimeout
	}
	finished, err := s.Join(timeout)
	if !finished {
		debuglog.WarnLog("Stop: node '%s' did not finish in %v, abandoning it", s.Title, timeout)
		return ErrStopTimeout
	}
	if err != nil {
		debuglog.DebugLog("Stop: node '%s' ended with: %v", s.Title, err)
	}
	return nil
}

// Running reports whether a session is active.
func (r *SessionRunner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil && !r.session.Finished()
}

// Current returns the stored session, finished or not, or nil.
func (r *SessionRunner) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}
