// Package session runs one controller-requested action to completion.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fgharness/internal/action"
	"fgharness/internal/exerciser"
	"fgharness/internal/netprov"
	"fgharness/internal/uptime"
)

const (
	SleepWhileTop     = 2 * time.Second
	LongSleepWhileTop = 60 * time.Second
	OverlayHold       = 2 * time.Second

	NotificationID        = 1
	NotificationChannelID = "StatsdCtsChannel"
	ChannelGroupID        = "StatsdCtsGroup"
)

var ErrNetworkUnavailable = errors.New("network unavailable")

// crashDivisor is a variable so the division in crash happens at run time.
var crashDivisor int64

type Provisioner interface {
	RequestNetwork(ctx context.Context, req netprov.Request, cb netprov.Callback) error
	UnregisterNetworkCallback(cb netprov.Callback)
}

type Exerciser interface {
	Exercise(ctx context.Context, n netprov.Network, elapsed time.Duration) (exerciser.Report, error)
}

// Recorder is told how each session ended.
type Recorder interface {
	ObserveSession(action string, err error)
	ObserveIterations(n int)
}

type Config struct {
	Transport      netprov.Transport
	NetworkTimeout time.Duration

	SleepWhileTop     time.Duration
	LongSleepWhileTop time.Duration
	OverlayHold       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Transport:         netprov.TransportCellular,
		SleepWhileTop:     SleepWhileTop,
		LongSleepWhileTop: LongSleepWhileTop,
		OverlayHold:       OverlayHold,
	}
}

type Deps struct {
	Surface     Surface
	Provisioner Provisioner
	Exerciser   Exerciser
	Clock       uptime.Clock
	Recorder    Recorder
}

// Session performs a single action and then finishes. Done is closed exactly
// once, whatever the outcome.
type Session struct {
	ID string

	cfg  Config
	deps Deps
	log  *zap.Logger

	action     action.Action
	done       chan struct{}
	finishOnce sync.Once

	mu     sync.Mutex
	err    error
	report *exerciser.Report
}

func New(cfg Config, deps Deps, log *zap.Logger) *Session {
	id := uuid.New().String()
	if deps.Clock == nil {
		deps.Clock = uptime.BootClock{}
	}
	return &Session{
		ID:   id,
		cfg:  cfg,
		deps: deps,
		log:  log.Named("session").With(zap.String("session", id)),
		done: make(chan struct{}),
	}
}

func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the failure that ended the session, if any. It is only
// meaningful after Done is closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Report returns the traffic report of a generate-traffic session.
func (s *Session) Report() *exerciser.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start parses a controller action code and runs it. Unknown codes are
// logged and finish the session.
func (s *Session) Start(ctx context.Context, code string) {
	a, err := action.Parse(code)
	if err != nil {
		s.log.Error("invalid action", zap.String("action", code), zap.Error(err))
		s.finish(err)
		return
	}
	s.Run(ctx, a)
}

// Run performs a. Some actions finish asynchronously; use Done or Wait.
func (s *Session) Run(ctx context.Context, a action.Action) {
	s.action = a
	s.log.Info("starting action", zap.Stringer("action", a))

	switch a {
	case action.EndImmediately:
		s.finish(nil)
	case action.SleepWhileTop:
		s.sleepWhileTop(ctx, s.cfg.SleepWhileTop)
	case action.LongSleepWhileTop:
		s.sleepWhileTop(ctx, s.cfg.LongSleepWhileTop)
	case action.ShowApplicationOverlay:
		s.showApplicationOverlay(ctx)
	case action.ShowNotification:
		s.showNotification(ctx)
	case action.Crash:
		s.crash()
	case action.CreateChannelGroup:
		s.createChannelGroup(ctx)
	case action.GenerateMobileTraffic:
		s.generateNetworkTraffic(ctx, s.cfg.Transport)
	default:
		err := fmt.Errorf("%w: %d", action.ErrUnknownAction, int(a))
		s.log.Error("invalid action", zap.Error(err))
		s.finish(err)
	}
}

func (s *Session) finish(err error) {
	s.finishOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		if s.deps.Recorder != nil {
			s.deps.Recorder.ObserveSession(s.action.String(), err)
		}
		s.log.Info("session finished", zap.Stringer("action", s.action), zap.Error(err))
		close(s.done)
	})
}

// sleepWhileTop holds the session open for d without blocking the caller.
func (s *Session) sleepWhileTop(ctx context.Context, d time.Duration) {
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			s.finish(nil)
		case <-ctx.Done():
			s.finish(ctx.Err())
		}
	}()
}

func (s *Session) showApplicationOverlay(ctx context.Context) {
	spec := OverlaySpec{
		Title:          "fgharness",
		WidthFraction:  0.25,
		HeightFraction: 0.25,
		Gravity:        "center|left",
		Color:          "#00FF00",
		KeepScreenOn:   true,
	}
	if err := s.deps.Surface.ShowOverlay(ctx, spec); err != nil {
		s.log.Error("show overlay", zap.Error(err))
		s.finish(err)
		return
	}

	// The overlay outlives the session; the hold only delays finishing.
	t := time.NewTimer(s.cfg.OverlayHold)
	defer t.Stop()
	select {
	case <-t.C:
		s.finish(nil)
	case <-ctx.Done():
		s.finish(ctx.Err())
	}
}

func (s *Session) showNotification(ctx context.Context) {
	err := func() error {
		ch := Channel{
			ID:          NotificationChannelID,
			Name:        "Statsd Cts",
			Description: "Statsd Cts Channel",
			Importance:  ImportanceDefault,
		}
		if err := s.deps.Surface.CreateNotificationChannel(ctx, ch); err != nil {
			return fmt.Errorf("create channel: %w", err)
		}
		n := Notification{
			ID:        NotificationID,
			ChannelID: NotificationChannelID,
			SmallIcon: "stat_notify_chat",
			Title:     "StatsdCts",
			Text:      "StatsdCts",
		}
		if err := s.deps.Surface.Notify(ctx, n); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		if err := s.deps.Surface.CancelNotification(ctx, NotificationID); err != nil {
			return fmt.Errorf("cancel notification: %w", err)
		}
		return nil
	}()
	if err != nil {
		s.log.Error("show notification", zap.Error(err))
	}
	s.finish(err)
}

func (s *Session) createChannelGroup(ctx context.Context) {
	g := ChannelGroup{
		ID:          ChannelGroupID,
		Name:        "Statsd Cts Group",
		Description: "StatsdCtsGroup Description",
	}
	err := s.deps.Surface.CreateNotificationChannelGroup(ctx, g)
	if err != nil {
		s.log.Error("create channel group", zap.Error(err))
	}
	s.finish(err)
}

// crash takes the process down with an integer divide by zero.
func (s *Session) crash() {
	s.log.Error("about to crash with 1/0", zap.Int64("result", int64(1)/crashDivisor))
}
