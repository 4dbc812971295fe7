package session

import (
	"context"

	"go.uber.org/zap"
)

// OverlaySpec describes an application overlay window.
type OverlaySpec struct {
	Title string
	// Fractions of the display size.
	WidthFraction  float64
	HeightFraction float64
	Gravity        string
	Color          string
	Focusable      bool
	Touchable      bool
	KeepScreenOn   bool
}

type Importance int

const (
	ImportanceNone Importance = iota
	ImportanceMin
	ImportanceLow
	ImportanceDefault
	ImportanceHigh
)

type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
}

type ChannelGroup struct {
	ID          string
	Name        string
	Description string
}

type Notification struct {
	ID        int
	ChannelID string
	SmallIcon string
	Title     string
	Text      string
}

// Surface is the device UI the harness drives. The harness only issues
// requests; rendering belongs to the implementation.
type Surface interface {
	ShowOverlay(ctx context.Context, spec OverlaySpec) error
	CreateNotificationChannel(ctx context.Context, ch Channel) error
	Notify(ctx context.Context, n Notification) error
	CancelNotification(ctx context.Context, id int) error
	CreateNotificationChannelGroup(ctx context.Context, g ChannelGroup) error
}

// LogSurface records surface requests in the log. It stands in on hosts
// without a display service.
type LogSurface struct {
	log *zap.Logger
}

func NewLogSurface(log *zap.Logger) *LogSurface {
	return &LogSurface{log: log.Named("surface")}
}

func (l *LogSurface) ShowOverlay(_ context.Context, spec OverlaySpec) error {
	l.log.Info("show overlay",
		zap.String("title", spec.Title),
		zap.Float64("width", spec.WidthFraction),
		zap.Float64("height", spec.HeightFraction),
		zap.String("gravity", spec.Gravity),
		zap.String("color", spec.Color))
	return nil
}

func (l *LogSurface) CreateNotificationChannel(_ context.Context, ch Channel) error {
	l.log.Info("create notification channel", zap.String("id", ch.ID), zap.String("name", ch.Name))
	return nil
}

func (l *LogSurface) Notify(_ context.Context, n Notification) error {
	l.log.Info("notify", zap.Int("id", n.ID), zap.String("channel", n.ChannelID), zap.String("title", n.Title))
	return nil
}

func (l *LogSurface) CancelNotification(_ context.Context, id int) error {
	l.log.Info("cancel notification", zap.Int("id", id))
	return nil
}

func (l *LogSurface) CreateNotificationChannelGroup(_ context.Context, g ChannelGroup) error {
	l.log.Info("create notification channel group", zap.String("id", g.ID), zap.String("name", g.Name))
	return nil
}
