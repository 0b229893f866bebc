// Package api runs the RoomGrabber service: it pumps inbound messages from
// the messaging channel through the bot and exposes a small HTTP surface for
// health checks, state inspection, and message injection.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/bot"
	"github.com/roomgrabber/roomgrabber/internal/lockfile"
	"github.com/roomgrabber/roomgrabber/internal/messaging"
	"github.com/roomgrabber/roomgrabber/internal/models"
	"github.com/roomgrabber/roomgrabber/internal/store"
)

const (
	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8080"
	// activityQueueSize bounds the inbound activity queue.
	activityQueueSize = 256
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr     string // HTTP listen address
	StateDir string // directory for the single-instance lock, empty disables locking
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithStateDir sets the state directory used for the single-instance lock.
func WithStateDir(dir string) Option {
	return func(o *Opts) { o.StateDir = dir }
}

// Server wires the bot, the messaging service, and the store together.
//
// All activities, whether from the messaging channel or from the HTTP
// injection endpoint, flow through a single queue consumed by one goroutine.
// That serializes turns and keeps the one-writer assumption of the
// conversation store.
type Server struct {
	bot        *bot.Bot
	msgService messaging.Service
	st         store.Store
	opts       Opts
	activities chan models.Activity
}

// NewServer creates a Server around an assembled bot, messaging service, and
// store.
func NewServer(b *bot.Bot, svc messaging.Service, st store.Store, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		bot:        b,
		msgService: svc,
		st:         st,
		opts:       cfg,
		activities: make(chan models.Activity, activityQueueSize),
	}
}

// Run starts the pumps and the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.opts.StateDir != "" {
		lock, err := lockfile.Acquire(s.opts.StateDir)
		if err != nil {
			return fmt.Errorf("Server.Run: failed to acquire state lock: %w", err)
		}
		defer lock.Release()
	}

	if err := s.msgService.Start(ctx); err != nil {
		return fmt.Errorf("Server.Run: failed to start messaging service: %w", err)
	}
	defer s.msgService.Stop()

	go s.pumpResponses(ctx)
	go s.pumpReceipts(ctx)
	go s.processActivities(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/conversations", s.conversationHandler)
	mux.HandleFunc("/messages", s.injectHandler)
	if twilioSvc, ok := s.msgService.(*messaging.TwilioService); ok {
		mux.HandleFunc("/twilio/webhook", twilioSvc.WebhookHandler)
	}

	httpSrv := &http.Server{Addr: s.opts.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server.Run: HTTP shutdown failed", "error", err)
		}
	}()

	slog.Info("RoomGrabber API running", "addr", s.opts.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// pumpResponses converts inbound messages into activities and records them.
func (s *Server) pumpResponses(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-s.msgService.Responses():
			if !ok {
				return
			}
			if err := s.st.AddResponse(resp); err != nil {
				slog.Warn("Server.pumpResponses: failed to record response", "error", err, "from", resp.From)
			}
			s.enqueue(models.Activity{
				Type:           models.ActivityTypeMessage,
				Text:           resp.Body,
				ConversationID: resp.From,
				From:           resp.From,
				Timestamp:      time.Unix(resp.Time, 0),
			})
		}
	}
}

// pumpReceipts records delivery receipts as they arrive.
func (s *Server) pumpReceipts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case receipt, ok := <-s.msgService.Receipts():
			if !ok {
				return
			}
			if err := s.st.AddReceipt(receipt); err != nil {
				slog.Warn("Server.pumpReceipts: failed to record receipt", "error", err, "to", receipt.To)
			}
		}
	}
}

// processActivities is the single turn consumer.
func (s *Server) processActivities(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case activity := <-s.activities:
			if err := s.bot.ProcessActivity(ctx, activity); err != nil {
				slog.Error("Server.processActivities: turn failed", "error", err, "conversation_id", activity.ConversationID)
			}
		}
	}
}

func (s *Server) enqueue(activity models.Activity) {
	select {
	case s.activities <- activity:
	default:
		slog.Warn("Server.enqueue: activity queue full, dropping", "conversation_id", activity.ConversationID)
	}
}
