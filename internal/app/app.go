// Package app wires the watcher's components together: market discovery,
// the two stream clients, the arbitrage engine, opportunity alerting, and
// the inspection server. It owns their lifecycles but not their logic.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arborwatch/xvenue-arb/internal/arbitrage"
	"github.com/arborwatch/xvenue-arb/internal/config"
	"github.com/arborwatch/xvenue-arb/internal/discovery"
	"github.com/arborwatch/xvenue-arb/internal/domain"
	"github.com/arborwatch/xvenue-arb/internal/kalshi"
	"github.com/arborwatch/xvenue-arb/internal/notify"
	"github.com/arborwatch/xvenue-arb/internal/pm"
	"github.com/arborwatch/xvenue-arb/internal/pricecache"
	"github.com/arborwatch/xvenue-arb/internal/server"
	"github.com/arborwatch/xvenue-arb/internal/server/ws"
)

// App holds every long-running component of the watcher.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	pmClient     *pm.Client
	kalshiClient *kalshi.Client
	engine       *arbitrage.Engine
	notifier     *notify.Notifier
	hub          *ws.Hub
	httpServer   *server.Server
}

// New resolves the market-pair universe via discovery, constructs every
// component, and returns an App ready to Run. It makes outbound HTTP
// calls (the discovery REST clients) before returning.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	pairs, pmTokenIDs, kalshiTickers, err := discovery.Bootstrap(ctx, cfg.TitleSim, cfg.TimeWindowH, logger)
	if err != nil {
		return nil, fmt.Errorf("app: discovery bootstrap: %w", err)
	}
	logger.Info("app: discovery complete",
		slog.Int("pairs", len(pairs)),
		slog.Int("pm_tokens", len(pmTokenIDs)),
		slog.Int("kalshi_tickers", len(kalshiTickers)),
	)

	pmCache := pricecache.NewPM()
	kalshiCache := pricecache.NewKalshi()

	pmClient := pm.New(pm.Config{
		WSURL:     cfg.PMWSURL,
		TokenIDs:  pmTokenIDs,
		ChunkSize: cfg.PMChunk,
		Cache:     pmCache,
		Logger:    logger,
	})

	kalshiClient := kalshi.New(kalshi.Config{
		KeyID:   cfg.KalshiKeyID,
		KeyPath: cfg.KalshiKeyPath,
		Cache:   kalshiCache,
		Logger:  logger,
	})

	engine := arbitrage.New(arbitrage.Config{
		Pairs:         pairs,
		PMCache:       pmCache,
		KalshiCache:   kalshiCache,
		KalshiEnabled: kalshiClient.IsEnabled,
		EdgeThreshold: cfg.EdgeMinRORPct,
		Logger:        logger,
	})

	hub := ws.NewHub(logger)

	httpServer := server.New(server.Config{Addr: cfg.HTTPAddr}, engine, hub, logger)

	return &App{
		cfg:          cfg,
		logger:       logger,
		pmClient:     pmClient,
		kalshiClient: kalshiClient,
		engine:       engine,
		notifier:     buildNotifier(cfg, logger),
		hub:          hub,
		httpServer:   httpServer,
	}, nil
}

// buildNotifier returns a Notifier over every configured sender. If no
// sender is configured, the Notifier still works; dispatch is then a
// no-op.
func buildNotifier(cfg config.Config, logger *slog.Logger) *notify.Notifier {
	var senders []notify.Sender
	if cfg.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.DiscordWebhookURL))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	return notify.NewNotifier(senders, nil, logger)
}

// Run starts every component and blocks until ctx is cancelled or a
// component fails. On return every component has been asked to stop.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.pmClient.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.kalshiClient.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.engine.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		a.forwardPMUpdates(gctx)
		return nil
	})
	g.Go(func() error {
		a.forwardKalshiUpdates(gctx)
		return nil
	})
	g.Go(func() error {
		a.alertNewOpportunities(gctx)
		return nil
	})
	g.Go(func() error {
		return a.httpServer.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// forwardPMUpdates republishes every accepted PM price update on the
// live-updates hub.
func (a *App) forwardPMUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-a.pmClient.Updates():
			if !ok {
				return
			}
			a.hub.Publish(ws.Update{Venue: "pm", Key: upd.TokenID, At: upd.At, Payload: upd.Record})
		}
	}
}

// forwardKalshiUpdates republishes every accepted Kalshi ticker frame on
// the live-updates hub.
func (a *App) forwardKalshiUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-a.kalshiClient.Updates():
			if !ok {
				return
			}
			a.hub.Publish(ws.Update{Venue: "kalshi", Key: upd.Ticker, At: upd.At, Payload: upd.Record})
		}
	}
}

// alertNewOpportunities watches the engine's published snapshots and
// notifies once per opportunity id the first time it is observed. It does
// not persist the seen set across restarts.
func (a *App) alertNewOpportunities(ctx context.Context) {
	const pollInterval = 2 * time.Second
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	seen := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := a.engine.Snapshot()
			for _, opp := range snapshot.Opportunities {
				if seen[opp.ID] {
					continue
				}
				seen[opp.ID] = true
				a.notifyOpportunity(ctx, opp)
			}
		}
	}
}

func (a *App) notifyOpportunity(ctx context.Context, opp domain.Opportunity) {
	title := "New arbitrage opportunity"
	message := fmt.Sprintf(
		"%s: %s / %s — edge %.2f%% on turnover, total cost %.4f",
		opp.Combo, opp.PMTitle, opp.KalshiTitle, opp.EdgePctTurn, opp.TotalCost,
	)
	if err := a.notifier.NotifyAll(ctx, title, message); err != nil {
		a.logger.Warn("app: notify failed", slog.String("error", err.Error()))
	}
}
