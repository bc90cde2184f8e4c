package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// multiSink fans a committed event out to several sinks. Each sink is
// responsible for its own buffering; Publish never blocks on delivery.
type multiSink []domain.EventSink

func (m multiSink) Publish(ev domain.Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

// archiveTimeout bounds a single settlement report upload.
const archiveTimeout = 30 * time.Second

// archiveSink uploads a settlement report whenever a market resolves. The
// upload is best-effort and asynchronous: a failed or slow archive never
// delays or fails the resolution itself.
type archiveSink struct {
	markets  domain.MarketStore
	events   domain.EventStore
	archiver domain.Archiver
	logger   *slog.Logger
}

func newArchiveSink(markets domain.MarketStore, events domain.EventStore, archiver domain.Archiver, logger *slog.Logger) *archiveSink {
	return &archiveSink{
		markets:  markets,
		events:   events,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "archive_sink")),
	}
}

// Publish archives the market's settlement report on resolution events.
func (a *archiveSink) Publish(ev domain.Event) {
	if ev.Type != domain.EventMarketResolved {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		m, err := a.markets.Get(ctx, ev.Market)
		if err != nil {
			a.logger.Error("archive: load market",
				slog.String("market", ev.Market),
				slog.String("error", err.Error()),
			)
			return
		}
		history, err := a.events.ListByMarket(ctx, ev.Market, domain.ListOpts{})
		if err != nil {
			a.logger.Error("archive: load events",
				slog.String("market", ev.Market),
				slog.String("error", err.Error()),
			)
			return
		}
		path, err := a.archiver.ArchiveSettlement(ctx, m, history)
		if err != nil {
			a.logger.Error("archive: upload settlement report",
				slog.String("market", ev.Market),
				slog.String("error", err.Error()),
			)
			return
		}
		a.logger.Info("settlement report archived",
			slog.String("market", ev.Market),
			slog.String("path", path),
		)
	}()
}
