package app

import (
	"log/slog"
	"time"

	"github.com/clipmarket/client/internal/api"
	"github.com/clipmarket/client/internal/config"
	"github.com/clipmarket/client/internal/feed"
	"github.com/clipmarket/client/internal/models"
	"github.com/clipmarket/client/internal/session"
	"github.com/clipmarket/client/internal/videos"
	"github.com/clipmarket/client/internal/wallet"
)

const detailsCacheTTL = 15 * time.Minute

// client bundles the wired components behind the terminal commands.
type client struct {
	cfg     config.Config
	logger  *slog.Logger
	session *session.Source
	ledger  *wallet.Ledger
	pager   *feed.Pager
	details videos.Provider
}

// buildClient wires together the concrete implementations used by the
// command layer. The ledger seeds itself from the resolve transition,
// so every command path that calls resolve gets a seeded wallet for
// free.
func buildClient(cfg config.Config, logger *slog.Logger) *client {
	creds := session.NewFileStore(cfg.CredentialFile)

	gateway := api.New(cfg.APIBaseURL, creds,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRequestRate(cfg.RequestsPerSecond),
		api.WithLogger(logger),
	)

	source := session.NewSource(gateway, creds, logger)
	ledger := wallet.NewLedger(gateway, logger)
	source.OnResolved(func(identity *models.Identity) {
		if identity != nil {
			if err := ledger.Seed(identity.WalletBalance); err != nil {
				logger.Warn("wallet seed skipped", "error", err.Error())
			}
		}
	})

	return &client{
		cfg:     cfg,
		logger:  logger,
		session: source,
		ledger:  ledger,
		pager:   feed.NewPager(gateway, cfg.PageSize, logger),
		details: videos.NewCachingProvider(videos.NewAPIProvider(gateway), detailsCacheTTL),
	}
}
