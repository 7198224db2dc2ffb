// Package app arma el orquestador de cuentas con sus adaptadores reales.
// Lo comparten el servidor HTTP y el comando de carga masiva.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/usuarios-api/internal/application/account"
	"github.com/jhoicas/usuarios-api/internal/domain/repository"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/cache"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/identity"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/metrics"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/postgres"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/security"
	"github.com/jhoicas/usuarios-api/internal/infrastructure/storage"
	"github.com/jhoicas/usuarios-api/pkg/config"
	"github.com/jhoicas/usuarios-api/pkg/logger"
)

// Accounts orquestador listo para usar y los recursos que el llamador debe cerrar.
type Accounts struct {
	Orchestrator *account.Orchestrator
	Pool         *pgxpool.Pool
}

// Close libera el pool de conexiones.
func (a *Accounts) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// BuildAccounts conecta a PostgreSQL, aplica migraciones y construye el orquestador.
// Con reg != nil las métricas de flujos se registran allí.
func BuildAccounts(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*Accounts, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}

	applied, err := postgres.Migrate(ctx, postgres.NewTxRunner(pool))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migraciones: %w", err)
	}
	if len(applied) > 0 {
		log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
	}

	// Los flujos leen sin caché; las consultas pasan por ella.
	var repo, reads repository.AccountRepository = postgres.NewAccountRepository(pool), nil
	if cfg.Cache.TTL > 0 {
		cached := cache.NewAccountRepository(repo, cfg.Cache.TTL)
		repo, reads = cached.Direct(), cached
	}

	idp := identity.NewClient(identity.Config{
		BaseURL:      cfg.Identity.BaseURL,
		ProjectID:    cfg.Identity.ProjectID,
		APIKey:       cfg.Identity.APIKey,
		ClientID:     cfg.Identity.ClientID,
		ClientSecret: cfg.Identity.ClientSecret,
		TokenURL:     cfg.Identity.TokenURL,
		Timeout:      cfg.Identity.Timeout,
	})

	proc := storage.NewImageProcessor(
		cfg.Storage.MaxBytes, cfg.Storage.MaxWidth, cfg.Storage.MaxHeight, cfg.Storage.JPEGQuality,
	)
	proc.MaxPixels = cfg.Storage.MaxPixels
	images := storage.NewClient(storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		PublicURL: cfg.Storage.PublicURL,
		APIKey:    cfg.Storage.APIKey,
		Timeout:   cfg.Storage.Timeout,
		Processor: proc,
	})

	deps := account.Deps{
		Repo:     repo,
		Reads:    reads,
		Identity: idp,
		Images:   images,
		Hasher:   security.NewBcryptHasher(0),
		Log:      log,
	}
	if reg != nil {
		rec := metrics.NewRecorder()
		if err := rec.Register(reg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("registrar métricas: %w", err)
		}
		deps.Metrics = rec
	}

	orch := account.NewOrchestrator(deps, account.Config{ImageBucket: cfg.Storage.Bucket})
	return &Accounts{Orchestrator: orch, Pool: pool}, nil
}
