package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/cdr-client/internal/adapters/driven/cdrapi"
	"github.com/custodia-labs/cdr-client/internal/adapters/driven/oauth"
	"github.com/custodia-labs/cdr-client/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cdr-client/internal/connectors/filesystem"
	"github.com/custodia-labs/cdr-client/internal/core/domain"
	"github.com/custodia-labs/cdr-client/internal/core/ports/driven"
	"github.com/custodia-labs/cdr-client/internal/core/services"
	"github.com/custodia-labs/cdr-client/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the source folders and upload documents until stopped",
	Long: `Starts the push service. Files already present in the source folders are
uploaded first; after that new files are picked up by filesystem events and
by a periodic poll. SIGINT or SIGTERM stops discovery and waits for uploads
in flight to finish.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.SetTimestamps(true)
	return runPush(ctx, &cfg)
}

// loadClientConfig opens, decodes and validates the configuration.
func loadClientConfig() (domain.ClientConfig, error) {
	store, err := openConfigStore(configPath)
	if err != nil {
		return domain.ClientConfig{}, err
	}
	cfg, err := store.ClientConfig()
	if err != nil {
		return domain.ClientConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.ClientConfig{}, fmt.Errorf("%s: %w", store.Path(), err)
	}
	return cfg, nil
}

// envAccessToken supplies a fixed bearer token when no token endpoint is configured.
const envAccessToken = "CDR_ACCESS_TOKEN"

func newTokenProvider(auth domain.AuthConfig) (driven.TokenProvider, error) {
	if auth.TokenURL == "" {
		if token := os.Getenv(envAccessToken); token != "" {
			return oauth.StaticToken(token), nil
		}
	}
	return oauth.NewClientCredentials(auth, nil)
}

// runPush wires the pipeline for cfg and runs both discovery triggers until ctx is done.
func runPush(ctx context.Context, cfg *domain.ClientConfig) error {
	tokens, err := newTokenProvider(cfg.Auth)
	if err != nil {
		return err
	}
	client, err := cdrapi.New(tokens, cdrapi.Options{
		URL:               cfg.Endpoint.URL(),
		Timeout:           cfg.RequestTimeout.Std(),
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})
	if err != nil {
		return err
	}

	folders := cfg.WatchedFolders()
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("create source folder %s: %w", folder, err)
		}
	}

	claims := memory.NewClaimCache(cfg.ClaimCapacity)
	push := services.NewPushService(cfg, claims, client)
	claims.OnEvict(push.NoteEviction)
	push.Start(ctx)

	scheduler := services.NewScheduler(cfg.PollInterval.Std(), filesystem.NewPoller(folders, push))

	logger.Info("cdr-client %s: %d connector(s), %d folder(s), uploading to %s",
		version, len(cfg.Connectors), len(folders), cfg.Endpoint.URL())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.EventTriggerEnabled() {
		watcher := filesystem.NewWatcher(folders, push)
		g.Go(func() error {
			return runEventTrigger(gctx, watcher)
		})
	}

	err = g.Wait()
	_ = scheduler.Stop()
	push.Stop()

	stats := push.Stats()
	logger.Info("stopped: %d admitted, %d uploaded, %d failed, %d claim(s) evicted",
		stats.Admitted, stats.Uploaded, stats.Failed, stats.Evicted)
	return err
}

// eventTrigger is a discovery trigger that runs until ctx is done.
type eventTrigger interface {
	Run(ctx context.Context) error
}

// runEventTrigger runs trigger and never fails the service: when filesystem
// events are unavailable (e.g. the inotify watch limit is reached) the poll
// trigger still discovers every file.
func runEventTrigger(ctx context.Context, trigger eventTrigger) error {
	if err := trigger.Run(ctx); err != nil {
		logger.Warn("event trigger stopped, continuing with polling only: %v", err)
	}
	return nil
}
