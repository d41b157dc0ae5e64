package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/sshgw/internal/adapters/config"
	statusadapter "github.com/bnema/sshgw/internal/adapters/render/status"
	chainstore "github.com/bnema/sshgw/internal/adapters/secrets/chain"
	sshtransport "github.com/bnema/sshgw/internal/adapters/transport/ssh"
	"github.com/bnema/sshgw/internal/application"
	"github.com/bnema/sshgw/internal/observability"
	"github.com/bnema/sshgw/internal/ports"
)

const (
	appName        = "sshgw"
	secretsDirName = "secrets"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

type app struct {
	flags          globalFlags
	homeDir        string
	newSecretStore func(homeDir string) (ports.SecretStore, error)
	newTransport   func(secrets ports.SecretStore, logger zerolog.Logger) ports.Transport
	statusRenderer func(application.StatusReport, statusadapter.RenderOptions) (string, error)
	readPassword   func(prompt string, errOut io.Writer) (string, error)
	isTerminal     func(w io.Writer) bool
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return &app{
		homeDir: homeDir,
		newSecretStore: func(homeDir string) (ports.SecretStore, error) {
			store, err := chainstore.NewDefault(filepath.Join(homeDir, ".sshgw", secretsDirName))
			if err != nil {
				return nil, fmt.Errorf("wire secret store chain: %w", err)
			}
			return store, nil
		},
		newTransport: func(secrets ports.SecretStore, logger zerolog.Logger) ports.Transport {
			return sshtransport.New(secrets, sshtransport.WithLogger(logger))
		},
		statusRenderer: statusadapter.Render,
		readPassword:   readPassword,
		isTerminal:     isTerminal,
	}, nil
}

// runtime is everything a command needs once the configuration is loaded.
type runtime struct {
	loader  *config.Loader
	gateway *application.Gateway
	metrics *observability.Metrics
	logger  zerolog.Logger
}

func (r *runtime) Close() error {
	if err := r.gateway.Close(); err != nil {
		return fmt.Errorf("close sessions: %w", err)
	}
	return nil
}

// newLogger honours --log-level, then SSHGW_LOG_LEVEL, then fallback.
func (a *app) newLogger(cmd *cobra.Command, fallback string) (zerolog.Logger, error) {
	level := a.flags.logLevel
	if level == "" && os.Getenv(observability.LogLevelEnv) == "" {
		level = fallback
	}

	logger, err := observability.NewLogger(cmd.ErrOrStderr(), appName, level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("configure logging: %w", err)
	}

	return logger, nil
}

func (a *app) newLoader(opts ...config.Option) (*config.Loader, error) {
	loader, err := config.NewLoader(viper.New(), a.flags.configPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("wire config loader: %w", err)
	}

	return loader, nil
}

func (a *app) secretStore() (ports.SecretStore, error) {
	return a.newSecretStore(a.homeDir)
}

func (a *app) open(cmd *cobra.Command, logLevel string) (*runtime, error) {
	logger, err := a.newLogger(cmd, logLevel)
	if err != nil {
		return nil, err
	}

	loader, err := a.newLoader(config.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	cfg, err := loader.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", loader.Path()).Int("connections", len(cfg.Connections)).Msg("configuration loaded")

	secrets, err := a.secretStore()
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	gateway := application.NewGateway(cfg, loader, a.newTransport(secrets, logger),
		application.WithLogger(logger),
		application.WithMetrics(metrics),
		application.WithIDGenerator(uuid.NewString),
	)

	return &runtime{
		loader:  loader,
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
	}, nil
}
