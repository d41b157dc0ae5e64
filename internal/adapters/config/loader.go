package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

const (
	EnvConfigPath = "SSHGW_CONFIG"
	envPrefix     = "SSHGW"

	configPathKey = "config"
	configDir     = ".sshgw"
	configFile    = "config.toml"

	defaultKeyPath = "~/.ssh/id_rsa"

	serverNameKey          = "server.name"
	serverMetricsAddrKey   = "server.metrics_addr"
	serverSweepIntervalKey = "server.sweep_interval"
	serverMaxIdleKey       = "server.max_idle"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader reads the gateway configuration file. Connections and defaults are
// decoded directly so connection names keep their case; the [server] table is
// read through viper, which also allows SSHGW_SERVER_* overrides.
//
// viper is not safe for concurrent use, so mu serialises every read of it.
type Loader struct {
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	lookup func(string) (string, bool)
	logger zerolog.Logger
}

type Option func(*Loader)

func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(l *Loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader resolves the file path from explicitPath, then SSHGW_CONFIG, then
// ~/.sshgw/config.toml.
func NewLoader(v *viper.Viper, explicitPath string, opts ...Option) (*Loader, error) {
	if v == nil {
		v = viper.New()
	}

	l := &Loader{v: v, lookup: os.LookupEnv, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}

	if err := v.BindEnv(configPathKey, EnvConfigPath); err != nil {
		return nil, fmt.Errorf("bind config env: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(serverNameKey, domain.DefaultServerName)
	v.SetDefault(serverMetricsAddrKey, "")
	v.SetDefault(serverSweepIntervalKey, seconds(domain.DefaultSweepInterval))
	v.SetDefault(serverMaxIdleKey, seconds(domain.DefaultMaxIdle))

	path := strings.TrimSpace(explicitPath)
	if path == "" {
		path = strings.TrimSpace(v.GetString(configPathKey))
	}
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	l.path = path
	v.SetConfigFile(path)
	v.SetConfigType(formatOf(path))

	return l, nil
}

func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configFile), nil
}

func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) Load(ctx context.Context) (domain.Config, error) {
	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Config{}, &domain.ConfigError{
				Field:  "path",
				Reason: fmt.Sprintf("configuration file %s not found (run `sshgw init`)", l.path),
				Err:    os.ErrNotExist,
			}
		}
		return domain.Config{}, fmt.Errorf("read config file: %w", err)
	}

	file, err := decode(l.path, data)
	if err != nil {
		return domain.Config{}, err
	}
	if err := file.validateVersion(); err != nil {
		return domain.Config{}, err
	}

	cfg, err := l.read(file)
	if err != nil {
		return domain.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

func (l *Loader) read(file fileSchema) (domain.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.v.ReadInConfig(); err != nil {
		return domain.Config{}, &domain.ConfigError{Field: "server", Reason: "cannot be read", Err: err}
	}

	return l.build(file)
}

// Watch calls onChange after every write to the configuration file until ctx
// ends. The parent directory is watched so editors that replace the file by
// rename are still seen. onChange runs on the watcher goroutine, one call at
// a time.
func (l *Loader) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != l.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn().Err(err).Str("path", l.path).Msg("config watcher error")
			}
		}
	}()

	return nil
}

func (l *Loader) build(file fileSchema) (domain.Config, error) {
	if file.Connections == nil {
		return domain.Config{}, &domain.ConfigError{Field: "connections", Reason: "section is required"}
	}

	names := make([]string, 0, len(file.Connections))
	for name := range file.Connections {
		names = append(names, name)
	}
	sort.Strings(names)

	connections := make(map[string]domain.ConnectionDescriptor, len(file.Connections))
	for _, name := range names {
		descriptor, err := l.descriptor(name, file.Connections[name])
		if err != nil {
			return domain.Config{}, err
		}
		connections[name] = descriptor
	}

	policy, err := buildPolicy(file.Defaults)
	if err != nil {
		return domain.Config{}, err
	}

	return domain.Config{
		Path:        l.path,
		Connections: connections,
		Policy:      policy,
		Server: domain.ServerSettings{
			Name:          l.v.GetString(serverNameKey),
			MetricsAddr:   expandEnv(l.v.GetString(serverMetricsAddrKey), l.lookup),
			SweepInterval: time.Duration(l.v.GetInt(serverSweepIntervalKey)) * time.Second,
			MaxIdle:       time.Duration(l.v.GetInt(serverMaxIdleKey)) * time.Second,
		},
	}, nil
}

func (l *Loader) descriptor(name string, entry connectionSchema) (domain.ConnectionDescriptor, error) {
	entry.expand(l.lookup)

	method, err := domain.ParseAuthMethod(entry.AuthMethod)
	if err != nil {
		return domain.ConnectionDescriptor{}, &domain.ConfigError{Field: "connections." + name + ".auth_method", Err: err}
	}

	port := entry.Port
	if port == 0 {
		port = domain.DefaultSSHPort
	}
	keyPath := entry.KeyPath
	if method == domain.AuthMethodKey && keyPath == "" {
		keyPath = defaultKeyPath
	}

	return domain.ConnectionDescriptor{
		Name:       name,
		Host:       entry.Hostname,
		Port:       port,
		Username:   entry.Username,
		AuthMethod: method,
		CredentialRef: domain.CredentialRef{
			KeyPath:       keyPath,
			PassphraseRef: entry.PassphraseRef,
			Password:      entry.Password,
			PasswordRef:   entry.PasswordRef,
		},
		KnownHostsPath:        entry.KnownHosts,
		InsecureIgnoreHostKey: entry.InsecureIgnoreHostKey,
	}, nil
}

func buildPolicy(defaults defaultsSchema) (domain.Policy, error) {
	policy := domain.DefaultPolicy()

	if defaults.Timeout != nil {
		policy.DefaultTimeout = time.Duration(*defaults.Timeout) * time.Second
		policy.ConnectTimeout = policy.DefaultTimeout
	}
	if defaults.ConnectTimeout != nil {
		policy.ConnectTimeout = time.Duration(*defaults.ConnectTimeout) * time.Second
	}
	if defaults.MaxOutputSize != nil {
		policy.MaxOutputBytes = *defaults.MaxOutputSize
	}
	if defaults.AllowedCommands != nil {
		policy.AllowedCommands = append([]string(nil), defaults.AllowedCommands...)
	}
	if defaults.StreamIdleTimeout != nil {
		policy.StreamIdleTimeout = time.Duration(*defaults.StreamIdleTimeout) * time.Second
	}
	if defaults.ExitStatusTimeout != nil {
		policy.ExitStatusTimeout = time.Duration(*defaults.ExitStatusTimeout) * time.Second
	}
	if defaults.ExitStatusFallback != "" {
		policy.ExitStatusFallback = domain.ExitStatusFallback(strings.ToLower(strings.TrimSpace(defaults.ExitStatusFallback)))
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, err
	}
	policy.NormalizeAllowedCommands()

	return policy, nil
}

func decode(path string, data []byte) (fileSchema, error) {
	var file fileSchema

	switch formatOf(path) {
	case "yaml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fileSchema{}, &domain.ConfigError{Field: "file", Reason: "is not valid YAML", Err: err}
		}
	default:
		if err := toml.Unmarshal(data, &file); err != nil {
			return fileSchema{}, &domain.ConfigError{Field: "file", Reason: "is not valid TOML", Err: err}
		}
	}
	file.applyDefaults()

	return file, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

func normalizePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}
