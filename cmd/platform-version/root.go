package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darkit/platformversion"
	"github.com/darkit/platformversion/channel"
	"github.com/darkit/platformversion/internal/config"
	"github.com/darkit/platformversion/internal/logger"
)

// app 命令共享的运行时组件，在 PersistentPreRunE 中初始化
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer

	ids       *platformversion.StableIDStore
	collector *platformversion.Collector
	channel   *channel.Channel
}

func NewRootCommand() *cobra.Command {
	a := &app{v: config.New(), log: zerolog.Nop()}
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "platform-version",
		Short:        "Report the host platform version, device information and stable device id",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configPath)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.String("log-level", "warn", "log level: debug, info, warn, error, disable")
	flags.String("log-file", "", "write JSON logs to this rotating file")
	flags.String("store-backend", config.BackendDefault, "identifier slot: default, file, registry, memory")
	flags.String("store-dir", "", "directory holding the stable_device_id file")
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
	_ = a.v.BindPFlag(config.KeyStoreBackend, flags.Lookup("store-backend"))
	_ = a.v.BindPFlag(config.KeyStoreDir, flags.Lookup("store-dir"))

	rootCmd.AddCommand(
		newVersionCommand(a),
		newInfoCommand(a),
		newIDCommand(a),
		newCallCommand(a),
		newServeCommand(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, configPath string) error {
	cfg, err := config.Load(a.v, configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, closer, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Console:    true,
		ConsoleTo:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.log, a.closer = log, closer

	slot, err := newSlotStore(cfg.Store)
	if err != nil {
		return err
	}
	a.log.Debug().Str("slot", slot.Location()).Msg("identifier slot selected")

	a.ids = platformversion.NewStableIDStore(slot, platformversion.WithLogger(log))
	a.collector = platformversion.NewCollector(
		platformversion.WithStableIDStore(a.ids),
		platformversion.WithCollectorLogger(log),
	)
	a.channel = platformversion.NewChannel(a.collector, channel.WithLogger(log))

	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// newSlotStore 按配置选择标识槽位；store.dir 总是意味着文件槽位
func newSlotStore(cfg config.StoreConfig) (platformversion.SlotStore, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return platformversion.NewMemoryStore(), nil
	case config.BackendRegistry:
		return platformversion.RegistrySlotStore()
	case config.BackendFile:
		if cfg.Dir != "" {
			return platformversion.NewFileStore(cfg.Dir), nil
		}
		return platformversion.DefaultFileStore(), nil
	default:
		if cfg.Dir != "" {
			return platformversion.NewFileStore(cfg.Dir), nil
		}
		return platformversion.DefaultSlotStore(), nil
	}
}
