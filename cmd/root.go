package cmd

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chimio/inxlocker/internal/api"
	"github.com/chimio/inxlocker/internal/config"
	"github.com/chimio/inxlocker/internal/daemon"
	"github.com/chimio/inxlocker/internal/hook"
	"github.com/chimio/inxlocker/internal/log"
	"github.com/chimio/inxlocker/internal/notify"
	"github.com/chimio/inxlocker/internal/prefs"
	"github.com/chimio/inxlocker/internal/statistics"
)

var (
	AppVersion    = "Development"
	shutdownChain []func() error
)

var rootCmd = &cobra.Command{
	Use:   "inxlocker",
	Short: "inxlocker routes package install requests to a chosen installer",
	Long:  "inxlocker classifies activity-start requests at hooked call sites and redirects install (and optionally uninstall) requests to the installer selected in the shared settings file.",
	RunE:  runRoot,

	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Shared by every subcommand
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringP("settings-dir", "d", "", "Settings directory")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level: debug, info, warn, error")

	// Host flags
	rootCmd.Flags().StringP("process", "P", "", "Hooked process name")
	rootCmd.Flags().StringP("api-server", "a", "", "API server listen address")
	rootCmd.Flags().String("api-secret", "", "API server bearer secret")
	rootCmd.Flags().String("log-dir", "", "Log directory")
	rootCmd.Flags().Bool("no-log-file", false, "Log to stdout only")
	rootCmd.Flags().String("stats-dir", "", "Statistics directory")
	rootCmd.Flags().String("settings-group", "", "Group given ownership of the settings directory")
	rootCmd.Flags().Int("recent-size", 0, "Number of recent hook outcomes kept")
	rootCmd.Flags().Duration("recent-ttl", 0, "How long recent hook outcomes are kept")
	rootCmd.Flags().BoolP("version", "v", false, "Show version")
	rootCmd.Flags().BoolP("generate-config", "g", false, "Generate template config file")

	// Bind all flags to viper using consistent key names
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("settings-dir", rootCmd.PersistentFlags().Lookup("settings-dir"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("process-name", rootCmd.Flags().Lookup("process"))
	_ = viper.BindPFlag("api-server", rootCmd.Flags().Lookup("api-server"))
	_ = viper.BindPFlag("api-server-secret", rootCmd.Flags().Lookup("api-secret"))
	_ = viper.BindPFlag("log-dir", rootCmd.Flags().Lookup("log-dir"))
	_ = viper.BindPFlag("no-log-file", rootCmd.Flags().Lookup("no-log-file"))
	_ = viper.BindPFlag("stats-dir", rootCmd.Flags().Lookup("stats-dir"))
	_ = viper.BindPFlag("settings-group", rootCmd.Flags().Lookup("settings-group"))
	_ = viper.BindPFlag("recent.size", rootCmd.Flags().Lookup("recent-size"))
	_ = viper.BindPFlag("recent.ttl", rootCmd.Flags().Lookup("recent-ttl"))

	// Bind environment variables
	viper.SetEnvPrefix("INXLOCKER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	_ = viper.BindEnv("settings-dir", "INXLOCKER_SETTINGS_DIR")
	_ = viper.BindEnv("process-name", "INXLOCKER_PROCESS")
	_ = viper.BindEnv("log-level", "INXLOCKER_LOG_LEVEL")
	_ = viper.BindEnv("api-server", "INXLOCKER_API_SERVER")
	_ = viper.BindEnv("api-server-secret", "INXLOCKER_API_SECRET")
}

func initConfig() {
	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.MergeInConfig(); err != nil {
			slog.Error("Failed to read config file", slog.Any("error", err))
			os.Exit(1)
		}
	}

	config.SetDefaults(viper.GetViper())
}

func runRoot(cmd *cobra.Command, args []string) error {
	// Handle -v / --version
	showVer, _ := cmd.Flags().GetBool("version")
	if showVer {
		fmt.Printf("inxlocker version %s\n", AppVersion)
		return nil
	}

	// Handle -g / --generate-config
	genConfig, _ := cmd.Flags().GetBool("generate-config")
	if genConfig {
		_, err := config.GenerateTemplateConfig(true)
		if err != nil {
			return fmt.Errorf("failed to generate template config: %w", err)
		}
		fmt.Println("Template config file 'config.yaml' generated successfully.")
		return nil
	}

	cfg, err := config.BuildConfigFromViper()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logBroadcaster := log.NewBroadcaster()
	log.SetLogConf(cfg, logBroadcaster)
	log.LogHeader(AppVersion, cfg)

	if err := daemon.DaemonSetup(cfg); err != nil {
		slog.Error("daemon.DaemonSetup", slog.Any("error", err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	addShutdown("cancel", func() error {
		cancel()
		return nil
	})

	store := prefs.Open(cfg.SettingsDir)

	recorder := statistics.New(cmp.Or(cfg.StatsDir, log.GetLogDir(cfg.LogDir)))
	recorder.Start(ctx)

	interceptor := hook.New(store, recorder, hook.Options{
		RecentSize: cfg.Recent.Size,
		RecentTTL:  cfg.Recent.TTL,
	})
	interceptor.OnSettingsChanged()
	slog.Info("Hook sites", slog.String("process", cfg.ProcessName), slog.Any("sites", hook.SitesFor(cfg.ProcessName)))

	receiver := notify.NewReceiver(cfg.SettingsDir, interceptor.OnSettingsChanged)
	if err := receiver.Start(ctx); err != nil {
		slog.Warn("notify.Receiver.Start", slog.Any("error", err))
	}

	if cfg.APIServer != "" {
		apiServer := api.New(AppVersion, cfg, store, interceptor, recorder, logBroadcaster)
		addShutdown("apiServer.Close", apiServer.Close)
		if err := apiServer.Start(); err != nil {
			slog.Error("apiServer.Start", slog.Any("error", err))
			shutdown()
			return err
		}
	}

	cleanup := make(chan os.Signal, 1)
	signal.Notify(cleanup, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM)
	for {
		s := <-cleanup
		slog.Info("Received signal", slog.String("signal", s.String()))
		switch s {
		case syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM:
			shutdown()
			return nil
		case syscall.SIGHUP:
			interceptor.OnSettingsChanged()
		default:
			return nil
		}
	}
}

func addShutdown(name string, fn func() error) {
	shutdownChain = append(shutdownChain, func() error {
		if err := fn(); err != nil {
			slog.Error(name, slog.Any("error", err))
			return err
		}
		return nil
	})
}

func shutdown() {
	for i := len(shutdownChain) - 1; i >= 0; i-- {
		_ = shutdownChain[i]()
	}
	slog.Info("inxlocker exit")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
