package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shepherd/config"
	"shepherd/internal/adapter/docker"
	"shepherd/internal/logging"
	"shepherd/internal/reconcile"
	"shepherd/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	if err := logging.Configure(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:     "shepherdd",
		Short:   "Single-node container reconciler daemon",
		Long:    "Shepherdd converges the set of running containers for one service\ntoward its declared image and replica count.",
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&configPath, "config", config.Path(), "Service config file")
	cmd.AddCommand(statusCmd(&configPath))
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	rt, err := docker.NewRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	slog.Info("waiting for container runtime", "service", cfg.Service)
	if err := rt.WaitReady(ctx); err != nil {
		return err
	}

	clock := reconcile.RealClock{}
	r := &reconcile.Reconciler{
		Spec:     specFromConfig(cfg),
		Runtime:  rt,
		Backoff:  reconcile.NewBackoff(clock),
		Interval: time.Duration(cfg.Interval),
		Settle:   time.Duration(cfg.SettleDelay),
	}
	if cfg.NTPCheck {
		r.Skew = reconcile.NewSkewChecker(clock)
	}

	slog.Info("reconciler starting",
		"service", cfg.Service,
		"image", cfg.Image,
		"replicas", cfg.Replicas,
	)
	if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("reconciler stopped", "service", cfg.Service)
	return nil
}

func specFromConfig(cfg *config.Config) reconcile.Spec {
	ports, _ := cfg.PortMappings() // validated at load
	spec := reconcile.Spec{
		Service:  cfg.Service,
		Image:    cfg.Image,
		Replicas: cfg.Replicas,
	}
	for _, p := range ports {
		spec.Ports = append(spec.Ports, reconcile.PortMapping{
			HostPort:      p.HostPort,
			ContainerPort: p.ContainerPort,
			Protocol:      p.Protocol,
		})
	}
	return spec
}
