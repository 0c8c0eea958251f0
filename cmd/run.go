package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/sweeper/internal/bus"
	"github.com/nextlevelbuilder/sweeper/internal/config"
	"github.com/nextlevelbuilder/sweeper/internal/gateway"
	"github.com/nextlevelbuilder/sweeper/internal/logging"
	"github.com/nextlevelbuilder/sweeper/internal/sweep"
	"github.com/nextlevelbuilder/sweeper/internal/tracing"
	"github.com/nextlevelbuilder/sweeper/pkg/browser"
)

func runCmd() *cobra.Command {
	var headless bool
	var noRestart bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the site and start the deletion agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweeper(cmd, headless, noRestart)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "run Chrome headless")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "do not restart the agent when navigating back to the qualifying view")
	return cmd
}

func runSweeper(cmd *cobra.Command, headless, noRestart bool) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var tracer *tracing.Tracer
	if cfg.Tracing.Endpoint != "" {
		tracer, err = tracing.New(ctx, tracing.Config{
			Endpoint:    cfg.Tracing.Endpoint,
			Protocol:    cfg.Tracing.Protocol,
			Insecure:    cfg.Tracing.Insecure,
			ServiceName: cfg.Tracing.ServiceName,
		})
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer tracer.Shutdown(context.Background())
	}

	mgr := browser.New(browser.WithHeadless(headless || cfg.Site.Headless))
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	page, err := mgr.Open(ctx, cfg.Site.URL)
	if err != nil {
		return err
	}

	identity := browser.NewIdentityResolver(page, cfg.Site.IdentitySelector, cfg.Site.Identity)
	view := browser.NewViewChecker(page, cfg.Site.HomePath)
	eventBus := bus.New()

	agent := sweep.New(page, identity, view, eventBus,
		sweep.WithConfig(cfg.AgentConfig()),
		sweep.WithTracer(tracer),
	)

	var gw *gateway.Server
	if cfg.Gateway.Enabled {
		gw = gateway.New(cfg.Gateway.Addr, eventBus, agent.Status)
		if err := gw.Start(); err != nil {
			return err
		}
	}

	// Navigating away self-deactivates the agent; navigating back re-arms it
	// unless --no-restart is set. Start is gated, so a premature attempt on a
	// non-qualifying view just records the reason.
	page.OnNavigate(func(url string) {
		slog.Debug("navigated", "url", url)
		agent.OnContextChange()
		if !noRestart && !agent.Running() {
			agent.Start()
		}
	})

	// Hot-reload tunables on config edits. Site, gateway, and tracing
	// changes need a process restart and are only logged.
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		watcher, werr := config.NewWatcher(cfgPath)
		if werr != nil {
			slog.Warn("config watcher unavailable", "error", werr)
		} else {
			watcher.OnChange(func(newCfg *config.Config) {
				agent.UpdateConfig(newCfg.AgentConfig())
				agent.OnContextChange()
				if newCfg.Site != cfg.Site || newCfg.Gateway != cfg.Gateway || newCfg.Tracing != cfg.Tracing {
					slog.Info("site/gateway/tracing changes take effect on restart")
				}
			})
			if werr := watcher.Start(); werr != nil {
				slog.Warn("config watcher failed to start", "error", werr)
			} else {
				defer watcher.Stop()
			}
		}
	}

	agent.Start()

	<-ctx.Done()
	slog.Info("shutting down")

	agent.Stop("shutting down")
	agent.Destroy()

	if gw != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer stopCancel()
		if err := gw.Stop(stopCtx); err != nil {
			slog.Warn("gateway shutdown", "error", err)
		}
	}
	return nil
}
