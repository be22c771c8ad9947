package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fuzeworks/fuzeworks/pkg/api"
	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/metrics"
	"github.com/fuzeworks/fuzeworks/pkg/modules"
	"github.com/fuzeworks/fuzeworks/pkg/plugins"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrStartupCancelled is returned when a coreStartEvent listener cancels startup.
var ErrStartupCancelled = errors.New("startup cancelled")

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the event bus and the operations API",
	Long: `Start fuzeworks: fire coreStartEvent, serve the HTTP API and metrics,
and optionally watch the modules directory for manifest changes.

On SIGINT or SIGTERM coreShutdownEvent is fired and loaded modules are closed.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("api-addr", "", "Address for the HTTP API")
	serveCmd.Flags().Bool("read-only", false, "Reject event firing over HTTP")
	serveCmd.Flags().Bool("watch", false, "Rescan the modules directory when manifests change")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.close(); err != nil {
			log.Logger.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	flags := cmd.Flags()
	if flags.Changed("api-addr") {
		rt.cfg.API.Addr, _ = flags.GetString("api-addr")
	}
	if flags.Changed("read-only") {
		rt.cfg.API.ReadOnly, _ = flags.GetBool("read-only")
	}
	if flags.Changed("watch") {
		rt.cfg.Watch, _ = flags.GetBool("watch")
	}

	if err := startup(rt); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, rt); err != nil {
		return err
	}
	return shutdown(rt)
}

// startup fires coreStartEvent. A cancelled event aborts startup with the
// maintenance message when the maintenance module caused it.
func startup(rt *runtime) error {
	ev, err := rt.bus.Fire(events.EventCoreStart)
	if err != nil {
		return fmt.Errorf("fire %s: %w", events.EventCoreStart, err)
	}
	if !ev.IsCancelled() {
		log.Logger.Info().
			Int("modules_loaded", rt.manager.LoadedCount()).
			Int("listeners", rt.bus.TotalListenerCount()).
			Msg("FuzeWorks started")
		return nil
	}

	if inst, ok := rt.manager.Instance(plugins.MaintenanceModule); ok {
		if m, ok := inst.(*plugins.Maintenance); ok && m.Active() {
			return fmt.Errorf("%w: %s", ErrStartupCancelled, m.Message())
		}
	}
	return ErrStartupCancelled
}

// serve runs the API, the metrics collector and the optional watcher until
// ctx is done or one of them fails.
func serve(ctx context.Context, rt *runtime) error {
	collector := metrics.NewCollector(rt.bus, rt.manager)
	collector.Start()
	defer collector.Stop()

	server := api.NewServer(rt.bus, rt.manager, api.WithReadOnly(rt.cfg.API.ReadOnly))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(rt.cfg.API.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if rt.cfg.Watch {
		w, err := newWatcher(rt)
		if err != nil {
			log.Logger.Warn().Err(err).Str("dir", rt.cfg.ModulesDir).Msg("Module watcher disabled")
		} else {
			defer w.Close()
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	log.Logger.Info().Str("addr", rt.cfg.API.Addr).Msg("FuzeWorks is running, press Ctrl+C to stop")
	return g.Wait()
}

func newWatcher(rt *runtime) (*modules.Watcher, error) {
	w, err := modules.NewWatcher(rt.cfg.ModulesDir, rt.manager,
		modules.WithPrepare(plugins.WithDefaults),
		modules.WithOverrides(rt.cfg.Modules),
		modules.WithOnSync(func(err error) {
			if err != nil {
				metrics.UpdateComponent(metrics.ComponentWatcher, false, err.Error())
				return
			}
			metrics.UpdateComponent(metrics.ComponentWatcher, true, "")
		}),
	)
	if err != nil {
		return nil, err
	}
	metrics.RegisterComponent(metrics.ComponentWatcher, true, "")
	return w, nil
}

// shutdown fires coreShutdownEvent. Modules are closed by runtime.close.
func shutdown(rt *runtime) error {
	log.Logger.Info().Msg("Shutting down")
	if _, err := rt.bus.Fire(events.EventCoreShutdown); err != nil {
		return fmt.Errorf("fire %s: %w", events.EventCoreShutdown, err)
	}
	log.Logger.Info().Msg("Shutdown complete")
	return nil
}
