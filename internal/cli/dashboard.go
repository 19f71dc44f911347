package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/jobboard/internal/events"
	"github.com/cuongbtq/jobboard/internal/view"
)

func newDashboardCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.session()
			if err != nil {
				return err
			}

			dash := view.NewDashboard(cmd.Context(), app.client, app.client, app.deps(sess))
			defer dash.Unmount()

			// one failed collection still leaves the other to render
			err = dash.Mount(cmd.Context())
			app.renderDashboard(dash)
			return app.shown(err)
		},
	}
}

func (a *App) renderDashboard(dash *view.Dashboard) {
	renderSummary(a.out, dash.Summary())

	attention := dash.RequireAttention()
	fmt.Fprintln(a.out, "\nRecent jobs")
	renderJobs(a.out, attention.Jobs, a.now())
	fmt.Fprintln(a.out, "\nRecent applicants")
	renderApplicants(a.out, attention.Applicants, a.now())
}

// mounted is a view the watch command can keep on screen
type mounted interface {
	view.Reloader
	Mount(ctx context.Context) error
	Unmount()
}

// rendered prints its view again after every reload. Event and periodic
// reloads run on different goroutines, so reloads are serialized.
type rendered struct {
	mounted
	render func()

	mu sync.Mutex
}

func (r *rendered) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.mounted.Reload(ctx)
	if !errors.Is(err, view.ErrStale) && !errors.Is(err, view.ErrScopeClosed) {
		r.render()
	}
	return err
}

func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "watch [dashboard|jobs|applicants|listings]",
		Short:     "Keep a board on screen and refresh it as the board changes",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dashboard", "jobs", "applicants", "listings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := app.session()
			if err != nil {
				return err
			}

			name := "dashboard"
			if len(args) == 1 {
				name = args[0]
			}

			deps := app.deps(sess)
			var (
				v        mounted
				render   func()
				entities = []events.Entity{events.EntityJob, events.EntityApplicant}
			)
			switch name {
			case "jobs":
				board := view.NewJobsBoard(ctx, app.client, deps)
				v, render = board, func() { renderJobs(app.out, board.Visible(), app.now()) }
				entities = []events.Entity{events.EntityJob}
			case "applicants":
				board := view.NewApplicantsBoard(ctx, app.client, deps)
				v, render = board, func() { renderApplicants(app.out, board.Visible(), app.now()) }
			case "listings":
				listings := view.NewListings(ctx, app.client, "", deps)
				v, render = listings, func() {
					renderJobs(app.out, listings.Visible(), app.now())
					renderLocationCounts(app.out, listings.LocationCounts())
				}
				entities = []events.Entity{events.EntityJob}
			default:
				dash := view.NewDashboard(ctx, app.client, app.client, deps)
				v, render = dash, func() { app.renderDashboard(dash) }
			}
			defer v.Unmount()

			// a failed first load was already notified; keep watching for the next change
			_ = v.Mount(ctx)
			render()

			logger := app.logger.Component("watch").Logger
			watcher := view.NewWatcher(logger)
			watcher.Register(&rendered{mounted: v, render: render}, entities...)

			var stream <-chan events.Event
			sub, err := events.Subscribe(ctx, app.client.BaseURL(), sess.Header(), logger)
			if err != nil {
				logger.Warn("Live updates unavailable, refreshing periodically",
					slog.Any("error", err),
					slog.Duration("interval", app.cfg.Client.RefreshInterval),
				)
			} else {
				defer sub.Close()
				stream = sub.Events()
			}

			err = watcher.Watch(ctx, stream, app.cfg.Client.RefreshInterval)
			if errors.Is(err, view.ErrEventStreamClosed) {
				return fmt.Errorf("lost connection to %s: %w", app.client.BaseURL(), err)
			}
			return err
		},
	}
}
