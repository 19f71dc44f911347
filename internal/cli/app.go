// Package cli is the jobboard command. Each command mounts one board view,
// runs a single load or mutation through it and prints the result.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/internal/config"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/notify"
	"github.com/cuongbtq/jobboard/internal/validate"
	"github.com/cuongbtq/jobboard/internal/view"
	"github.com/cuongbtq/jobboard/shared/logger"
)

const (
	// EnvConfigPath overrides the default config path
	EnvConfigPath = "JOBBOARD_CONFIG_PATH"
	// EnvPassword is read by signin when --password is not given
	EnvPassword = "JOBBOARD_PASSWORD"

	defaultConfigPath = "configs/jobboard.yaml"
)

// App holds what every command needs once the config is loaded
type App struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	configPath string
	cfg        *config.Config
	logger     *logger.Logger
	client     *client.Client
	sessions   *client.SessionStore
	notifier   *notify.Notifier
	validator  *validate.Validator
}

// Option configures the command
type Option func(*App)

// WithOutput redirects standard and error output
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithClock overrides the clock used for relative times and session expiry
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// Execute runs the command line in args
func Execute(ctx context.Context, args []string, opts ...Option) error {
	// commands log through a real logger once the config is loaded
	app := &App{out: os.Stdout, errOut: os.Stderr, now: time.Now, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(app)
	}
	defer app.close()

	root := newRootCommand(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(app *App) *cobra.Command {
	defaultConfig := os.Getenv(EnvConfigPath)
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	root := &cobra.Command{
		Use:           "jobboard",
		Short:         "Browse jobs, apply and manage the job board",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}
	root.SetOut(app.out)
	root.SetErr(app.errOut)
	root.PersistentFlags().StringVar(&app.configPath, "config", defaultConfig, "Path to configuration file")

	root.AddCommand(
		newSignInCommand(app),
		newSignOutCommand(app),
		newWhoAmICommand(app),
		newBrowseCommand(app),
		newApplyCommand(app),
		newJobsCommand(app),
		newApplicantsCommand(app),
		newDashboardCommand(app),
		newWatchCommand(app),
	)
	return root
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		// running without a config file is fine unless one was asked for
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}

	if err := cfg.ValidateClientConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	appLogger, err := logger.New(&logger.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       cfg.Logging.Output,
		EnableSource: cfg.Logging.EnableCaller,
		TimeFormat:   time.Kitchen,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = appLogger

	sessionPath, err := cfg.Client.SessionPath()
	if err != nil {
		return err
	}
	a.sessions = client.NewSessionStore(sessionPath)

	a.client = client.New(cfg.Client.BaseURL,
		client.WithTimeout(cfg.Client.Timeout),
		client.WithLogger(appLogger.Component("client").WithGroup("http").Logger),
		client.WithClock(a.now),
	)

	a.validator = validate.New()
	a.notifier = notify.New(cfg.Client.Notifications.LoadTTL)
	a.notifier.Subscribe(a.printNotification)

	appLogger.Debug("jobboard ready",
		slog.String("base_url", cfg.Client.BaseURL),
		slog.String("session_file", sessionPath),
	)
	return nil
}

func (a *App) close() {
	if a.notifier != nil {
		a.notifier.Close()
	}
	a.logger.Close()
}

func (a *App) printNotification(n notify.Notification) {
	if n.Empty() {
		return
	}
	fmt.Fprintf(a.out, "[%s] %s\n", n.Kind, n.Message)
}

// session returns the stored session, refusing one that can no longer be used
func (a *App) session() (*client.Session, error) {
	sess, err := a.sessions.Load()
	if errors.Is(err, client.ErrNoSession) {
		return nil, fmt.Errorf("%w: run `jobboard signin` first", err)
	}
	if err != nil {
		return nil, err
	}

	if err := sess.Valid(a.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.UserMessage(err), err)
	}
	return sess, nil
}

func (a *App) deps(sess *client.Session) view.Deps {
	n := a.cfg.Client.Notifications
	return view.Deps{
		Session:   sess,
		Notifier:  a.notifier,
		Validator: a.validator,
		Logger:    a.logger.Component("view").Logger,
		Timings: view.Timings{
			LoadTTL:     n.LoadTTL,
			MutationTTL: n.MutationTTL,
			ModalTTL:    n.ModalTTL,
		},
	}
}

// reportedError wraps a failure the user has already seen, either as a
// notification or as per-field messages
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown and only needs a non-zero exit
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// shown marks an error returned by a view. Validation failures are printed
// here since views never notify them.
func (a *App) shown(err error) error {
	if err == nil {
		return nil
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		printFields(a.errOut, verr)
	}
	return &reportedError{err: err}
}
