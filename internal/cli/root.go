// Package cli is the storefront's command line. Each command stands in for
// one page of the web storefront and is backed by the same components.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vslbak/gymflow-web/internal/catalog"
	"github.com/vslbak/gymflow-web/internal/client"
	"github.com/vslbak/gymflow-web/internal/clock"
	"github.com/vslbak/gymflow-web/internal/config"
	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/mockapi"
	"github.com/vslbak/gymflow-web/internal/session"
	"github.com/vslbak/gymflow-web/internal/storage"
)

const mockPublicURL = "http://localhost:5173"

var (
	ErrNotSignedIn = errors.New("not signed in: run `storefront login` first")
	ErrNotAdmin    = errors.New("admin access required")
	ErrAborted     = errors.New("aborted")
)

type Options struct {
	Config config.StorefrontConfig
	Out    io.Writer
	In     io.Reader
	Clock  clock.Clock
}

// backendAPI is a client.API whose bearer token follows the session.
type backendAPI interface {
	client.API
	SetTokenSource(ts client.TokenSource)
}

type App struct {
	opts Options

	apiURL string
	mock   bool
	state  string

	api     backendAPI
	session *session.Manager
	catalog *catalog.Store
	closers []func() error
}

func New(opts Options) *App {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &App{opts: opts}
}

// Execute runs one command line and releases everything it opened.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.Command()
	root.SetArgs(args)
	defer a.close()
	return root.ExecuteContext(ctx)
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse, book and manage GymFlow classes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Out)
	root.SetIn(a.opts.In)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", a.opts.Config.APIBaseURL, "backend base URL")
	flags.BoolVar(&a.mock, "mock", false, "use the in-process mock API with demo data")
	flags.StringVar(&a.state, "state", a.opts.Config.StateFile, "session state file")

	root.AddCommand(
		a.classesCmd(),
		a.classCmd(),
		a.bookCmd(),
		a.bookingSuccessCmd(),
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.cancelCmd(),
		a.adminCmd(),
	)
	return root
}

func (a *App) open(ctx context.Context) error {
	if a.session != nil {
		return nil
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	if a.mock {
		m, err := mockapi.NewSeeded(ctx, a.opts.Clock.Now(), mockPublicURL)
		if err != nil {
			return fmt.Errorf("start mock api: %w", err)
		}
		a.api = m
	} else {
		if a.apiURL == "" {
			return errors.New("no backend configured: set API_BASE_URL, --api or --mock")
		}
		a.api = client.NewHTTPClient(a.apiURL)
	}

	a.session = session.NewManager(a.api, store, a.opts.Clock)
	a.api.SetTokenSource(a.session)
	a.session.Start(ctx)
	a.closers = append(a.closers, func() error {
		a.session.Close()
		return nil
	})

	a.catalog = catalog.NewStore(a.api)
	return nil
}

func (a *App) openStore() (storage.Store, error) {
	switch a.opts.Config.StateBackend {
	case "memory":
		return storage.NewMemory(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.opts.Config.RedisAddr})
		a.closers = append(a.closers, rdb.Close)
		return storage.NewRedis(rdb), nil
	default:
		if a.state == "" {
			return nil, errors.New("no state file configured: set STATE_FILE or --state")
		}
		return storage.NewFile(a.state)
	}
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("failed to release storefront resource", "error", err)
		}
	}
	a.closers = nil
	a.session = nil
}

func (a *App) requireUser() error {
	if !a.session.IsAuthenticated() {
		return ErrNotSignedIn
	}
	return nil
}

func (a *App) requireAdmin() error {
	if err := a.requireUser(); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (a *App) out() io.Writer {
	return a.opts.Out
}
