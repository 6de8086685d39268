package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	appevents "github.com/rescp17/mailingDashboard/internal/app_events"
	uploadEvent "github.com/rescp17/mailingDashboard/internal/app_events/upload"
	"github.com/rescp17/mailingDashboard/pkg/encoder"
	"github.com/rescp17/mailingDashboard/pkg/fileInfo"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	"github.com/rescp17/mailingDashboard/pkg/poller"
	"github.com/rescp17/mailingDashboard/pkg/upload"
	"golang.org/x/sync/errgroup"
)

// Gateway is what the dashboard needs from the remote service.
type Gateway interface {
	upload.Submitter
	poller.Source
}

// Options tune an App. Zero values fall back to package defaults.
type Options struct {
	Poller    poller.Config
	Extension string
	Logger    *slog.Logger
	// Notifier receives every toast in addition to the TUI.
	Notifier notify.Notifier
	// OpenFile turns a path into a file; defaults to fileInfo.CreateNode.
	OpenFile func(path string) (fileInfo.File, error)
}

// App is the main application logic controller behind the dashboard TUI.
type App struct {
	registry   *upload.Registry
	poller     *poller.Poller
	logger     *slog.Logger
	extension  string
	openFile   func(path string) (fileInfo.File, error)
	uiMessages chan tea.Msg            // App -> TUI
	appEvents  chan appevents.AppEvent // TUI -> App
	stop       chan struct{}
	stopOnce   sync.Once
	tasks      sync.WaitGroup // Track active submissions and refreshes
}

// NewApp wires the upload sessions and the status poller to gateway.
func NewApp(gateway Gateway, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		logger:     logger,
		extension:  opts.Extension,
		openFile:   opts.OpenFile,
		uiMessages: make(chan tea.Msg, 32),
		appEvents:  make(chan appevents.AppEvent),
		stop:       make(chan struct{}),
	}
	if a.openFile == nil {
		a.openFile = func(path string) (fileInfo.File, error) {
			return fileInfo.CreateNode(path)
		}
	}

	notifier := notify.Multi{
		notify.LogNotifier{Logger: logger},
		opts.Notifier,
		notify.Func(func(n notify.Notification) {
			a.send(uploadEvent.NotificationMsg{Notification: n})
		}),
	}
	a.registry = upload.NewRegistry(encoder.Encoder{Logger: logger}, gateway,
		upload.WithNotifier(notifier),
		upload.WithLogger(logger),
		upload.WithAcceptedExtension(opts.Extension),
		upload.WithObserver(func(s upload.Snapshot) {
			a.send(uploadEvent.SessionUpdatedMsg{Snapshot: s})
		}),
	)
	a.poller = poller.New(gateway, opts.Poller, a.deliverPoll, logger)
	return a
}

// UIMessages returns the channel for the UI to listen on for updates.
func (a *App) UIMessages() <-chan tea.Msg {
	return a.uiMessages
}

// AppEvents returns a write-only channel for the TUI to send events to the app.
func (a *App) AppEvents() chan<- appevents.AppEvent {
	return a.appEvents
}

// Sessions returns the current state of every region.
func (a *App) Sessions() []upload.Snapshot {
	return a.registry.Snapshots()
}

// Run starts polling and the application's main event loop.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.poller.Run(ctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				a.shutdown()
				return nil
			case event := <-a.appEvents:
				a.handleEvent(ctx, event)
			}
		}
	})
	return g.Wait()
}

func (a *App) shutdown() {
	a.stopOnce.Do(func() { close(a.stop) })
	// Wait for any active submissions to resolve
	a.tasks.Wait()
}

func (a *App) handleEvent(ctx context.Context, event appevents.AppEvent) {
	switch e := event.(type) {
	case uploadEvent.SelectFileMsg:
		a.withSession(e.Region, func(c *upload.Controller) error {
			return c.SelectFile(a.resolve(e.Path))
		})
	case uploadEvent.DropMsg:
		a.withSession(e.Region, func(c *upload.Controller) error {
			return c.Drop(a.resolve(e.Path))
		})
	case uploadEvent.DragEnterMsg:
		a.withSession(e.Region, func(c *upload.Controller) error {
			c.DragEnter()
			return nil
		})
	case uploadEvent.DragLeaveMsg:
		a.withSession(e.Region, func(c *upload.Controller) error {
			c.DragLeave()
			return nil
		})
	case uploadEvent.ResetMsg:
		a.withSession(e.Region, func(c *upload.Controller) error {
			c.Reset()
			return nil
		})
	case uploadEvent.SubmitMsg:
		a.StartSubmit(ctx, e.Region)
	case uploadEvent.RefreshMsg:
		a.tasks.Add(1)
		go func() {
			defer a.tasks.Done()
			a.poller.Refresh(ctx)
		}()
	default:
		a.logger.Warn("Unhandled app event", "type", fmt.Sprintf("%T", event))
	}
}

// resolve turns a typed or dropped path into a file. Terminals wrap dropped
// paths in quotes, so those are trimmed first. An empty path resolves to nil,
// which the controller rejects as "no file selected". A path with the wrong
// extension is never opened; the controller rejects it by name. A path that
// cannot be opened still resolves, and the I/O error surfaces as a read
// failure on submit.
func (a *App) resolve(path string) fileInfo.File {
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if path == "" {
		return nil
	}
	if err := upload.ValidateName(filepath.Base(path), a.extension); err != nil {
		return pathFile{path: path}
	}
	f, err := a.openFile(path)
	if err != nil {
		a.logger.Warn("Could not open selected file", "path", path, "error", err)
		return pathFile{path: path, err: err}
	}
	return f
}

// pathFile stands in for a path that was not, or could not be, opened.
type pathFile struct {
	path string
	err  error
}

func (p pathFile) Name() string {
	return filepath.Base(p.path)
}

func (p pathFile) Open() (io.ReadCloser, error) {
	if p.err != nil {
		return nil, p.err
	}
	return os.Open(p.path)
}

func (a *App) withSession(region mailing.Region, fn func(*upload.Controller) error) {
	c, err := a.registry.Get(region)
	if err != nil {
		a.sendAndLogError("Unknown region", err)
		return
	}
	if err := fn(c); err != nil {
		// The controller already reported it through its snapshot and notifier.
		a.logger.Debug("Session action rejected", "region", region, "error", err)
	}
}

// StartSubmit runs the region's submission in the background. The
// controller itself rejects duplicates, so calling this twice is harmless.
func (a *App) StartSubmit(ctx context.Context, region mailing.Region) {
	c, err := a.registry.Get(region)
	if err != nil {
		a.sendAndLogError("Unknown region", err)
		return
	}
	a.tasks.Add(1)
	go func() {
		defer a.tasks.Done()
		err := c.Submit(ctx)
		switch {
		case err == nil:
		case errors.Is(err, upload.ErrSubmissionInFlight):
			a.logger.Debug("Submission already in progress", "region", region)
		default:
			a.logger.Debug("Submission ended with error", "region", region, "error", err)
		}
	}()
}

func (a *App) deliverPoll(u poller.Update) {
	switch {
	case u.Err != nil:
		a.send(uploadEvent.PollFailedMsg{Region: u.Region, Err: u.Err})
	case u.Status != nil:
		a.send(uploadEvent.StatusUpdatedMsg{Status: *u.Status})
	case u.Costs != nil:
		a.send(uploadEvent.CostsUpdatedMsg{Costs: *u.Costs})
	}
}

// send delivers msg to the TUI unless the app is shutting down.
func (a *App) send(msg tea.Msg) {
	select {
	case a.uiMessages <- msg:
	case <-a.stop:
	}
}

// sendAndLogError is a helper function to both log an error and send it to the UI.
func (a *App) sendAndLogError(baseMessage string, err error) {
	a.logger.Error(baseMessage, "error", err)
	a.send(appevents.AppErrorMsg{Err: fmt.Errorf("%s: %w", baseMessage, err)})
}
