// Package upload holds the per-region upload session: the state machine that
// sequences validation, encoding and submission of one mailing file and
// reports each step to the UI.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rescp17/mailingDashboard/pkg/fileInfo"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
)

// DefaultExtension is the only file type the gateway accepts.
const DefaultExtension = ".csv"

var (
	// ErrSubmissionInFlight is returned when a submission for the region is still running.
	ErrSubmissionInFlight = errors.New("a submission is already in progress for this region")
	// ErrInvalidTransition is returned when an action does not apply to the current phase.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSubmissionDiscarded is returned when the session was reset while the
	// submission was running; its outcome is ignored.
	ErrSubmissionDiscarded = errors.New("submission discarded after reset")
)

// Encoder turns a file into the transport payload.
type Encoder interface {
	Encode(ctx context.Context, f fileInfo.File) (string, error)
}

// Submitter delivers an encoded payload to the gateway.
type Submitter interface {
	UploadMailing(ctx context.Context, region mailing.Region, payload, filename string) (mailing.Success, error)
}

// Snapshot is a copy of a session's state for rendering.
type Snapshot struct {
	Region            mailing.Region
	Phase             Phase
	FileName          string
	FileSize          int64
	Dragging          bool
	Busy              bool
	LastError         string
	ErrorKind         mailing.ErrorKind
	ValidationMessage string
	Reference         string
	ServerMessage     string
	Token             string
	UpdatedAt         time.Time
	// Version increases with every published change of the session. A
	// snapshot with a lower Version than one already seen is stale.
	Version uint64
	// Outcome is set once the latest attempt resolved, nil otherwise.
	Outcome mailing.Result
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sends success and error toasts to n instead of discarding them.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the logger; the region is added to every record.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers fn to receive a snapshot after every change.
// fn runs outside the controller's lock and may call back into it. Calls
// never overlap and arrive in Version order; a snapshot superseded while fn
// was busy is skipped.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

// WithAcceptedExtension replaces DefaultExtension as the only accepted file type.
func WithAcceptedExtension(ext string) Option {
	return func(c *Controller) {
		if ext != "" {
			c.extension = ext
		}
	}
}

// Controller owns the upload session of one region. It is safe for
// concurrent use; Submit blocks until the attempt resolves.
type Controller struct {
	region    mailing.Region
	encoder   Encoder
	submitter Submitter
	notifier  notify.Notifier
	logger    *slog.Logger
	observer  func(Snapshot)
	extension string

	mu         sync.Mutex
	phase      Phase
	file       fileInfo.File
	dragging   bool
	running    bool // a submission goroutine has not returned yet, even after a reset
	lastErr    error
	validation string
	reference  string
	serverMsg  string
	token      string
	updatedAt  time.Time
	version    uint64

	pubMu      sync.Mutex
	pending    []Snapshot
	delivering bool
	delivered  uint64
}

// New creates an empty session for region.
func New(region mailing.Region, encoder Encoder, submitter Submitter, opts ...Option) *Controller {
	c := &Controller{
		region:    region,
		encoder:   encoder,
		submitter: submitter,
		notifier:  notify.Discard,
		logger:    slog.Default(),
		extension: DefaultExtension,
		phase:     PhaseEmpty,
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("region", string(region))
	return c
}

// Region returns the region this session uploads for.
func (c *Controller) Region() mailing.Region {
	return c.region
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// nextSnapshotLocked records a change and returns the snapshot to publish.
func (c *Controller) nextSnapshotLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Region:            c.region,
		Phase:             c.phase,
		FileSize:          -1,
		Dragging:          c.dragging,
		Busy:              c.running,
		ValidationMessage: c.validation,
		Reference:         c.reference,
		ServerMessage:     c.serverMsg,
		Token:             c.token,
		UpdatedAt:         c.updatedAt,
		Version:           c.version,
	}
	if c.file != nil {
		s.FileName = c.file.Name()
		if node, ok := c.file.(fileInfo.FileNode); ok {
			s.FileSize = node.Size
		} else if mem, ok := c.file.(fileInfo.MemoryFile); ok {
			s.FileSize = int64(len(mem.Data))
		}
	}
	if c.lastErr != nil {
		s.LastError = mailing.UserMessage(c.lastErr)
		s.ErrorKind, _ = mailing.KindOf(c.lastErr)
	}
	switch {
	case c.phase == PhaseSucceeded:
		s.Outcome = mailing.Success{Reference: c.reference, Message: c.serverMsg}
	case c.phase == PhaseFailed && c.lastErr != nil:
		s.Outcome = mailing.ResultFromError(c.lastErr)
	}
	return s
}

// setPhaseLocked moves to next; callers have already checked the transition.
func (c *Controller) setPhaseLocked(next Phase) {
	if !c.phase.CanTransitionTo(next) {
		c.logger.Warn("Unexpected phase transition", "from", c.phase, "to", next)
	}
	c.phase = next
	c.updatedAt = time.Now()
}

// publish hands a snapshot to the observer. Call it without holding mu.
// Snapshots are queued; whichever caller finds the queue idle delivers
// everything pending, dropping snapshots older than the last delivered one.
func (c *Controller) publish(s Snapshot) {
	if c.observer == nil {
		return
	}
	c.pubMu.Lock()
	c.pending = append(c.pending, s)
	if c.delivering {
		c.pubMu.Unlock()
		return
	}
	c.delivering = true
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		if next.Version <= c.delivered {
			continue
		}
		c.delivered = next.Version
		c.pubMu.Unlock()
		c.observer(next)
		c.pubMu.Lock()
	}
	c.pending = nil
	c.delivering = false
	c.pubMu.Unlock()
}

// SelectFile replaces the selected file. Files without the accepted
// extension are rejected with a validation error and leave the session as it
// was, apart from the validation message.
func (c *Controller) SelectFile(f fileInfo.File) error {
	c.mu.Lock()
	if c.phase.InFlight() {
		c.mu.Unlock()
		c.logger.Debug("Selection ignored while submitting")
		return ErrSubmissionInFlight
	}

	if err := c.validateLocked(f); err != nil {
		c.validation = mailing.UserMessage(err)
		c.updatedAt = time.Now()
		snap := c.nextSnapshotLocked()
		c.mu.Unlock()

		c.logger.Info("File rejected", "error", err)
		c.notifier.Notify(notify.New(c.region, notify.LevelError, snap.ValidationMessage))
		c.publish(snap)
		return err
	}

	c.file = f
	c.lastErr = nil
	c.validation = ""
	c.reference = ""
	c.serverMsg = ""
	c.token = ""
	c.setPhaseLocked(PhaseSelected)
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.logger.Info("File selected", "file", f.Name())
	c.publish(snap)
	return nil
}

func (c *Controller) validateLocked(f fileInfo.File) error {
	if f == nil {
		return mailing.ValidationError("select", "no file selected")
	}
	return ValidateName(f.Name(), c.extension)
}

// ValidateName rejects a file name without the ext extension. It needs no
// I/O, so callers run it before opening a path. An empty ext means
// DefaultExtension.
func ValidateName(name, ext string) error {
	if ext == "" {
		ext = DefaultExtension
	}
	if !fileInfo.HasExtension(name, ext) {
		return mailing.ValidationError("select",
			fmt.Sprintf("invalid format: %q is not a %s file", name, ext))
	}
	return nil
}

// Submit encodes the selected file and sends it to the gateway, waiting for
// the outcome. Only one submission per region runs at a time; a second call
// while one is running returns ErrSubmissionInFlight without touching the
// network. A failed attempt keeps the file so Submit can simply be called again.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.phase.InFlight():
		c.mu.Unlock()
		c.logger.Debug("Duplicate submit ignored")
		return ErrSubmissionInFlight
	case c.running:
		// Reset mid-flight; the discarded call has not returned yet.
		c.mu.Unlock()
		c.logger.Info("Submit refused until the discarded submission returns")
		c.notifier.Notify(notify.New(c.region, notify.LevelInfo,
			fmt.Sprintf("Previous %s upload is still finishing, try again shortly", c.region)))
		return ErrSubmissionInFlight
	case c.phase == PhaseEmpty || c.file == nil:
		err := mailing.ValidationError("submit",
			fmt.Sprintf("select the %s file for %s first", c.extension, c.region))
		c.validation = mailing.UserMessage(err)
		c.updatedAt = time.Now()
		snap := c.nextSnapshotLocked()
		c.mu.Unlock()

		c.notifier.Notify(notify.New(c.region, notify.LevelError, snap.ValidationMessage))
		c.publish(snap)
		return err
	case !c.phase.CanTransitionTo(PhaseEncoding):
		phase := c.phase
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, phase)
	}

	token := uuid.NewString()
	file := c.file
	c.token = token
	c.running = true
	c.lastErr = nil
	c.validation = ""
	c.setPhaseLocked(PhaseEncoding)
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.logger.Info("Submission started", "file", file.Name(), "token", token)
	c.publish(snap)

	res, err := c.run(ctx, token, file)
	return c.finish(token, file, res, err)
}

// run performs encode then submit. Encoding strictly precedes the network call.
func (c *Controller) run(ctx context.Context, token string, file fileInfo.File) (mailing.Success, error) {
	payload, err := c.encoder.Encode(ctx, file)
	if err != nil {
		return mailing.Success{}, err
	}

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return mailing.Success{}, ErrSubmissionDiscarded
	}
	c.setPhaseLocked(PhaseSubmitting)
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	return c.submitter.UploadMailing(ctx, c.region, payload, file.Name())
}

// finish applies the outcome unless the session moved on in the meantime.
func (c *Controller) finish(token string, file fileInfo.File, res mailing.Success, err error) error {
	c.mu.Lock()
	c.running = false
	if c.token != token {
		snap := c.nextSnapshotLocked()
		c.mu.Unlock()
		c.logger.Info("Discarding late submission result", "token", token, "error", err)
		c.publish(snap)
		return ErrSubmissionDiscarded
	}

	var n notify.Notification
	if _, ok := mailing.KindOf(err); err != nil && !ok {
		err = mailing.TransportError("submit", err.Error(), err)
	}
	if err != nil {
		c.lastErr = err
		c.setPhaseLocked(PhaseFailed)
		n = notify.New(c.region, notify.LevelError,
			fmt.Sprintf("Upload %s failed: %s", c.region, mailing.UserMessage(err)))
	} else {
		c.reference = res.Reference
		c.serverMsg = res.Message
		c.setPhaseLocked(PhaseSucceeded)
		n = notify.New(c.region, notify.LevelSuccess,
			fmt.Sprintf("Mailing %s uploaded successfully", c.region))
	}
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	if err != nil {
		kind, _ := mailing.KindOf(err)
		c.logger.Error("Submission failed", "file", file.Name(), "kind", kind, "error", err)
	} else {
		c.logger.Info("Submission succeeded", "file", file.Name(), "reference", res.Reference)
	}
	c.notifier.Notify(n)
	c.publish(snap)
	return err
}

// Reset clears the session back to empty from any phase. A submission that
// is still running keeps going, but its result will be discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	wasInFlight := c.phase.InFlight()
	c.file = nil
	c.dragging = false
	c.lastErr = nil
	c.validation = ""
	c.reference = ""
	c.serverMsg = ""
	c.token = ""
	c.setPhaseLocked(PhaseEmpty)
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()

	c.logger.Info("Session reset", "was_in_flight", wasInFlight)
	c.publish(snap)
}

// DragEnter marks the zone as hovered by a dragged file.
func (c *Controller) DragEnter() {
	c.setDragging(true)
}

// DragLeave clears the hover mark.
func (c *Controller) DragLeave() {
	c.setDragging(false)
}

// Drop ends a drag and selects the dropped file exactly like SelectFile.
func (c *Controller) Drop(f fileInfo.File) error {
	c.setDragging(false)
	return c.SelectFile(f)
}

func (c *Controller) setDragging(v bool) {
	c.mu.Lock()
	if c.dragging == v {
		c.mu.Unlock()
		return
	}
	c.dragging = v
	c.updatedAt = time.Now()
	snap := c.nextSnapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}
