// Package form implements the link-creation form of the website: the user picks a
// slug, the form keeps telling whether the slug is still available, and on submit
// the link is created and can be copied.
//
// The controller owns the form state and is safe for concurrent use. Availability
// checks are debounced on keystrokes and sequenced, so only the response to the
// latest check is ever applied. At most one create request is in flight.
package form

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/internal/slug"
)

const (
	DefaultDebounce  = 100 * time.Millisecond
	DefaultCopyReset = 3000 * time.Millisecond
	DefaultTimeout   = 10 * time.Second
)

var (
	// ErrInvalidSlug is the inline error of a slug outside [-a-zA-Z0-9]{1,20}.
	ErrInvalidSlug = slug.ErrInvalid
	// ErrInvalidURL is the inline error of a missing, malformed or too long url.
	ErrInvalidURL = errors.New("a valid url of at most 3000 characters is required")
	// ErrBusy is returned while a create request is in flight.
	ErrBusy = errors.New("a link is already being created")
	// ErrNotEditing is returned when submitting after a link was created and before Reset.
	ErrNotEditing = errors.New("the form is not being edited")
	// ErrNoLink is returned when copying before a link was created.
	ErrNoLink = errors.New("no link has been created")
	// ErrNoClipboard is returned when copying without a configured clipboard.
	ErrNoClipboard = errors.New("no clipboard configured")
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("form is closed")
)

// LinkAPI is the remote side of the form.
type LinkAPI interface {
	// CheckSlug reports whether slug is already assigned. It must not have side effects.
	CheckSlug(ctx context.Context, slug string) (bool, error)

	// Create assigns slug to url. It fails with models.ErrSlugTaken when the slug is
	// taken, regardless of what an earlier CheckSlug said.
	Create(ctx context.Context, slug, url string) (*models.Link, error)
}

// fieldErrors is implemented by API validation errors that name rejected fields.
type fieldErrors interface {
	Field(name string) (string, bool)
}

// View is the part of the form currently shown.
type View int

const (
	// ViewEditing shows the inputs. Initial state.
	ViewEditing View = iota
	// ViewSubmitting shows the inputs while the create request is in flight.
	ViewSubmitting
	// ViewSuccess shows the created link and the copy action.
	ViewSuccess
)

func (v View) String() string {
	switch v {
	case ViewEditing:
		return "editing"
	case ViewSubmitting:
		return "submitting"
	case ViewSuccess:
		return "success"
	default:
		return fmt.Sprintf("View(%d)", int(v))
	}
}

// Values are the user inputs.
type Values struct {
	Slug string `validate:"required,max=20,slug"`
	URL  string `validate:"required,max=3000,url"`
}

// Snapshot is a consistent copy of the form state.
type Snapshot struct {
	// Version increases with every state change.
	Version uint64
	View    View
	Values  Values
	// Preview is the link the current slug would get.
	Preview string
	// Checking is true while an availability check for the current slug is pending.
	Checking bool
	// Used is true when the last applied check for the current slug reported it taken.
	Used bool
	// CanSubmit is true in the editing view when the values are valid and the
	// current slug is not known to be used.
	CanSubmit bool

	SlugError   error
	URLError    error
	SubmitError error

	// Link and ShortLink are set in the success view.
	Link      *models.Link
	ShortLink string
	// Copied is true for a while after Copy.
	Copied bool
}

type checkResult struct {
	slug string
	used bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the clock driving the debounce and copied indicator timers.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func WithClipboard(clipboard Clipboard) Option {
	return func(c *Controller) {
		c.clipboard = clipboard
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithTimeout bounds every availability check and create request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithDebounce sets how long slug keystrokes must pause before a check is sent.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounceDelay = d
	}
}

// WithCopyReset sets how long the copied indicator stays on.
func WithCopyReset(d time.Duration) Option {
	return func(c *Controller) {
		c.copyReset = d
	}
}

// WithOnChange registers a callback receiving a snapshot after every state change.
// Callbacks may run on different goroutines; use Snapshot.Version to drop stale ones.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// Controller drives one link-creation form.
type Controller struct {
	api           LinkAPI
	origin        string
	clock         Clock
	clipboard     Clipboard
	logger        *slog.Logger
	validate      *validator.Validate
	timeout       time.Duration
	debounceDelay time.Duration
	copyReset     time.Duration
	onChange      func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// pending counts armed debounce timers and in-flight requests.
	pending     int
	idle        *sync.Cond
	version     uint64
	closed      bool
	view        View
	values      Values
	debounce    Timer
	checkSeq    uint64
	checkCancel context.CancelFunc
	checking    bool
	checked     checkResult
	slugErr     error
	urlErr      error
	submitErr   error
	link        *models.Link
	copied      bool
	copyTimer   Timer
}

// New creates a controller sending its requests to api. origin is the site the
// short links live on, e.g. "https://nexxel.dev".
func New(api LinkAPI, origin string, opts ...Option) *Controller {
	validate := validator.New()
	if err := slug.RegisterValidation(validate); err != nil {
		panic(err)
	}

	c := &Controller{
		api:           api,
		origin:        origin,
		clock:         realClock{},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate:      validate,
		timeout:       DefaultTimeout,
		debounceDelay: DefaultDebounce,
		copyReset:     DefaultCopyReset,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.idle = sync.NewCond(&c.mu)

	return c
}

// ChangeSlug stores the lowercased value and schedules a debounced availability check.
// Edits are ignored outside the editing view.
func (c *Controller) ChangeSlug(value string) {
	c.update(func() {
		if c.closed || c.view != ViewEditing {
			return
		}

		c.values.Slug = slug.Normalize(value)
		c.slugErr = nil
		c.scheduleCheck()
	})
}

// RandomSlug replaces the slug with a random human-readable one and checks it right away.
func (c *Controller) RandomSlug() {
	c.update(func() {
		if c.closed || c.view != ViewEditing {
			return
		}

		c.values.Slug = slug.Random()
		c.slugErr = nil
		c.stopDebounce()
		c.invalidateCheck()
		c.startCheck()
	})
}

// ChangeURL stores the destination url.
func (c *Controller) ChangeURL(value string) {
	c.update(func() {
		if c.closed || c.view != ViewEditing {
			return
		}

		c.values.URL = value
		c.urlErr = nil
	})
}

// Submit validates the form and sends the create request. It returns once the
// request is dispatched; the outcome shows up in later snapshots.
func (c *Controller) Submit() error {
	var err error

	c.update(func() {
		switch {
		case c.closed:
			err = ErrClosed
			return
		case c.view == ViewSubmitting:
			err = ErrBusy
			return
		case c.view == ViewSuccess:
			err = ErrNotEditing
			return
		}

		if err = c.validateValues(); err != nil {
			return
		}

		if c.usedLocked() {
			c.slugErr = models.ErrSlugTaken
			err = models.ErrSlugTaken
			return
		}

		c.stopDebounce()
		c.invalidateCheck()

		c.view = ViewSubmitting
		c.submitErr = nil
		c.startCreate(c.values)
	})

	return err
}

// Reset clears the form and returns to the editing view.
func (c *Controller) Reset() error {
	var err error

	c.update(func() {
		switch {
		case c.closed:
			err = ErrClosed
			return
		case c.view == ViewSubmitting:
			err = ErrBusy
			return
		}

		c.stopDebounce()
		c.invalidateCheck()
		c.stopCopyTimer()

		c.view = ViewEditing
		c.values = Values{}
		c.checked = checkResult{}
		c.slugErr, c.urlErr, c.submitErr = nil, nil, nil
		c.link = nil
		c.copied = false
	})

	return err
}

// Copy writes the short link to the clipboard and turns the copied indicator on.
// The indicator turns off after the copy reset delay; a later Copy restarts the delay.
func (c *Controller) Copy() error {
	const op = "form.Controller.Copy"

	var err error

	c.update(func() {
		switch {
		case c.closed:
			err = ErrClosed
			return
		case c.view != ViewSuccess:
			err = ErrNoLink
			return
		case c.clipboard == nil:
			err = ErrNoClipboard
			return
		}

		if werr := c.clipboard.WriteText(c.shortLinkLocked()); werr != nil {
			err = fmt.Errorf("%s: failed to write to clipboard: %w", op, werr)
			return
		}

		c.stopCopyTimer()
		c.copied = true

		var t Timer
		t = c.clock.AfterFunc(c.copyReset, func() {
			c.update(func() {
				if c.copyTimer != t {
					return
				}
				c.copyTimer = nil
				c.copied = false
			})
		})
		c.copyTimer = t
	})

	return err
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshotLocked()
}

// Wait blocks until no debounced check is pending and no request is in flight.
// It may be called concurrently with the other methods.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.pending > 0 {
		c.idle.Wait()
	}
}

// Close cancels pending timers and in-flight requests and waits for them to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopDebounce()
	c.stopCopyTimer()
	c.cancel()
	c.mu.Unlock()

	c.Wait()
}

// update applies fn under the lock and publishes the resulting snapshot.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.version++
	snap := c.snapshotLocked()
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	used := c.usedLocked()

	snap := Snapshot{
		Version:     c.version,
		View:        c.view,
		Values:      c.values,
		Preview:     slug.Link(c.origin, c.values.Slug),
		Checking:    c.checking,
		Used:        used,
		CanSubmit:   !c.closed && c.view == ViewEditing && !used && c.validate.Struct(c.values) == nil,
		SlugError:   c.slugErr,
		URLError:    c.urlErr,
		SubmitError: c.submitErr,
		Copied:      c.copied,
	}

	if c.link != nil {
		link := *c.link
		snap.Link = &link
		snap.ShortLink = c.shortLinkLocked()
	}

	return snap
}

func (c *Controller) usedLocked() bool {
	return c.checked.used && c.checked.slug == c.values.Slug
}

func (c *Controller) shortLinkLocked() string {
	if c.link == nil {
		return ""
	}
	return slug.Link(c.origin, c.link.Slug)
}

func (c *Controller) validateValues() error {
	c.slugErr, c.urlErr = nil, nil

	err := c.validate.Struct(c.values)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, fe := range verrs {
		switch fe.Field() {
		case "Slug":
			c.slugErr = ErrInvalidSlug
		case "URL":
			c.urlErr = ErrInvalidURL
		}
	}

	return errors.Join(c.slugErr, c.urlErr)
}

// scheduleCheck (re)starts the single debounce timer. The check reads the slug
// when the timer fires, so a burst of keystrokes results in one request.
func (c *Controller) scheduleCheck() {
	c.stopDebounce()
	c.invalidateCheck()

	if !slug.Valid(c.values.Slug) {
		if c.values.Slug != "" {
			c.slugErr = ErrInvalidSlug
		}
		return
	}

	c.checking = true
	c.pending++

	var t Timer
	t = c.clock.AfterFunc(c.debounceDelay, func() {
		defer c.done()

		c.update(func() {
			if c.debounce != t {
				return
			}
			c.debounce = nil
			c.startCheck()
		})
	})
	c.debounce = t
}

func (c *Controller) stopDebounce() {
	if c.debounce == nil {
		return
	}
	if c.debounce.Stop() {
		c.doneLocked()
	}
	c.debounce = nil
}

// invalidateCheck makes any in-flight check stale and cancels its request.
func (c *Controller) invalidateCheck() {
	c.checkSeq++
	if c.checkCancel != nil {
		c.checkCancel()
		c.checkCancel = nil
	}
	c.checking = false
}

func (c *Controller) startCheck() {
	if c.closed {
		return
	}

	c.checkSeq++
	seq := c.checkSeq
	value := c.values.Slug

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.checkCancel = cancel
	c.checking = true

	c.pending++
	go func() {
		defer c.done()
		defer cancel()

		used, err := c.api.CheckSlug(ctx, value)

		c.update(func() {
			if seq != c.checkSeq || c.view != ViewEditing {
				c.logger.Debug("dropping stale slug check", slog.String("slug", value))
				return
			}

			c.checking = false
			c.checkCancel = nil

			if err != nil {
				c.logger.Warn("slug check failed", slog.String("slug", value), slog.Any("err", err))

				if errors.Is(err, models.ErrInvalidLink) {
					c.slugErr = ErrInvalidSlug
				} else {
					c.slugErr = fmt.Errorf("could not check availability: %w", err)
				}
				return
			}

			c.checked = checkResult{slug: value, used: used}
			if used {
				c.slugErr = models.ErrSlugTaken
			}
		})
	}()
}

func (c *Controller) startCreate(values Values) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)

	c.pending++
	go func() {
		defer c.done()
		defer cancel()

		link, err := c.api.Create(ctx, values.Slug, values.URL)

		c.update(func() {
			c.finishCreate(values, link, err)
		})
	}()
}

func (c *Controller) finishCreate(values Values, link *models.Link, err error) {
	if c.view != ViewSubmitting {
		return
	}

	if err != nil {
		c.view = ViewEditing
		c.logger.Warn("link creation failed", slog.String("slug", values.Slug), slog.Any("err", err))

		var fe fieldErrors
		switch {
		case errors.Is(err, models.ErrSlugTaken):
			c.checked = checkResult{slug: values.Slug, used: true}
			c.slugErr = models.ErrSlugTaken
		case errors.As(err, &fe):
			_, badSlug := fe.Field("slug")
			_, badURL := fe.Field("url")
			if badSlug {
				c.slugErr = ErrInvalidSlug
			}
			if badURL {
				c.urlErr = ErrInvalidURL
			}
			if !badSlug && !badURL {
				c.submitErr = err
			}
		default:
			c.submitErr = fmt.Errorf("could not create the link, try again: %w", err)
		}
		return
	}

	created := models.Link{URL: values.URL}
	if link != nil {
		created = *link
	}
	if created.Slug == "" {
		created.Slug = values.Slug
	}

	c.view = ViewSuccess
	c.link = &created
	c.checked = checkResult{}
	c.slugErr, c.urlErr, c.submitErr = nil, nil, nil
	c.logger.Info("link created", slog.String("slug", created.Slug))
}

func (c *Controller) doneLocked() {
	c.pending--
	if c.pending == 0 {
		c.idle.Broadcast()
	}
}

func (c *Controller) done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.doneLocked()
}

func (c *Controller) stopCopyTimer() {
	if c.copyTimer == nil {
		return
	}
	c.copyTimer.Stop()
	c.copyTimer = nil
}
