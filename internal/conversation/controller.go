// Package conversation runs the turn-taking protocol of one chat session: it appends the
// user's message optimistically, dispatches the turn to the responder chosen for the
// session, and records the reply or the failure in the session store.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/session"
)

// DefaultTimeout bounds every reply request and the initial history load.
const DefaultTimeout = 15 * time.Second

// FSM Triggers
type trigger string

const (
	triggerLoad    trigger = "Load"
	triggerSeeded  trigger = "Seeded"
	triggerSubmit  trigger = "Submit"
	triggerResolve trigger = "Resolve"
	triggerReject  trigger = "Reject"
)

// Controller owns a session store and drives it through
// Idle -> AwaitingReply -> Idle|Error. All methods and continuations must run on the
// goroutine that drains the Dispatcher.
type Controller struct {
	store    *session.Store
	caps     Capabilities
	dispatch Dispatcher
	fsm      *stateless.StateMachine
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	// prefTouched is set once the user picks a preference, so a late history load
	// does not override it.
	prefTouched bool
	// mirroring is set while a preference mirror is in flight. At most one runs at a
	// time; the value current when it finishes is sent next.
	mirroring bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a controller for a fresh session. The mode is selected here, once, from
// identity. Call Start to seed the session.
func New(identity session.Identity, deps Deps, dispatch Dispatcher, opts ...Option) *Controller {
	return NewWithCapabilities(identity, Select(identity, deps), dispatch, opts...)
}

// NewWithCapabilities is New with an explicit capability set.
func NewWithCapabilities(identity session.Identity, caps Capabilities, dispatch Dispatcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:    session.NewStore(identity),
		caps:     caps,
		dispatch: dispatch,
		timeout:  DefaultTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	// The session store holds the machine state so that every transition is visible to
	// the rendering layer.
	c.fsm = stateless.NewStateMachineWithExternalStorage(
		func(context.Context) (stateless.State, error) { return c.store.Status(), nil },
		func(_ context.Context, s stateless.State) error {
			c.store.SetStatus(s.(session.Status))
			return nil
		},
		stateless.FiringImmediate,
	)

	// State: Idle
	// Transitions:
	//   - On Load -> Loading (authenticated sessions only)
	//   - On Submit -> AwaitingReply
	c.fsm.Configure(session.StatusIdle).
		Permit(triggerLoad, session.StatusLoading).
		Permit(triggerSubmit, session.StatusAwaitingReply)

	// State: Loading
	// Action: fetch history and preference.
	// Transitions:
	//   - On Seeded -> Idle
	//   - On Reject -> Error
	c.fsm.Configure(session.StatusLoading).
		OnEntry(c.startLoad).
		Permit(triggerSeeded, session.StatusIdle).
		Permit(triggerReject, session.StatusError)

	// State: AwaitingReply
	// Action: ask the replier for an answer to the message carried by Submit.
	// Transitions:
	//   - On Resolve -> Idle
	//   - On Reject -> Error
	// Submit is not permitted here, which rejects overlapping requests.
	c.fsm.Configure(session.StatusAwaitingReply).
		OnEntryFrom(triggerSubmit, c.startReply).
		Permit(triggerResolve, session.StatusIdle).
		Permit(triggerReject, session.StatusError)

	// State: Error
	// Action: record the failure next to the history.
	// Transitions:
	//   - On Submit -> AwaitingReply (leaving Error clears the failure)
	c.fsm.Configure(session.StatusError).
		OnEntryFrom(triggerReject, c.recordFailure).
		Permit(triggerSubmit, session.StatusAwaitingReply)

	return c
}

// Store exposes the session store for reading.
func (c *Controller) Store() *session.Store { return c.store }

// Mode returns the mode selected at creation.
func (c *Controller) Mode() Mode { return c.caps.Mode }

// Start seeds the session: the greeting is appended immediately and, when the mode
// needs it, the history load begins.
func (c *Controller) Start() {
	if !c.alive() {
		return
	}
	c.store.Append(c.caps.Greeting...)
	if c.caps.Loader == nil {
		return
	}
	if err := c.fsm.Fire(triggerLoad); err != nil {
		logger.L.Warn("FSM fire error", "trigger", triggerLoad, "error", err)
	}
}

// Submit sends text as the user's next turn. The user message is in the store when
// Submit returns. Blank text yields ErrEmptyMessage and a pending turn yields ErrBusy;
// neither changes the session.
func (c *Controller) Submit(text string) error {
	if !c.alive() {
		return ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if ok, _ := c.fsm.CanFire(triggerSubmit); !ok {
		return ErrBusy
	}

	msg := session.Message{ID: session.NewLocalID(), Text: text, Origin: session.OriginUser}
	c.store.Append(msg)
	if err := c.fsm.Fire(triggerSubmit, msg); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// ChangePreference updates the preference immediately and mirrors it in the
// background. Mirrors are serialized and the latest choice is the last one sent. A
// failed mirror only leaves a warning in the store.
func (c *Controller) ChangePreference(p session.Preference) {
	if !c.alive() {
		return
	}
	c.prefTouched = true
	c.store.SetPreference(p)
	c.store.SetWarning("")
	if !c.mirroring {
		c.startMirror(p)
	}
}

func (c *Controller) startMirror(p session.Preference) {
	c.mirroring = true
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		err := c.caps.Mirror.MirrorPreference(ctx, p)
		c.dispatch.Dispatch(func() { c.finishMirror(p, err) })
	}()
}

func (c *Controller) finishMirror(p session.Preference, err error) {
	c.mirroring = false
	if !c.alive() {
		return
	}
	if current := c.store.Preference(); current != p {
		c.startMirror(current)
		return
	}
	if err != nil {
		logger.L.Warn("preference mirror failed", "preference", p, "error", fmt.Errorf("%w: %w", ErrPreferenceSync, err))
		c.store.SetWarning(msgPreferenceSync)
	}
}

// Close tears the session down. Replies still in flight are dropped when they arrive.
func (c *Controller) Close() {
	c.cancel()
	c.store.Close()
}

func (c *Controller) alive() bool {
	return c.ctx.Err() == nil && !c.store.Closed()
}

func (c *Controller) fire(t trigger, args ...any) {
	if err := c.fsm.Fire(t, args...); err != nil {
		logger.L.Error("FSM fire error", "trigger", t, "error", err)
	}
}

func (c *Controller) startReply(_ context.Context, args ...any) error {
	sent, ok := args[0].(session.Message)
	if !ok {
		return fmt.Errorf("submit: unexpected argument %T", args[0])
	}
	pref := c.store.Preference()
	logger.L.Debug("FSM: Entering AwaitingReply", "mode", c.caps.Mode, "message_id", sent.ID)

	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		reply, err := c.caps.Replier.Reply(ctx, pref, sent.Text)
		c.dispatch.Dispatch(func() { c.finishReply(sent, reply, err) })
	}()
	return nil
}

func (c *Controller) finishReply(sent session.Message, reply Reply, err error) {
	if !c.alive() {
		logger.L.Debug("dropping reply for closed session", "message_id", sent.ID)
		return
	}
	if err != nil {
		logger.L.Error("reply failed", "mode", c.caps.Mode, "error", err)
		c.fire(triggerReject, classify(err, msgSendFailed))
		return
	}

	if reply.UserMessageID != "" {
		c.store.ReplaceID(sent.ID, reply.UserMessageID)
	}
	msg := reply.Message
	if msg.ID == "" {
		msg.ID = session.NewLocalID()
	}
	msg.Origin = session.OriginAssistant
	c.store.Append(msg)
	c.fire(triggerResolve)
}

func (c *Controller) startLoad(_ context.Context, _ ...any) error {
	logger.L.Debug("FSM: Entering Loading", "mode", c.caps.Mode)
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		seed, err := c.caps.Loader.Load(ctx)
		c.dispatch.Dispatch(func() { c.finishLoad(seed, err) })
	}()
	return nil
}

func (c *Controller) finishLoad(seed Seed, err error) {
	if !c.alive() {
		return
	}
	if err != nil {
		logger.L.Error("history load failed", "error", err)
		c.fire(triggerReject, classify(err, msgHistoryFailed))
		return
	}
	c.store.Append(seed.Messages...)
	if seed.Preference != "" && !c.prefTouched {
		c.store.SetPreference(seed.Preference)
	}
	c.fire(triggerSeeded)
}

func (c *Controller) recordFailure(_ context.Context, args ...any) error {
	f, ok := args[0].(failure)
	if !ok {
		return fmt.Errorf("reject: unexpected argument %T", args[0])
	}
	c.store.SetError(f.kind, f.text)
	return nil
}
