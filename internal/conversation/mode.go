package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/comigor/friendbot-go/internal/chatclient"
	"github.com/comigor/friendbot-go/internal/credential"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/persona"
	"github.com/comigor/friendbot-go/internal/session"
)

// Mode is the response-generation strategy of a session.
type Mode int

const (
	OfflineSimulated Mode = iota
	RemoteBacked
)

func (m Mode) String() string {
	switch m {
	case OfflineSimulated:
		return "offline_simulated"
	case RemoteBacked:
		return "remote_backed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Classify maps an identity to its mode: guests talk to the offline persona,
// authenticated users to the REST service.
func Classify(identity session.Identity) Mode {
	if identity == session.IdentityAuthenticated {
		return RemoteBacked
	}
	return OfflineSimulated
}

// Reply is what a Replier produces for one user turn.
type Reply = chatclient.Reply

// Seed is the initial content loaded for a session.
type Seed struct {
	Messages   []session.Message
	Preference session.Preference
}

// Replier answers one user turn.
type Replier interface {
	Reply(ctx context.Context, p session.Preference, text string) (Reply, error)
}

// Loader fetches the initial history of a session.
type Loader interface {
	Load(ctx context.Context) (Seed, error)
}

// Mirror propagates a preference change.
type Mirror interface {
	MirrorPreference(ctx context.Context, p session.Preference) error
}

// Remote is the subset of chatclient.Client used by remote-backed sessions.
type Remote interface {
	FetchHistory(ctx context.Context, credential string) ([]session.Message, error)
	SendMessage(ctx context.Context, credential, text string) (chatclient.Reply, error)
	FetchPreference(ctx context.Context, credential string) (session.Preference, error)
	UpdatePreference(ctx context.Context, credential string, p session.Preference) error
}

// Deps are the collaborators a session may need. Only the ones required by the
// selected mode are used.
type Deps struct {
	Credentials  credential.Provider
	Remote       Remote
	Persona      *persona.Responder
	OfflineDelay time.Duration
}

// Capabilities is the fixed behaviour of one session, chosen once by Select.
type Capabilities struct {
	Mode Mode
	// Greeting is appended synchronously when the session starts.
	Greeting []session.Message
	// Loader is nil when the session has nothing to fetch.
	Loader  Loader
	Replier Replier
	Mirror  Mirror
}

// Select builds the capability set of a session for identity.
func Select(identity session.Identity, deps Deps) Capabilities {
	switch Classify(identity) {
	case RemoteBacked:
		return Capabilities{
			Mode:    RemoteBacked,
			Loader:  remoteLoader{remote: deps.Remote, creds: deps.Credentials},
			Replier: remoteReplier{remote: deps.Remote, creds: deps.Credentials},
			Mirror:  remoteMirror{remote: deps.Remote, creds: deps.Credentials},
		}
	default:
		p := deps.Persona
		if p == nil {
			p = persona.New(nil)
		}
		return Capabilities{
			Mode: OfflineSimulated,
			Greeting: []session.Message{
				{ID: session.NewLocalID(), Text: persona.Welcome, Origin: session.OriginAssistant},
			},
			Replier: offlineReplier{persona: p, delay: deps.OfflineDelay},
			Mirror:  localMirror{},
		}
	}
}

// IdentityOf classifies the credential currently held by p.
func IdentityOf(ctx context.Context, p credential.Provider) session.Identity {
	if p == nil {
		return session.IdentityGuest
	}
	if _, ok := p.Credential(ctx); ok {
		return session.IdentityAuthenticated
	}
	return session.IdentityGuest
}

type offlineReplier struct {
	persona *persona.Responder
	delay   time.Duration
}

// Reply waits the simulated typing delay, then answers with the persona.
func (o offlineReplier) Reply(ctx context.Context, p session.Preference, text string) (Reply, error) {
	if o.delay > 0 {
		t := time.NewTimer(o.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, fmt.Errorf("%w: %v", chatclient.ErrUnavailable, ctx.Err())
		case <-t.C:
		}
	}
	return Reply{Message: session.Message{
		ID:     session.NewLocalID(),
		Text:   o.persona.Respond(p, text),
		Origin: session.OriginAssistant,
	}}, nil
}

type localMirror struct{}

func (localMirror) MirrorPreference(context.Context, session.Preference) error { return nil }

func token(ctx context.Context, creds credential.Provider) string {
	if creds == nil {
		return ""
	}
	tok, _ := creds.Credential(ctx)
	return tok
}

type remoteReplier struct {
	remote Remote
	creds  credential.Provider
}

func (r remoteReplier) Reply(ctx context.Context, _ session.Preference, text string) (Reply, error) {
	return r.remote.SendMessage(ctx, token(ctx, r.creds), text)
}

type remoteLoader struct {
	remote Remote
	creds  credential.Provider
}

// Load fetches the history, then the preference. A failed preference fetch keeps the
// default and is only logged.
func (r remoteLoader) Load(ctx context.Context) (Seed, error) {
	tok := token(ctx, r.creds)
	msgs, err := r.remote.FetchHistory(ctx, tok)
	if err != nil {
		return Seed{}, err
	}
	p, err := r.remote.FetchPreference(ctx, tok)
	if err != nil {
		logger.L.Warn("failed to fetch preference; keeping default", "error", err)
		p = ""
	}
	return Seed{Messages: msgs, Preference: p}, nil
}

type remoteMirror struct {
	remote Remote
	creds  credential.Provider
}

func (r remoteMirror) MirrorPreference(ctx context.Context, p session.Preference) error {
	return r.remote.UpdatePreference(ctx, token(ctx, r.creds), p)
}
