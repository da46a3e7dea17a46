package notes

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"mindscribe/internal/records"
	"mindscribe/internal/services"
)

// SessionUpdater is the store capability a View needs to save the private note.
type SessionUpdater interface {
	UpdateSession(ctx context.Context, id string, patch records.SessionPatch) (records.Session, error)
}

// View binds one session and caches its generated documents. Each document
// has its own lock so intake and summary generation run independently.
type View struct {
	service    *Service
	store      SessionUpdater
	clientName string

	mu      sync.Mutex
	session records.Session

	intakeMu sync.Mutex
	intake   *IntakeResult

	summaryMu sync.Mutex
	summary   *SummaryResult
}

// NewView opens a view on session. clientName is the client's full display name.
func (s *Service) NewView(store SessionUpdater, session records.Session, clientName string) *View {
	return &View{service: s, store: store, session: session.Clone(), clientName: clientName}
}

// Session returns the view's copy of the session.
func (v *View) Session() records.Session {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session.Clone()
}

// Intake returns the intake note, generating it on first use. Degraded
// results and results produced while ctx was cancelled are not cached.
func (v *View) Intake(ctx context.Context) IntakeResult {
	v.intakeMu.Lock()
	defer v.intakeMu.Unlock()
	if v.intake != nil {
		return *v.intake
	}
	session := v.Session()
	result := v.service.IntakeNote(scope(ctx, session), session.Transcript, v.clientName)
	if ctx.Err() == nil && !result.Degraded {
		v.intake = &result
	}
	return result
}

// Summary returns the client summary, generating it on first use.
func (v *View) Summary(ctx context.Context) SummaryResult {
	v.summaryMu.Lock()
	defer v.summaryMu.Unlock()
	if v.summary != nil {
		return *v.summary
	}
	session := v.Session()
	result := v.service.Summary(scope(ctx, session), session.Transcript)
	if ctx.Err() == nil && !result.Degraded {
		v.summary = &result
	}
	return result
}

// SavePrivateNote persists text as the session's private note.
func (v *View) SavePrivateNote(ctx context.Context, text string) (records.Session, error) {
	session := v.Session()
	updated, err := v.store.UpdateSession(scope(ctx, session), session.ID, records.SessionPatch{PrivateNote: &text})
	if err != nil {
		return records.Session{}, err
	}
	v.mu.Lock()
	v.session.PrivateNote = updated.PrivateNote
	v.mu.Unlock()
	return updated, nil
}

func scope(ctx context.Context, session records.Session) context.Context {
	ctx = services.WithSessionID(ctx, session.ID)
	return services.WithClientID(ctx, session.ClientID)
}

// DefaultViewLimit bounds how many sessions keep cached documents.
const DefaultViewLimit = 256

// Views keeps one View per session so repeated requests reuse generated
// documents until the session changes. The least recently opened views are
// evicted once the limit is reached.
type Views struct {
	service *Service
	store   SessionUpdater

	mu    sync.Mutex
	views *lru.Cache[string, *View]
}

// ViewsOption customizes a Views cache.
type ViewsOption func(*viewsConfig)

type viewsConfig struct {
	limit int
}

// WithViewLimit caps the number of cached views. Values below one are ignored.
func WithViewLimit(limit int) ViewsOption {
	return func(c *viewsConfig) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// NewViews builds an empty view cache.
func NewViews(service *Service, store SessionUpdater, opts ...ViewsOption) *Views {
	cfg := viewsConfig{limit: DefaultViewLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *View](cfg.limit)
	return &Views{service: service, store: store, views: cache}
}

// Open returns the cached view for session, creating it when absent.
func (vs *Views) Open(session records.Session, clientName string) *View {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if view, ok := vs.views.Get(session.ID); ok {
		return view
	}
	view := vs.service.NewView(vs.store, session, clientName)
	vs.views.Add(session.ID, view)
	return view
}

// Invalidate drops the cached view for sessionID.
func (vs *Views) Invalidate(sessionID string) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.views.Remove(sessionID)
}

// Len reports how many views are cached.
func (vs *Views) Len() int {
	return vs.views.Len()
}
