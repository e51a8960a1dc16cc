package gateway

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/eleven-am/voice-recognizer/internal/engine"
	"github.com/eleven-am/voice-recognizer/internal/recognizer"
)

type managedSession struct {
	session   *recognizer.Session
	remote    string
	startedAt time.Time
}

// SessionManager owns the recognizer sessions of live connections.
type SessionManager struct {
	engine   engine.Engine
	profile  recognizer.Profile
	words    WordSource
	sessions map[string]*managedSession
	mu       sync.RWMutex
	log      *slog.Logger
}

type SessionManagerConfig struct {
	Engine  engine.Engine
	Profile recognizer.Profile
	Words   WordSource
	Log     *slog.Logger
}

func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &SessionManager{
		engine:   cfg.Engine,
		profile:  cfg.Profile,
		words:    cfg.Words,
		sessions: make(map[string]*managedSession),
		log:      cfg.Log.With("component", "session_manager"),
	}
}

func (m *SessionManager) EngineName() string {
	return m.engine.Name()
}

func (m *SessionManager) lexicon(ctx context.Context) map[string]string {
	if m.words == nil {
		return nil
	}
	words, err := m.words.All(ctx)
	if err != nil {
		m.log.Warn("failed to load lexicon, continuing without custom words", "error", err)
		return nil
	}
	return words
}

// CreateSession opens a session prepared with the server profile and the
// current lexicon. It is not started.
func (m *SessionManager) CreateSession(ctx context.Context, remote string) (*recognizer.Session, error) {
	session, err := m.profile.Open(m.engine, m.lexicon(ctx), m.log)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID()] = &managedSession{
		session:   session,
		remote:    remote,
		startedAt: time.Now(),
	}
	m.mu.Unlock()

	m.log.Info("recognizer session created", "session_id", session.ID(), "remote", remote, "search", session.Search())
	return session, nil
}

// Reconfigure applies overrides on top of the server options and restores
// the profile's searches and words, which a decoder reinit discards.
// Processing resumes if it was running.
func (m *SessionManager) Reconfigure(ctx context.Context, session *recognizer.Session, overrides recognizer.Options) error {
	opts := maps.Clone(m.profile.Options)
	if opts == nil {
		opts = recognizer.Options{}
	}
	maps.Copy(opts, overrides)

	wasProcessing := session.State() == recognizer.StateProcessing
	if err := session.Stop(); err != nil {
		return err
	}
	if err := session.Reconfig(opts, nil); err != nil {
		return err
	}

	profile := m.profile
	profile.SilenceDetection = session.SilenceDetection()
	if err := profile.Apply(session, m.lexicon(ctx)); err != nil {
		return err
	}

	if wasProcessing {
		return session.Start()
	}
	return nil
}

func (m *SessionManager) GetSession(sessionID string) (*recognizer.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	return ms.session, true
}

func (m *SessionManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	ms, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ms != nil {
		ms.session.Free()
		m.log.Info("recognizer session removed", "session_id", sessionID)
	}
}

type SessionInfo struct {
	SessionID        string    `json:"session_id"`
	State            string    `json:"state"`
	Search           string    `json:"search"`
	SilenceDetection bool      `json:"silence_detection"`
	Remote           string    `json:"remote"`
	StartedAt        time.Time `json:"started_at"`
}

func (m *SessionManager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ListSessions returns the live sessions, oldest first.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	sessions := make([]SessionInfo, 0, len(m.sessions))
	for id, ms := range m.sessions {
		sessions = append(sessions, SessionInfo{
			SessionID:        id,
			State:            ms.session.State().String(),
			Search:           ms.session.Search(),
			SilenceDetection: ms.session.SilenceDetection(),
			Remote:           ms.remote,
			StartedAt:        ms.startedAt,
		})
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

func (m *SessionManager) Close() error {
	m.mu.Lock()
	sessions := make([]*managedSession, 0, len(m.sessions))
	for _, ms := range m.sessions {
		sessions = append(sessions, ms)
	}
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, ms := range sessions {
		ms.session.Free()
	}
	if len(sessions) > 0 {
		m.log.Info("freed live recognizer sessions", "count", len(sessions))
	}
	return nil
}
