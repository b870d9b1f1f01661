package repository

import (
	"errors"
	"sort"
	"sync"

	"interview-agent/internal/model"
)

// ErrSessionNotFound is returned when a caller references an unknown
// session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository is the process-wide in-memory session store. Sessions
// live for the lifetime of the process; there is no persistence. The map is
// guarded by its own lock while each session carries its own, so background
// units working on different sessions never serialize on a shared lock.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.InterviewSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*model.InterviewSession)}
}

func (r *SessionRepository) Create(jobDescription string) *model.InterviewSession {
	session := model.NewInterviewSession(jobDescription)
	r.mu.Lock()
	r.sessions[session.ID.String()] = session
	r.mu.Unlock()
	return session
}

func (r *SessionRepository) Find(id string) (*model.InterviewSession, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns snapshots of a page of sessions, newest first, plus the total
// session count.
func (r *SessionRepository) List(page, pageSize int) ([]model.SessionSnapshot, int64) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	r.mu.RLock()
	all := make([]*model.InterviewSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		all = append(all, session)
	}
	r.mu.RUnlock()

	snapshots := make([]model.SessionSnapshot, 0, len(all))
	for _, session := range all {
		snapshots = append(snapshots, session.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].ID < snapshots[j].ID
		}
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	total := int64(len(snapshots))
	start := (page - 1) * pageSize
	if start >= len(snapshots) {
		return []model.SessionSnapshot{}, total
	}
	end := start + pageSize
	if end > len(snapshots) {
		end = len(snapshots)
	}
	return snapshots[start:end], total
}
