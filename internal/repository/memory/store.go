// Package memory implements the repository in process memory.
//
// A unit of work runs against a private copy of the data set that replaces the
// committed state only when the unit returns nil. Units are serialized by the
// store mutex for the duration of the unit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/repository/uow"

	"go.uber.org/zap"
)

type state struct {
	users    map[string]entities.User
	projects map[string]entities.Project
	bugs     map[string]entities.Bug
	fixes    map[string]entities.BugFix
}

func newState() *state {
	return &state{
		users:    make(map[string]entities.User),
		projects: make(map[string]entities.Project),
		bugs:     make(map[string]entities.Bug),
		fixes:    make(map[string]entities.BugFix),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v.Clone()
	}
	for k, v := range s.bugs {
		c.bugs[k] = v.Clone()
	}
	for k, v := range s.fixes {
		c.fixes[k] = v
	}
	return c
}

// Store keeps all entities in memory.
type Store struct {
	log *zap.SugaredLogger
	mu  sync.RWMutex
	st  *state
}

// New creates an empty store.
func New(log *zap.SugaredLogger) *Store {
	return &Store{
		log: log.Named("repo.memory"),
		st:  newState(),
	}
}

// OnStart is a no-op kept for the lifecycle contract.
func (s *Store) OnStart(_ context.Context) error {
	s.log.Infow("memory store ready")
	return nil
}

// OnStop is a no-op kept for the lifecycle contract.
func (s *Store) OnStop(_ context.Context) error {
	return nil
}

// RunInTx executes fn against a copy of the data set and commits it on success.
func (s *Store) RunInTx(ctx context.Context, fn func(tx uow.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// CreateUser stores a user; emails are unique case-insensitively.
func (s *Store) CreateUser(_ context.Context, u entities.User) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.st.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, entities.ErrEmailTaken
		}
	}
	if _, ok := s.st.users[u.ID]; ok {
		return nil, fmt.Errorf("%w: user id already exists", entities.ErrConflict)
	}
	s.st.users[u.ID] = u
	return &u, nil
}

// GetUser returns user by id.
func (s *Store) GetUser(_ context.Context, userID string) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.st.users[userID]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return &u, nil
}

// GetProject returns project with members.
func (s *Store) GetProject(_ context.Context, projectID string) (*entities.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.st.projects[projectID]
	if !ok {
		return nil, entities.ErrProjectNotFound
	}
	p = p.Clone()
	return &p, nil
}

// ListProjectsFor returns projects where userID is lead or member, newest first.
func (s *Store) ListProjectsFor(_ context.Context, userID string) ([]entities.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]entities.Project, 0)
	for _, p := range s.st.projects {
		if _, member := p.Member(userID); member || p.LeadID == userID {
			res = append(res, p.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// GetBug returns an active bug of the project.
func (s *Store) GetBug(_ context.Context, projectID, bugID string) (*entities.Bug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.st.bugs[bugID]
	if !ok || b.ProjectID != projectID || !b.IsActive {
		return nil, entities.ErrBugNotFound
	}
	b = b.Clone()
	return &b, nil
}

// ListBugs returns active bugs of the project in creation order.
func (s *Store) ListBugs(_ context.Context, projectID string, filter entities.BugFilter) ([]entities.Bug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.st.selectBugs(func(b entities.Bug) bool {
		if b.ProjectID != projectID || !b.IsActive {
			return false
		}
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		return filter.AssignedTo == "" || b.AssignedTo == filter.AssignedTo
	}), nil
}

// ListFixes returns fixes of the bug in submission order.
func (s *Store) ListFixes(_ context.Context, bugID string) ([]entities.BugFix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.st.selectFixes(func(f entities.BugFix) bool { return f.BugID == bugID }), nil
}

// ProjectStats aggregates bug and fix counters.
func (s *Store) ProjectStats(_ context.Context, projectID string) (entities.ProjectStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := entities.ProjectStats{ProjectID: projectID}
	if _, ok := s.st.projects[projectID]; !ok {
		return res, entities.ErrProjectNotFound
	}

	byStatus := map[entities.BugStatus]int64{}
	bySeverity := map[entities.Severity]int64{}
	workload := map[string]*entities.AssigneeStat{}
	for _, b := range s.st.bugs {
		if b.ProjectID != projectID || !b.IsActive {
			continue
		}
		byStatus[b.Status]++
		bySeverity[b.Severity]++
		if b.AssignedTo == "" {
			continue
		}
		w, ok := workload[b.AssignedTo]
		if !ok {
			w = &entities.AssigneeStat{UserID: b.AssignedTo}
			workload[b.AssignedTo] = w
		}
		switch b.Status {
		case entities.StatusAssigned:
			w.Assigned++
		case entities.StatusAwaitingVerification:
			w.Awaiting++
		}
	}
	byFix := map[entities.FixStatus]int64{}
	for _, f := range s.st.fixes {
		if f.ProjectID == projectID {
			byFix[f.Status]++
		}
	}

	for st, n := range byStatus {
		res.ByStatus = append(res.ByStatus, entities.StatusStat{Status: st, BugCount: n})
	}
	sort.Slice(res.ByStatus, func(i, j int) bool { return res.ByStatus[i].Status < res.ByStatus[j].Status })
	for sv, n := range bySeverity {
		res.BySeverity = append(res.BySeverity, entities.SeverityStat{Severity: sv, BugCount: n})
	}
	sort.Slice(res.BySeverity, func(i, j int) bool { return res.BySeverity[i].Severity < res.BySeverity[j].Severity })
	for _, w := range workload {
		if w.Assigned+w.Awaiting > 0 {
			res.Workload = append(res.Workload, *w)
		}
	}
	sort.Slice(res.Workload, func(i, j int) bool { return res.Workload[i].UserID < res.Workload[j].UserID })
	for st, n := range byFix {
		res.Fixes = append(res.Fixes, entities.FixStat{Status: st, FixCount: n})
	}
	sort.Slice(res.Fixes, func(i, j int) bool { return res.Fixes[i].Status < res.Fixes[j].Status })
	return res, nil
}

func (s *state) selectBugs(keep func(entities.Bug) bool) []entities.Bug {
	res := make([]entities.Bug, 0)
	for _, b := range s.bugs {
		if keep(b) {
			res = append(res, b.Clone())
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (s *state) selectFixes(keep func(entities.BugFix) bool) []entities.BugFix {
	res := make([]entities.BugFix, 0)
	for _, f := range s.fixes {
		if keep(f) {
			res = append(res, f)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID < res[j].ID
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}
