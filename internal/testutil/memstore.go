package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"promptdeck.io/promptdeck/internal/domain"
	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
	"promptdeck.io/promptdeck/internal/store"
)

var _ store.Store = (*MemStore)(nil)

type memberKey struct{ team, user string }

// MemStore is an in-memory store.Store for service and handler tests.
// Returned records are copies; mutating them does not change the store.
type MemStore struct {
	mu sync.Mutex

	users       map[string]domain.User
	teams       map[string]domain.Team
	memberships map[memberKey]domain.Membership
	projects    map[string]domain.Project
	prompts     map[string]domain.Prompt
	audit       []domain.AuditEntry

	failures map[string]error
	now      func() time.Time
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[string]domain.User),
		teams:       make(map[string]domain.Team),
		memberships: make(map[memberKey]domain.Membership),
		projects:    make(map[string]domain.Project),
		prompts:     make(map[string]domain.Prompt),
		failures:    make(map[string]error),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// FailOn makes every later call to method return err.
func (s *MemStore) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

func (s *MemStore) fail(method string) error {
	return s.failures[method]
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
}

// Seed helpers insert fixtures directly, bypassing validation.

// AddUser stores u.
func (s *MemStore) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddTeam stores t.
func (s *MemStore) AddTeam(t domain.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
}

// AddMember stores a membership.
func (s *MemStore) AddMember(teamID, userID string, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[memberKey{teamID, userID}] = domain.Membership{TeamID: teamID, UserID: userID, Role: role}
}

// AddProject stores p.
func (s *MemStore) AddProject(p domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
}

// AddPrompt stores p.
func (s *MemStore) AddPrompt(p domain.Prompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[p.ID] = p
}

// AuditEntries returns a copy of the recorded audit entries.
func (s *MemStore) AuditEntries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEntry(nil), s.audit...)
}

// Counts reports the number of stored teams, memberships, projects and prompts.
func (s *MemStore) Counts() (teams, memberships, projects, prompts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.teams), len(s.memberships), len(s.projects), len(s.prompts)
}

func (s *MemStore) UpsertUser(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpsertUser"); err != nil {
		return nil, err
	}
	existing, ok := s.users[u.ID]
	if !ok {
		for _, other := range s.users {
			if strings.EqualFold(other.Email, u.Email) {
				return nil, fmt.Errorf("user email %q: %w", u.Email, apperrors.ErrAlreadyExists)
			}
		}
		existing = domain.User{ID: u.ID, CreatedAt: s.now()}
	}
	existing.Email = u.Email
	if u.Name != "" {
		existing.Name = u.Name
	}
	s.users[u.ID] = existing
	out := existing
	return &out, nil
}

func (s *MemStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUser"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, notFound("user", email)
}

func (s *MemStore) CreateTeam(_ context.Context, t *domain.Team, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateTeam"); err != nil {
		return err
	}
	if _, ok := s.teams[t.ID]; ok {
		return fmt.Errorf("team %q: %w", t.ID, apperrors.ErrAlreadyExists)
	}
	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.teams[t.ID] = *t
	s.memberships[memberKey{t.ID, ownerID}] = domain.Membership{
		TeamID: t.ID, UserID: ownerID, Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (s *MemStore) GetTeam(_ context.Context, id string) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetTeam"); err != nil {
		return nil, err
	}
	t, ok := s.teams[id]
	if !ok {
		return nil, notFound("team", id)
	}
	return &t, nil
}

func (s *MemStore) ListTeamsForUser(_ context.Context, userID string) ([]domain.TeamSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListTeamsForUser"); err != nil {
		return nil, err
	}
	out := make([]domain.TeamSummary, 0)
	for key, m := range s.memberships {
		if key.user != userID {
			continue
		}
		t, ok := s.teams[key.team]
		if !ok {
			continue
		}
		count := 0
		for _, p := range s.projects {
			if p.TeamID == t.ID {
				count++
			}
		}
		out = append(out, domain.TeamSummary{Team: t, Permission: m.Role, ProjectCount: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) RenameTeam(_ context.Context, id, name string) (*domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RenameTeam"); err != nil {
		return nil, err
	}
	t, ok := s.teams[id]
	if !ok {
		return nil, notFound("team", id)
	}
	t.Name = name
	t.UpdatedAt = s.now()
	s.teams[id] = t
	return &t, nil
}

func (s *MemStore) SetTeamAPIKey(_ context.Context, id, hash, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetTeamAPIKey"); err != nil {
		return err
	}
	t, ok := s.teams[id]
	if !ok {
		return notFound("team", id)
	}
	t.APIKeyHash, t.APIKeyPrefix = hash, prefix
	t.UpdatedAt = s.now()
	s.teams[id] = t
	return nil
}

func (s *MemStore) DeleteTeamIfEmpty(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteTeamIfEmpty"); err != nil {
		return err
	}
	if _, ok := s.teams[id]; !ok {
		return notFound("team", id)
	}
	for _, p := range s.projects {
		if p.TeamID == id {
			return fmt.Errorf("team %q: %w", id, apperrors.ErrHasDependents)
		}
	}
	for key := range s.memberships {
		if key.team == id {
			delete(s.memberships, key)
		}
	}
	delete(s.teams, id)
	return nil
}

func (s *MemStore) GetMembership(_ context.Context, teamID, userID string) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetMembership"); err != nil {
		return nil, err
	}
	m, ok := s.memberships[memberKey{teamID, userID}]
	if !ok {
		return nil, notFound("membership", teamID+"/"+userID)
	}
	return &m, nil
}

func (s *MemStore) ListMemberships(_ context.Context, teamID string) ([]domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListMemberships"); err != nil {
		return nil, err
	}
	out := make([]domain.Membership, 0)
	for key, m := range s.memberships {
		if key.team != teamID {
			continue
		}
		if u, ok := s.users[key.user]; ok {
			user := u
			m.User = &user
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemStore) InsertMembership(_ context.Context, m *domain.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertMembership"); err != nil {
		return err
	}
	key := memberKey{m.TeamID, m.UserID}
	if _, ok := s.memberships[key]; ok {
		return fmt.Errorf("membership %s/%s: %w", m.TeamID, m.UserID, apperrors.ErrAlreadyExists)
	}
	now := s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	s.memberships[key] = *m
	return nil
}

func (s *MemStore) UpdateMembershipRole(_ context.Context, teamID, userID string, role domain.Role) (*domain.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdateMembershipRole"); err != nil {
		return nil, err
	}
	key := memberKey{teamID, userID}
	m, ok := s.memberships[key]
	if !ok {
		return nil, notFound("membership", teamID+"/"+userID)
	}
	m.Role = role
	m.UpdatedAt = s.now()
	s.memberships[key] = m
	out := m
	return &out, nil
}

func (s *MemStore) DeleteMembership(_ context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteMembership"); err != nil {
		return err
	}
	key := memberKey{teamID, userID}
	if _, ok := s.memberships[key]; !ok {
		return notFound("membership", teamID+"/"+userID)
	}
	delete(s.memberships, key)
	return nil
}

func (s *MemStore) CreateProject(_ context.Context, p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateProject"); err != nil {
		return err
	}
	if _, ok := s.teams[p.TeamID]; !ok {
		return notFound("team", p.TeamID)
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.ID] = *p
	return nil
}

func (s *MemStore) GetProject(_ context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetProject"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	return &p, nil
}

func (s *MemStore) ListProjects(_ context.Context, teamID string) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListProjects"); err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0)
	for _, p := range s.projects {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) RenameProject(_ context.Context, id, name string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("RenameProject"); err != nil {
		return nil, err
	}
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	p.Name = name
	p.UpdatedAt = s.now()
	s.projects[id] = p
	return &p, nil
}

func (s *MemStore) SetProjectAPIKey(_ context.Context, id, hash, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SetProjectAPIKey"); err != nil {
		return err
	}
	p, ok := s.projects[id]
	if !ok {
		return notFound("project", id)
	}
	p.APIKeyHash, p.APIKeyPrefix = hash, prefix
	p.UpdatedAt = s.now()
	s.projects[id] = p
	return nil
}

func (s *MemStore) DeleteProjectIfEmpty(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteProjectIfEmpty"); err != nil {
		return err
	}
	if _, ok := s.projects[id]; !ok {
		return notFound("project", id)
	}
	for _, p := range s.prompts {
		if p.ProjectID == id {
			return fmt.Errorf("project %q: %w", id, apperrors.ErrHasDependents)
		}
	}
	delete(s.projects, id)
	return nil
}

func (s *MemStore) CreatePrompt(_ context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePrompt"); err != nil {
		return err
	}
	if _, ok := s.projects[p.ProjectID]; !ok {
		return notFound("project", p.ProjectID)
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.prompts[p.ID] = *p
	return nil
}

func (s *MemStore) GetPrompt(_ context.Context, id string) (*domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("GetPrompt"); err != nil {
		return nil, err
	}
	p, ok := s.prompts[id]
	if !ok {
		return nil, notFound("prompt", id)
	}
	return &p, nil
}

func (s *MemStore) ListPrompts(_ context.Context, projectID string) ([]domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ListPrompts"); err != nil {
		return nil, err
	}
	out := make([]domain.Prompt, 0)
	for _, p := range s.prompts {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) UpdatePrompt(_ context.Context, p *domain.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdatePrompt"); err != nil {
		return err
	}
	if _, ok := s.prompts[p.ID]; !ok {
		return notFound("prompt", p.ID)
	}
	if _, ok := s.projects[p.ProjectID]; !ok {
		return notFound("project", p.ProjectID)
	}
	p.UpdatedAt = s.now()
	s.prompts[p.ID] = *p
	return nil
}

func (s *MemStore) DeletePrompt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeletePrompt"); err != nil {
		return err
	}
	if _, ok := s.prompts[id]; !ok {
		return notFound("prompt", id)
	}
	delete(s.prompts, id)
	return nil
}

func (s *MemStore) InsertAudit(_ context.Context, e *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("InsertAudit"); err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.audit = append(s.audit, *e)
	return nil
}

func (s *MemStore) DeleteAuditBefore(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("DeleteAuditBefore"); err != nil {
		return 0, err
	}
	kept := s.audit[:0]
	removed := 0
	for _, e := range s.audit {
		if e.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.audit = kept
	return removed, nil
}
