// Package memory is an in-process Repository used by tests and local runs
// without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type rosterKey struct {
	assignmentID uint
	studentID    string
}

type state struct {
	users       map[string]models.User
	roles       map[string]models.UserRole
	assignments map[uint]models.Assignment
	questions   map[uint]models.Question
	submissions map[uint]models.Submission
	roster      map[rosterKey]time.Time
	nextID      uint
}

func newState() state {
	return state{
		users:       map[string]models.User{},
		roles:       map[string]models.UserRole{},
		assignments: map[uint]models.Assignment{},
		questions:   map[uint]models.Question{},
		submissions: map[uint]models.Submission{},
		roster:      map[rosterKey]time.Time{},
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.submissions {
		c.submissions[k] = v
	}
	for k, v := range s.roster {
		c.roster[k] = v
	}
	c.nextID = s.nextID
	return c
}

// Repository keeps every table in maps guarded by one mutex.
type Repository struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state

	// FailOn makes the named operation (e.g. "Question.CreateBatch") fail.
	FailOn map[string]error
}

func New() *Repository {
	return &Repository{data: newState(), FailOn: map[string]error{}}
}

var _ repositories.Repository = (*Repository)(nil)

func (r *Repository) fail(op string) error {
	if err, ok := r.FailOn[op]; ok {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

func (r *Repository) id() uint {
	r.data.nextID++
	return r.data.nextID
}

func (r *Repository) User() repositories.UserRepository             { return userRepo{r} }
func (r *Repository) Assignment() repositories.AssignmentRepository { return assignmentRepo{r} }
func (r *Repository) Question() repositories.QuestionRepository     { return questionRepo{r} }
func (r *Repository) Submission() repositories.SubmissionRepository { return submissionRepo{r} }
func (r *Repository) Roster() repositories.RosterRepository         { return rosterRepo{r} }

// WithTransaction serializes transactions and restores the previous state
// when fn fails.
func (r *Repository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.RLock()
	snapshot := r.data.clone()
	r.mu.RUnlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.data = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error { return r.fail("Ping") }
func (r *Repository) Close() error                   { return nil }

// ===== USERS =====

type userRepo struct{ r *Repository }

func (u userRepo) load(id string) (*models.User, bool) {
	user, ok := u.r.data.users[id]
	if !ok {
		return nil, false
	}
	user.Role = u.r.data.roles[id]
	return &user, true
}

func (u userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u.r.mu.RLock()
	defer u.r.mu.RUnlock()
	user, ok := u.load(id)
	if !ok {
		return nil, fmt.Errorf("failed to get user %s: %w", id, repositories.ErrNotFound)
	}
	return user, nil
}

func (u userRepo) Create(ctx context.Context, user *models.User, role models.UserRole) error {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	if err := u.r.fail("User.Create"); err != nil {
		return err
	}
	if _, ok := u.r.data.users[user.ID]; ok {
		return fmt.Errorf("failed to create user: %w", repositories.ErrAlreadyExists)
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	stored := *user
	stored.Role = ""
	u.r.data.users[user.ID] = stored
	if role != "" {
		u.r.data.roles[user.ID] = role
		user.Role = role
	}
	return nil
}

func (u userRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	u.r.mu.RLock()
	defer u.r.mu.RUnlock()
	users := make([]*models.User, 0, len(u.r.data.users))
	for id := range u.r.data.users {
		user, _ := u.load(id)
		if filters.Verified != nil && user.Verified != *filters.Verified {
			continue
		}
		if len(filters.Roles) > 0 && !hasRole(filters.Roles, user.Role) {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func hasRole(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u userRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	user, ok := u.r.data.users[id]
	if !ok {
		return fmt.Errorf("failed to update verification of user %s: %w", id, repositories.ErrNotFound)
	}
	user.Verified = verified
	user.UpdatedAt = time.Now()
	u.r.data.users[id] = user
	return nil
}

func (u userRepo) Delete(ctx context.Context, id string) error {
	u.r.mu.Lock()
	defer u.r.mu.Unlock()
	if err := u.r.fail("User.Delete"); err != nil {
		return err
	}
	delete(u.r.data.roles, id)
	if _, ok := u.r.data.users[id]; !ok {
		return fmt.Errorf("failed to delete user %s: %w", id, repositories.ErrNotFound)
	}
	delete(u.r.data.users, id)
	return nil
}

// ===== ASSIGNMENTS =====

type assignmentRepo struct{ r *Repository }

func (a assignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	if err := a.r.fail("Assignment.Create"); err != nil {
		return err
	}
	assignment.ID = a.r.id()
	now := time.Now()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	stored := *assignment
	stored.Instructor = models.User{}
	stored.Questions = nil
	stored.Submissions = nil
	a.r.data.assignments[assignment.ID] = stored
	return nil
}

func (a assignmentRepo) questionsOf(id uint) []models.Question {
	var questions []models.Question
	for _, q := range a.r.data.questions {
		if q.AssignmentID == id {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		if questions[i].OrderNumber == questions[j].OrderNumber {
			return questions[i].ID < questions[j].ID
		}
		return questions[i].OrderNumber < questions[j].OrderNumber
	})
	return questions
}

func (a assignmentRepo) hydrate(assignment models.Assignment) *models.Assignment {
	if user, ok := (userRepo{a.r}).load(assignment.InstructorID); ok {
		assignment.Instructor = *user
	}
	assignment.QuestionsCount = len(a.questionsOf(assignment.ID))
	return &assignment
}

func (a assignmentRepo) GetByID(ctx context.Context, id uint) (*models.Assignment, error) {
	a.r.mu.RLock()
	defer a.r.mu.RUnlock()
	assignment, ok := a.r.data.assignments[id]
	if !ok {
		return nil, fmt.Errorf("failed to get assignment %d: %w", id, repositories.ErrNotFound)
	}
	result := a.hydrate(assignment)
	result.Questions = a.questionsOf(id)
	return result, nil
}

func (a assignmentRepo) List(ctx context.Context, filters repositories.AssignmentFilters) ([]*models.Assignment, error) {
	a.r.mu.RLock()
	defer a.r.mu.RUnlock()
	var allowed map[uint]bool
	if filters.IDs != nil {
		allowed = make(map[uint]bool, len(filters.IDs))
		for _, id := range filters.IDs {
			allowed[id] = true
		}
	}

	assignments := make([]*models.Assignment, 0, len(a.r.data.assignments))
	for _, as := range a.r.data.assignments {
		if filters.InstructorID != nil && as.InstructorID != *filters.InstructorID {
			continue
		}
		if allowed != nil && !allowed[as.ID] {
			continue
		}
		assignments = append(assignments, a.hydrate(as))
	}
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].ID > assignments[j].ID
	})
	return assignments, nil
}

func (a assignmentRepo) Delete(ctx context.Context, id uint) error {
	a.r.mu.Lock()
	defer a.r.mu.Unlock()
	if _, ok := a.r.data.assignments[id]; !ok {
		return fmt.Errorf("failed to delete assignment %d: %w", id, repositories.ErrNotFound)
	}
	for qid, q := range a.r.data.questions {
		if q.AssignmentID == id {
			delete(a.r.data.questions, qid)
		}
	}
	for sid, s := range a.r.data.submissions {
		if s.AssignmentID == id {
			delete(a.r.data.submissions, sid)
		}
	}
	for k := range a.r.data.roster {
		if k.assignmentID == id {
			delete(a.r.data.roster, k)
		}
	}
	delete(a.r.data.assignments, id)
	return nil
}

// ===== QUESTIONS =====

type questionRepo struct{ r *Repository }

func (q questionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	q.r.mu.Lock()
	defer q.r.mu.Unlock()
	if err := q.r.fail("Question.CreateBatch"); err != nil {
		return err
	}
	for _, question := range questions {
		question.ID = q.r.id()
		question.CreatedAt = time.Now()
		q.r.data.questions[question.ID] = *question
	}
	return nil
}

func (q questionRepo) GetByAssignment(ctx context.Context, assignmentID uint) ([]*models.Question, error) {
	q.r.mu.RLock()
	defer q.r.mu.RUnlock()
	stored := (assignmentRepo{q.r}).questionsOf(assignmentID)
	questions := make([]*models.Question, len(stored))
	for i := range stored {
		questions[i] = &stored[i]
	}
	return questions, nil
}

// ===== SUBMISSIONS =====

type submissionRepo struct{ r *Repository }

func (s submissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	if err := s.r.fail("Submission.Create"); err != nil {
		return err
	}
	submission.ID = s.r.id()
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}
	stored := *submission
	stored.Student = models.User{}
	stored.Assignment = models.Assignment{}
	s.r.data.submissions[submission.ID] = stored
	return nil
}

func (s submissionRepo) List(ctx context.Context, filters repositories.SubmissionFilters) ([]*models.Submission, error) {
	s.r.mu.RLock()
	defer s.r.mu.RUnlock()
	submissions := make([]*models.Submission, 0, len(s.r.data.submissions))
	for _, sub := range s.r.data.submissions {
		if filters.AssignmentID != nil && sub.AssignmentID != *filters.AssignmentID {
			continue
		}
		if filters.StudentID != nil && sub.StudentID != *filters.StudentID {
			continue
		}
		if user, ok := (userRepo{s.r}).load(sub.StudentID); ok {
			sub.Student = *user
		}
		if as, ok := s.r.data.assignments[sub.AssignmentID]; ok {
			sub.Assignment = as
		}
		sub := sub
		submissions = append(submissions, &sub)
	}
	sort.Slice(submissions, func(i, j int) bool {
		if submissions[i].SubmittedAt.Equal(submissions[j].SubmittedAt) {
			return submissions[i].ID > submissions[j].ID
		}
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})
	return submissions, nil
}

// ===== ROSTER =====

type rosterRepo struct{ r *Repository }

func (ro rosterRepo) IsAssigned(ctx context.Context, assignmentID uint, studentID string) (bool, error) {
	ro.r.mu.RLock()
	defer ro.r.mu.RUnlock()
	_, ok := ro.r.data.roster[rosterKey{assignmentID, studentID}]
	return ok, nil
}

func (ro rosterRepo) Assign(ctx context.Context, assignmentID uint, studentID string) error {
	ro.r.mu.Lock()
	defer ro.r.mu.Unlock()
	key := rosterKey{assignmentID, studentID}
	if _, ok := ro.r.data.roster[key]; !ok {
		ro.r.data.roster[key] = time.Now()
	}
	return nil
}

func (ro rosterRepo) Unassign(ctx context.Context, assignmentID uint, studentID string) error {
	ro.r.mu.Lock()
	defer ro.r.mu.Unlock()
	delete(ro.r.data.roster, rosterKey{assignmentID, studentID})
	return nil
}

func (ro rosterRepo) ListStudentIDs(ctx context.Context, assignmentID uint) ([]string, error) {
	ro.r.mu.RLock()
	defer ro.r.mu.RUnlock()
	ids := []string{}
	for k := range ro.r.data.roster {
		if k.assignmentID == assignmentID {
			ids = append(ids, k.studentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (ro rosterRepo) ListAssignmentIDs(ctx context.Context, studentID string) ([]uint, error) {
	ro.r.mu.RLock()
	defer ro.r.mu.RUnlock()
	ids := []uint{}
	for k := range ro.r.data.roster {
		if k.studentID == studentID {
			ids = append(ids, k.assignmentID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
