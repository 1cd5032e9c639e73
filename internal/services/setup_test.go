package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/assignment-service/internal/bulkimport"
	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/events"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories/memory"
	"github.com/SAP-F-2025/assignment-service/internal/storage"
	"github.com/SAP-F-2025/assignment-service/internal/validator"
)

type testEnv struct {
	repo      *memory.Repository
	cache     *cache.CacheManager
	publisher *events.MockEventPublisher
	files     *storage.MemoryStore
	mr        *miniredis.Miniredis
	services  ServiceManager
}

func newTestEnv(t *testing.T, directory ...fakeDirectory) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		repo:      memory.New(),
		cache:     cache.NewCacheManager(client),
		publisher: events.NewMockEventPublisher(logger),
		files:     storage.NewMemoryStore("http://files.test"),
		mr:        mr,
	}

	deps := Dependencies{
		Repo:      env.repo,
		Cache:     env.cache,
		Publisher: env.publisher,
		Files:     env.files,
		Logger:    logger,
		Validator: validator.New(),
	}
	if len(directory) > 0 {
		deps.Directory = directory[0]
	}

	env.services = NewDefaultServiceManager(deps)
	if err := env.services.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return env
}

func (e *testEnv) addUser(t *testing.T, id string, role models.UserRole, verified bool) *models.User {
	t.Helper()
	user := &models.User{ID: id, FullName: "User " + id, Email: id + "@example.com", Verified: verified}
	if err := e.repo.User().Create(context.Background(), user, role); err != nil {
		t.Fatalf("failed to create user %s: %v", id, err)
	}
	return user
}

// addAssignment creates an assignment owned by instructorID whose questions
// have the given correct answers.
func (e *testEnv) addAssignment(t *testing.T, instructorID, title string, correct ...int) *models.Assignment {
	t.Helper()
	ctx := context.Background()
	assignment := &models.Assignment{Title: title, InstructorID: instructorID}
	if err := e.repo.Assignment().Create(ctx, assignment); err != nil {
		t.Fatal(err)
	}
	questions := make([]*models.Question, len(correct))
	for i, c := range correct {
		questions[i] = &models.Question{
			AssignmentID:  assignment.ID,
			Text:          "Question",
			Options:       bulkimport.DefaultOptions(),
			CorrectAnswer: c,
			OrderNumber:   i,
		}
	}
	if err := e.repo.Question().CreateBatch(ctx, questions); err != nil {
		t.Fatal(err)
	}
	return assignment
}

type fakeDirectory map[string]*models.User

func (d fakeDirectory) Lookup(ctx context.Context, id string) (*models.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, errDirectoryDown
	}
	found := *u
	return &found, nil
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }
