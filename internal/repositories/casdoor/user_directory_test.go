package casdoor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type fakeFetcher struct {
	users map[string]*casdoorsdk.User
	calls int
	err   error
}

func (f *fakeFetcher) GetUserByUserId(id string) (*casdoorsdk.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func setupDirectory(t *testing.T, fetcher *fakeFetcher) *UserDirectory {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return newUserDirectory(fetcher, cache.NewCacheHelper(client, cache.DirectoryCacheConfig.Prefix))
}

func TestMapRoles(t *testing.T) {
	tests := []struct {
		name string
		user *casdoorsdk.User
		want models.UserRole
	}{
		{"no roles", &casdoorsdk.User{}, models.RoleStudent},
		{"teacher", &casdoorsdk.User{Roles: []*casdoorsdk.Role{{Name: "Teacher"}}}, models.RoleInstructor},
		{"admin flag", &casdoorsdk.User{IsAdmin: true, Roles: []*casdoorsdk.Role{{Name: "student"}}}, models.RoleAdmin},
		{"admin role wins", &casdoorsdk.User{Roles: []*casdoorsdk.Role{{Name: "instructor"}, {Name: "admin"}}}, models.RoleAdmin},
		{"unknown role", &casdoorsdk.User{Roles: []*casdoorsdk.Role{{Name: "proctor"}}}, models.RoleStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapRoles(tt.user); got != tt.want {
				t.Errorf("MapRoles() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLookupCachesResult(t *testing.T) {
	fetcher := &fakeFetcher{users: map[string]*casdoorsdk.User{
		"u1": {Id: "u1", Name: "kim", Email: "kim@example.com", Roles: []*casdoorsdk.Role{{Name: "instructor"}}},
	}}
	dir := setupDirectory(t, fetcher)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		user, err := dir.Lookup(ctx, "u1")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if user.FullName != "kim" || user.Role != models.RoleInstructor || user.Verified {
			t.Errorf("unexpected user %+v", user)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 Casdoor call, got %d", fetcher.calls)
	}
}

func TestLookupMissingUser(t *testing.T) {
	dir := setupDirectory(t, &fakeFetcher{users: map[string]*casdoorsdk.User{}})

	_, err := dir.Lookup(context.Background(), "ghost")
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
