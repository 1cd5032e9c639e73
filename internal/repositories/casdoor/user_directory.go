package casdoor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/assignment-service/internal/cache"
	"github.com/SAP-F-2025/assignment-service/internal/config"
	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

// userFetcher is the part of *casdoorsdk.Client the directory needs.
type userFetcher interface {
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
}

type UserDirectory struct {
	client userFetcher
	cache  *cache.CacheHelper
}

func NewClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
}

func NewUserDirectory(client *casdoorsdk.Client, cacheHelper *cache.CacheHelper) repositories.UserDirectory {
	return newUserDirectory(client, cacheHelper)
}

func newUserDirectory(client userFetcher, cacheHelper *cache.CacheHelper) *UserDirectory {
	return &UserDirectory{client: client, cache: cacheHelper}
}

// Lookup returns the Casdoor user, served from cache when possible.
func (d *UserDirectory) Lookup(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.cache.CacheOrExecute(ctx, "id:"+id, &user, cache.DirectoryCacheConfig.TTL, func() (interface{}, error) {
		casdoorUser, err := d.client.GetUserByUserId(id)
		if err != nil {
			return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
		}
		if casdoorUser == nil {
			return nil, fmt.Errorf("casdoor user %s: %w", id, repositories.ErrNotFound)
		}
		return FromCasdoorUser(casdoorUser), nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up user %s: %w", id, err)
	}
	return &user, nil
}

// ===== CONVERSION =====

// FromCasdoorUser converts a Casdoor user, e.g. from JWT claims, into an
// unverified profile.
func FromCasdoorUser(u *casdoorsdk.User) *models.User {
	name := u.DisplayName
	if name == "" {
		name = u.Name
	}
	return &models.User{
		ID:       u.Id,
		FullName: name,
		Email:    u.Email,
		Role:     MapRoles(u),
	}
}

// MapRoles picks the local role for a Casdoor user. Admin wins over
// everything else; users without a known role are students.
func MapRoles(u *casdoorsdk.User) models.UserRole {
	if u.IsAdmin {
		return models.RoleAdmin
	}

	var roles []models.UserRole
	for _, role := range u.Roles {
		if role == nil {
			continue
		}
		if mapped := mapRoleName(role.Name); mapped != "" && !slices.Contains(roles, mapped) {
			roles = append(roles, mapped)
		}
	}

	switch {
	case slices.Contains(roles, models.RoleAdmin):
		return models.RoleAdmin
	case slices.Contains(roles, models.RoleInstructor):
		return models.RoleInstructor
	default:
		return models.RoleStudent
	}
}

func mapRoleName(name string) models.UserRole {
	switch strings.ToLower(name) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "instructor", "teacher":
		return models.RoleInstructor
	case "student":
		return models.RoleStudent
	}
	return ""
}
