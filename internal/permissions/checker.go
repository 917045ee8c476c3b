package permissions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/praxiscrm/praxis/internal/models"
)

// Checker evaluates direct application permissions by codename, consulting
// the user's own assignments and the role inheritance chain.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a permission checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// Check determines whether the user holds the permission codename, either
// directly or through any role in the inheritance chain. Unknown codenames
// resolve to false rather than an error.
func (c *Checker) Check(ctx context.Context, userID, codename string) (bool, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("permission checker: user id is required")
	}
	codename = strings.TrimSpace(codename)
	if codename == "" {
		return false, errors.New("permission checker: codename is required")
	}

	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		return false, fmt.Errorf("permission checker: load user: %w", err)
	}

	if user.IsSuperuser {
		return true, nil
	}

	for _, perm := range user.Permissions {
		if perm.Codename == codename {
			return true, nil
		}
	}

	return c.roleChainHasPermission(ctx, user.RoleID, codename)
}

// CodenamesForUser returns the distinct permission codenames granted to the
// user directly or through the role chain, sorted for stable output.
func (c *Checker) CodenamesForUser(ctx context.Context, userID string) ([]string, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("permission checker: user id is required")
	}

	var user models.User
	if err := c.db.WithContext(ctx).
		Preload("Permissions").
		First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("permission checker: load user: %w", err)
	}

	if user.IsSuperuser {
		all := GetAll()
		codenames := make([]string, 0, len(all))
		for codename := range all {
			codenames = append(codenames, codename)
		}
		sort.Strings(codenames)
		return codenames, nil
	}

	seen := make(map[string]struct{})
	for _, perm := range user.Permissions {
		seen[perm.Codename] = struct{}{}
	}

	visited := make(map[string]struct{})
	roleID := user.RoleID
	for roleID != nil {
		if _, repeated := visited[*roleID]; repeated {
			break
		}
		visited[*roleID] = struct{}{}

		var role models.Role
		err := c.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", *roleID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("permission checker: load role: %w", err)
		}

		for _, perm := range role.Permissions {
			seen[perm.Codename] = struct{}{}
		}
		roleID = role.ParentID
	}

	codenames := make([]string, 0, len(seen))
	for codename := range seen {
		codenames = append(codenames, codename)
	}
	sort.Strings(codenames)
	return codenames, nil
}

func (c *Checker) roleChainHasPermission(ctx context.Context, roleID *string, codename string) (bool, error) {
	visited := make(map[string]struct{})

	for roleID != nil {
		if _, repeated := visited[*roleID]; repeated {
			// Broken hierarchy data; stop rather than loop.
			return false, nil
		}
		visited[*roleID] = struct{}{}

		var role models.Role
		err := c.db.WithContext(ctx).Preload("Permissions").First(&role, "id = ?", *roleID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("permission checker: load role: %w", err)
		}

		for _, perm := range role.Permissions {
			if perm.Codename == codename {
				return true, nil
			}
		}
		roleID = role.ParentID
	}

	return false, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}
