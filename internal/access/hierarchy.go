package access

import (
	"context"

	"github.com/praxiscrm/praxis/internal/models"
)

// roleChain returns the roles from the starting role up to the root, leaf
// first. Traversal is bounded by a visited set: a repeated role ID means the
// parent pointers form a loop, which is surfaced as ErrRoleCycle rather than
// walked forever.
func roleChain(ctx context.Context, store Store, roleID *string) ([]models.Role, error) {
	if roleID == nil {
		return nil, nil
	}

	visited := make(map[string]struct{})
	var chain []models.Role

	current := roleID
	for current != nil {
		if _, repeated := visited[*current]; repeated {
			return nil, ErrRoleCycle
		}
		visited[*current] = struct{}{}

		role, err := store.FindRole(ctx, *current)
		if err != nil {
			return nil, err
		}
		if role == nil {
			break
		}

		chain = append(chain, *role)
		current = role.ParentID
	}

	return chain, nil
}

// roleChainRootFirst returns the chain ordered root to leaf, the order config
// merging applies role layers in.
func roleChainRootFirst(ctx context.Context, store Store, roleID *string) ([]models.Role, error) {
	chain, err := roleChain(ctx, store, roleID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func roleIDs(chain []models.Role) []string {
	ids := make([]string, 0, len(chain))
	for _, role := range chain {
		ids = append(ids, role.ID)
	}
	return ids
}
