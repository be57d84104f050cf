package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// MissPolicy decides what happens when a requested name is not registered
type MissPolicy int

const (
	// CreateOnMiss builds a new entity for unknown names
	CreateOnMiss MissPolicy = iota
	// RejectOnMiss fails with the list of registered names
	RejectOnMiss
)

func (p MissPolicy) String() string {
	switch p {
	case CreateOnMiss:
		return "create-on-miss"
	case RejectOnMiss:
		return "reject-on-miss"
	default:
		return fmt.Sprintf("MissPolicy(%d)", int(p))
	}
}

// resolver turns request names into entities of one kind
type resolver[E any, T interface {
	*E
	catalog.Named
}] struct {
	field  string
	policy MissPolicy
	create func(name string) (T, error)
	reject func(name string, available []string) error
}

// resolve returns the entities for names in request order, with repeated
// names collapsed, and separately the entities it had to create. Created
// entities are not added to repo.
func (r resolver[E, T]) resolve(ctx context.Context, repo catalog.NamedRepository[T], names []string) (resolved, created []T, err error) {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, nil, catalog.NewValidationError(r.field, "names must not be empty")
		}
		if containsName(resolved, name) {
			continue
		}

		found, err := repo.FindByName(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve %s %q: %w", r.field, name, err)
		}
		if found != nil {
			resolved = append(resolved, found)
			continue
		}

		switch r.policy {
		case RejectOnMiss:
			all, err := repo.FindAll(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("list %s: %w", r.field, err)
			}
			return nil, nil, r.reject(name, catalog.Names(all))
		default:
			entity, err := r.create(name)
			if err != nil {
				return nil, nil, err
			}
			resolved = append(resolved, entity)
			created = append(created, entity)
		}
	}
	return resolved, created, nil
}

func containsName[T catalog.Named](items []T, name string) bool {
	for _, item := range items {
		if item.HasName(name) {
			return true
		}
	}
	return false
}
