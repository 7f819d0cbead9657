package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

type userRepo struct {
	s  *Store
	tx bool
}

func (r *userRepo) Create(_ context.Context, u *user.User) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("users.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.ErrEmailDuplicate
		}
	}
	u.ID = r.s.data.nextID("users")
	r.s.data.users[u.ID] = copyUser(u)
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id uint) (*user.User, error) {
	defer r.s.guard(r.tx)()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) FindByIDs(_ context.Context, ids []uint) ([]*user.User, error) {
	defer r.s.guard(r.tx)()
	out := make([]*user.User, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if u, ok := r.s.data.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	defer r.s.guard(r.tx)()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, u *user.User) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.users[u.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	r.s.data.users[u.ID] = copyUser(u)
	return nil
}

func (r *userRepo) CountByRole(_ context.Context, role user.Role) (int64, error) {
	defer r.s.guard(r.tx)()
	var n int64
	for _, u := range r.s.data.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// uniqueIDs 去重并升序
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sortedKeys map的键升序
func sortedKeys[V any](m map[uint]V) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
