package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository.
type UserRepo struct {
	st    *state
	guard guard
	now   func() time.Time
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	defer r.guard(true)()
	for _, u := range r.st.users {
		if u.Username == user.Username {
			return domain.ErrDuplicate
		}
	}
	r.st.nextUserID++
	user.ID = r.st.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	r.st.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	defer r.guard(false)()
	u, ok := r.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	defer r.guard(false)()
	for _, u := range r.st.users {
		if u.Active && u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) ListActive(_ context.Context) ([]*entity.User, error) {
	defer r.guard(false)()
	out := r.filter(func(*entity.User) bool { return true })
	slices.SortFunc(out, func(a, b *entity.User) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *UserRepo) ListByRole(_ context.Context, role entity.Role) ([]*entity.User, error) {
	defer r.guard(false)()
	out := r.filter(func(u *entity.User) bool { return u.Role == role })
	slices.SortFunc(out, func(a, b *entity.User) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id int64, password string) error {
	defer r.guard(true)()
	u, ok := r.st.users[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.Password = password
	r.st.users[id] = u
	return nil
}

func (r *UserRepo) Deactivate(_ context.Context, id int64) error {
	defer r.guard(true)()
	u, ok := r.st.users[id]
	if !ok || !u.Active {
		return domain.ErrUserNotFound
	}
	u.Active = false
	r.st.users[id] = u
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int, error) {
	defer r.guard(false)()
	return len(r.st.users), nil
}

func (r *UserRepo) filter(keep func(*entity.User) bool) []*entity.User {
	out := make([]*entity.User, 0)
	for _, u := range r.st.users {
		if u.Active && keep(&u) {
			out = append(out, &u)
		}
	}
	return out
}
