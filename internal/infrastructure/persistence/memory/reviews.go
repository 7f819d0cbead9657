package memory

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/favorite"
	"github.com/xiebiao/bookshop/internal/domain/review"
)

// ---------- reviews ----------

type reviewRepo struct {
	s  *Store
	tx bool
}

func (r *reviewRepo) Create(_ context.Context, rv *review.Review) error {
	defer r.s.guard(r.tx)()
	rv.ID = r.s.data.nextID("reviews")
	cp := *rv
	r.s.data.reviews[rv.ID] = &cp
	return nil
}

func (r *reviewRepo) FindByID(_ context.Context, id uint) (*review.Review, error) {
	defer r.s.guard(r.tx)()
	rv, ok := r.s.data.reviews[id]
	if !ok {
		return nil, review.ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (r *reviewRepo) ListByBook(_ context.Context, bookID uint) ([]*review.Review, error) {
	defer r.s.guard(r.tx)()
	out := make([]*review.Review, 0)
	for _, id := range sortedKeys(r.s.data.reviews) {
		if rv := r.s.data.reviews[id]; rv.BookID == bookID {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *reviewRepo) Update(_ context.Context, rv *review.Review) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.reviews[rv.ID]; !ok {
		return review.ErrReviewNotFound
	}
	cp := *rv
	r.s.data.reviews[rv.ID] = &cp
	return nil
}

func (r *reviewRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.reviews[id]; !ok {
		return review.ErrReviewNotFound
	}
	delete(r.s.data.reviews, id)
	return nil
}

func (r *reviewRepo) Ratings(_ context.Context, bookIDs []uint) (map[uint]review.Rating, error) {
	defer r.s.guard(r.tx)()
	wanted := make(map[uint]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}
	sums := make(map[uint]int)
	out := make(map[uint]review.Rating)
	for _, rv := range r.s.data.reviews {
		if !wanted[rv.BookID] {
			continue
		}
		sums[rv.BookID] += rv.Rating
		rt := out[rv.BookID]
		rt.Count++
		out[rv.BookID] = rt
	}
	for id, rt := range out {
		rt.Average = float64(sums[id]) / float64(rt.Count)
		out[id] = rt
	}
	return out, nil
}

// ---------- favorites ----------

type favoriteRepo struct {
	s  *Store
	tx bool
}

func (r *favoriteRepo) Create(_ context.Context, f *favorite.Favorite) error {
	defer r.s.guard(r.tx)()
	for _, existing := range r.s.data.favorites {
		if existing.UserID == f.UserID && existing.BookID == f.BookID {
			return favorite.ErrFavoriteDuplicate
		}
	}
	f.ID = r.s.data.nextID("favorites")
	cp := *f
	r.s.data.favorites[f.ID] = &cp
	return nil
}

func (r *favoriteRepo) FindByID(_ context.Context, id uint) (*favorite.Favorite, error) {
	defer r.s.guard(r.tx)()
	f, ok := r.s.data.favorites[id]
	if !ok {
		return nil, favorite.ErrFavoriteNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *favoriteRepo) ListByUser(_ context.Context, userID uint) ([]*favorite.Favorite, error) {
	defer r.s.guard(r.tx)()
	out := make([]*favorite.Favorite, 0)
	for _, id := range sortedKeys(r.s.data.favorites) {
		if f := r.s.data.favorites[id]; f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *favoriteRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.favorites[id]; !ok {
		return favorite.ErrFavoriteNotFound
	}
	delete(r.s.data.favorites, id)
	return nil
}

func (r *favoriteRepo) DeleteByUserAndBook(_ context.Context, userID, bookID uint) error {
	defer r.s.guard(r.tx)()
	for id, f := range r.s.data.favorites {
		if f.UserID == userID && f.BookID == bookID {
			delete(r.s.data.favorites, id)
			return nil
		}
	}
	return favorite.ErrFavoriteNotFound
}
