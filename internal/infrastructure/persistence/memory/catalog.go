package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/combo"
	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// ---------- books ----------

type bookRepo struct {
	s  *Store
	tx bool
}

func (r *bookRepo) Create(_ context.Context, b *book.Book) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("books.Create"); err != nil {
		return err
	}
	b.ID = r.s.data.nextID("books")
	r.s.data.books[b.ID] = copyBook(b)
	return nil
}

func (r *bookRepo) FindByID(_ context.Context, id uint) (*book.Book, error) {
	defer r.s.guard(r.tx)()
	b, ok := r.s.data.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return copyBook(b), nil
}

func (r *bookRepo) FindByIDs(_ context.Context, ids []uint) ([]*book.Book, error) {
	defer r.s.guard(r.tx)()
	out := make([]*book.Book, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if b, ok := r.s.data.books[id]; ok {
			out = append(out, copyBook(b))
		}
	}
	return out, nil
}

func (r *bookRepo) Update(_ context.Context, b *book.Book) error {
	defer r.s.guard(r.tx)()
	stored, ok := r.s.data.books[b.ID]
	if !ok {
		return book.ErrBookNotFound
	}
	c := copyBook(b)
	c.Stock = stored.Stock
	r.s.data.books[b.ID] = c
	return nil
}

func (r *bookRepo) SetStock(_ context.Context, id uint, stock int) error {
	defer r.s.guard(r.tx)()
	if stock < 0 {
		return book.ErrInvalidStock
	}
	b, ok := r.s.data.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	b.Stock = stock
	b.UpdatedAt = time.Now()
	return nil
}

// Delete 与MySQL外键一致:级联删除套装成分、评论和收藏
func (r *bookRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.books[id]; !ok {
		return book.ErrBookNotFound
	}
	delete(r.s.data.books, id)
	for _, c := range r.s.data.combos {
		kept := c.BookIDs[:0]
		for _, bid := range c.BookIDs {
			if bid != id {
				kept = append(kept, bid)
			}
		}
		c.BookIDs = kept
	}
	for rid, rv := range r.s.data.reviews {
		if rv.BookID == id {
			delete(r.s.data.reviews, rid)
		}
	}
	for fid, f := range r.s.data.favorites {
		if f.BookID == id {
			delete(r.s.data.favorites, fid)
		}
	}
	return nil
}

func (r *bookRepo) List(_ context.Context) ([]*book.Book, error) {
	defer r.s.guard(r.tx)()
	out := make([]*book.Book, 0, len(r.s.data.books))
	for _, id := range sortedKeys(r.s.data.books) {
		out = append(out, copyBook(r.s.data.books[id]))
	}
	return out, nil
}

func (r *bookRepo) Search(_ context.Context, p book.SearchParams) ([]*book.Book, error) {
	defer r.s.guard(r.tx)()
	keyword := strings.ToLower(p.Keyword)
	out := make([]*book.Book, 0)
	for _, id := range sortedKeys(r.s.data.books) {
		b := r.s.data.books[id]
		if keyword != "" &&
			!strings.Contains(strings.ToLower(b.Title), keyword) &&
			!strings.Contains(strings.ToLower(b.Author), keyword) {
			continue
		}
		if p.GenreID != 0 && b.GenreID != p.GenreID {
			continue
		}
		if p.MinPrice != nil && b.Price.LessThan(*p.MinPrice) {
			continue
		}
		if p.MaxPrice != nil && b.Price.GreaterThan(*p.MaxPrice) {
			continue
		}
		if p.PublishedAfter != nil && b.PublishedDate.Before(*p.PublishedAfter) {
			continue
		}
		out = append(out, copyBook(b))
	}

	less := func(i, j int) bool { return out[i].ID < out[j].ID }
	switch p.SortBy {
	case book.SortByTitle:
		less = func(i, j int) bool { return out[i].Title < out[j].Title }
	case book.SortByPrice:
		less = func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) }
	case book.SortByDate:
		less = func(i, j int) bool { return out[i].PublishedDate.Before(out[j].PublishedDate) }
	}
	if p.SortBy != "" && !p.Ascending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(out, less)
	return out, nil
}

func (r *bookRepo) ListLatest(_ context.Context, limit int) ([]*book.Book, error) {
	defer r.s.guard(r.tx)()
	out := make([]*book.Book, 0, len(r.s.data.books))
	for _, id := range sortedKeys(r.s.data.books) {
		out = append(out, copyBook(r.s.data.books[id]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PublishedDate.After(out[j].PublishedDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *bookRepo) Count(_ context.Context) (int64, error) {
	defer r.s.guard(r.tx)()
	return int64(len(r.s.data.books)), nil
}

func (r *bookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepo) UpdateStock(_ context.Context, id uint, delta int) error {
	defer r.s.guard(r.tx)()
	if err := r.s.injected("books.UpdateStock"); err != nil {
		return err
	}
	b, ok := r.s.data.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.Stock+delta < 0 {
		return book.ErrInsufficientStock
	}
	b.Stock += delta
	return nil
}

// ---------- genres ----------

type genreRepo struct {
	s  *Store
	tx bool
}

func (r *genreRepo) Create(_ context.Context, g *genre.Genre) error {
	defer r.s.guard(r.tx)()
	for _, existing := range r.s.data.genres {
		if strings.EqualFold(existing.Name, g.Name) {
			return genre.ErrGenreDuplicate
		}
	}
	g.ID = r.s.data.nextID("genres")
	cp := *g
	r.s.data.genres[g.ID] = &cp
	return nil
}

func (r *genreRepo) FindByID(_ context.Context, id uint) (*genre.Genre, error) {
	defer r.s.guard(r.tx)()
	g, ok := r.s.data.genres[id]
	if !ok {
		return nil, genre.ErrGenreNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *genreRepo) Update(_ context.Context, g *genre.Genre) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.genres[g.ID]; !ok {
		return genre.ErrGenreNotFound
	}
	for id, existing := range r.s.data.genres {
		if id != g.ID && strings.EqualFold(existing.Name, g.Name) {
			return genre.ErrGenreDuplicate
		}
	}
	cp := *g
	r.s.data.genres[g.ID] = &cp
	return nil
}

// Delete 所属图书变为未分类
func (r *genreRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.genres[id]; !ok {
		return genre.ErrGenreNotFound
	}
	delete(r.s.data.genres, id)
	for _, b := range r.s.data.books {
		if b.GenreID == id {
			b.GenreID = 0
		}
	}
	return nil
}

func (r *genreRepo) List(ctx context.Context) ([]*genre.Genre, error) {
	return r.Search(ctx, "")
}

func (r *genreRepo) Search(_ context.Context, keyword string) ([]*genre.Genre, error) {
	defer r.s.guard(r.tx)()
	keyword = strings.ToLower(keyword)
	out := make([]*genre.Genre, 0, len(r.s.data.genres))
	for _, id := range sortedKeys(r.s.data.genres) {
		g := r.s.data.genres[id]
		if keyword != "" && !strings.Contains(strings.ToLower(g.Name), keyword) {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

// ---------- combos ----------

type comboRepo struct {
	s  *Store
	tx bool
}

func (r *comboRepo) Create(_ context.Context, c *combo.Combo) error {
	defer r.s.guard(r.tx)()
	c.ID = r.s.data.nextID("combos")
	r.s.data.combos[c.ID] = copyCombo(c)
	return nil
}

func (r *comboRepo) FindByID(_ context.Context, id uint) (*combo.Combo, error) {
	defer r.s.guard(r.tx)()
	c, ok := r.s.data.combos[id]
	if !ok {
		return nil, combo.ErrComboNotFound
	}
	return copyCombo(c), nil
}

func (r *comboRepo) FindByIDs(_ context.Context, ids []uint) ([]*combo.Combo, error) {
	defer r.s.guard(r.tx)()
	out := make([]*combo.Combo, 0, len(ids))
	for _, id := range uniqueIDs(ids) {
		if c, ok := r.s.data.combos[id]; ok {
			out = append(out, copyCombo(c))
		}
	}
	return out, nil
}

func (r *comboRepo) Update(_ context.Context, c *combo.Combo) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.combos[c.ID]; !ok {
		return combo.ErrComboNotFound
	}
	r.s.data.combos[c.ID] = copyCombo(c)
	return nil
}

func (r *comboRepo) Delete(_ context.Context, id uint) error {
	defer r.s.guard(r.tx)()
	if _, ok := r.s.data.combos[id]; !ok {
		return combo.ErrComboNotFound
	}
	delete(r.s.data.combos, id)
	return nil
}

func (r *comboRepo) List(_ context.Context) ([]*combo.Combo, error) {
	defer r.s.guard(r.tx)()
	out := make([]*combo.Combo, 0, len(r.s.data.combos))
	for _, id := range sortedKeys(r.s.data.combos) {
		out = append(out, copyCombo(r.s.data.combos[id]))
	}
	return out, nil
}

func (r *comboRepo) Count(_ context.Context) (int64, error) {
	defer r.s.guard(r.tx)()
	return int64(len(r.s.data.combos)), nil
}
