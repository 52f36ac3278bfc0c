// Package repotest provides in-memory repositories for service and router
// tests. A Store behaves like the PostgreSQL schema: emails and slugs are
// unique, and deleting a user or article cascades.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"travelpoint/internal/common"
	"travelpoint/internal/domain/model"
	"travelpoint/internal/domain/repository"
)

type Store struct {
	mu       sync.RWMutex
	seq      int64
	now      func() time.Time
	users    map[int64]model.User
	articles map[int64]model.Article
	comments map[int64]model.Comment

	// FailWith, when set, is returned by every operation.
	FailWith error
}

func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    map[int64]model.User{},
		articles: map[int64]model.Article{},
		comments: map[int64]model.Comment{},
	}
}

func (s *Store) Users() repository.UserRepository       { return userRepo{s} }
func (s *Store) Articles() repository.ArticleRepository { return articleRepo{s} }
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

// tick returns strictly increasing timestamps so newest-first ordering is
// deterministic.
func (s *Store) tick() (int64, time.Time) {
	s.seq++
	return s.seq, s.now().Add(time.Duration(s.seq) * time.Microsecond)
}

func (s *Store) summary(id int64) *model.UserSummary {
	u := s.users[id]
	return &model.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID, user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r userRepo) UpdateRole(_ context.Context, id int64, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.users, id)
	for aid, a := range r.s.articles {
		if a.AuthorID == id {
			r.s.deleteArticleLocked(aid)
		}
	}
	for cid, c := range r.s.comments {
		if c.UserID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

type articleRepo struct{ s *Store }

func (r articleRepo) Create(_ context.Context, a *model.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.users[a.AuthorID]; !ok {
		return fmt.Errorf("articleRepo.Create: unknown author %d", a.AuthorID)
	}
	for _, existing := range r.s.articles {
		if existing.Slug == a.Slug {
			return fmt.Errorf("article with this slug already exists: %w", common.ErrConflict)
		}
	}
	a.ID, a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	a.Views, a.Likes = 0, 0
	stored := *a
	stored.Author, stored.CommentsCount = nil, nil
	r.s.articles[a.ID] = stored
	return nil
}

func (r articleRepo) Update(_ context.Context, a *model.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	stored, ok := r.s.articles[a.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Title = a.Title
	stored.Content = a.Content
	stored.Excerpt = a.Excerpt
	stored.ImageURL = a.ImageURL
	stored.Category = a.Category
	stored.ReadTime = a.ReadTime
	_, stored.UpdatedAt = r.s.tick()
	r.s.articles[a.ID] = stored
	a.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r articleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.articles[id]; !ok {
		return common.ErrNotFound
	}
	r.s.deleteArticleLocked(id)
	return nil
}

func (s *Store) deleteArticleLocked(id int64) {
	delete(s.articles, id)
	for cid, c := range s.comments {
		if c.ArticleID == id {
			delete(s.comments, cid)
		}
	}
}

func (r articleRepo) FindByID(_ context.Context, id int64) (*model.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	a, ok := r.s.articles[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	a.Author = r.s.summary(a.AuthorID)
	return &a, nil
}

func (r articleRepo) FindBySlug(_ context.Context, slug string) (*model.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	for _, a := range r.s.articles {
		if a.Slug == slug {
			a.Author = r.s.summary(a.AuthorID)
			return &a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Store) sortedArticles(category string) []model.Article {
	out := []model.Article{}
	for _, a := range s.articles {
		if category != "" && a.Category != category {
			continue
		}
		a.Author = s.summary(a.AuthorID)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r articleRepo) List(_ context.Context, f model.ArticleFilter) ([]model.Article, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, 0, r.s.FailWith
	}
	all := r.s.sortedArticles(f.Category)
	total := len(all)
	if f.Offset >= total {
		return []model.Article{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func (r articleRepo) ListWithCommentCounts(_ context.Context) ([]model.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	all := r.s.sortedArticles("")
	for i := range all {
		n := 0
		for _, c := range r.s.comments {
			if c.ArticleID == all[i].ID {
				n++
			}
		}
		all[i].CommentsCount = &n
	}
	return all, nil
}

func (r articleRepo) IncrementLikes(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return 0, r.s.FailWith
	}
	a, ok := r.s.articles[id]
	if !ok {
		return 0, common.ErrNotFound
	}
	a.Likes++
	r.s.articles[id] = a
	return a.Likes, nil
}

func (r articleRepo) AddViews(_ context.Context, id int64, n int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if a, ok := r.s.articles[id]; ok {
		a.Views += n
		r.s.articles[id] = a
	}
	return nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.articles[c.ArticleID]; !ok {
		return fmt.Errorf("commentRepo.Create: unknown article %d", c.ArticleID)
	}
	c.ID, c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	c.Content = c.Text
	stored := *c
	stored.User, stored.Article = nil, nil
	r.s.comments[c.ID] = stored
	return nil
}

func (r commentRepo) Update(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	stored, ok := r.s.comments[c.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Text = c.Text
	stored.Content = c.Text
	_, stored.UpdatedAt = r.s.tick()
	r.s.comments[c.ID] = stored
	c.Content = c.Text
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r commentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailWith != nil {
		return r.s.FailWith
	}
	if _, ok := r.s.comments[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) FindByID(_ context.Context, id int64) (*model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	c, ok := r.s.comments[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.User = r.s.summary(c.UserID)
	return &c, nil
}

func (s *Store) sortedComments(keep func(model.Comment) bool) []model.Comment {
	out := []model.Comment{}
	for _, c := range s.comments {
		if !keep(c) {
			continue
		}
		c.User = s.summary(c.UserID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r commentRepo) ListByArticle(_ context.Context, articleID int64) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	return r.s.sortedComments(func(c model.Comment) bool { return c.ArticleID == articleID }), nil
}

func (r commentRepo) ListAll(_ context.Context) ([]model.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.FailWith != nil {
		return nil, r.s.FailWith
	}
	out := r.s.sortedComments(func(model.Comment) bool { return true })
	for i := range out {
		a := r.s.articles[out[i].ArticleID]
		out[i].Article = &model.ArticleSummary{ID: a.ID, Title: a.Title}
	}
	return out, nil
}
