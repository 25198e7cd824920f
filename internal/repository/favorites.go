package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrFavoriteNotFound is returned when no favorite matches the name.
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrFavoriteEmpty is returned when a favorite is created with a blank
	// name or query.
	ErrFavoriteEmpty = errors.New("favorite name and query must not be empty")
)

// FavoritesService manages per-guild named queries that can be replayed
// through the resolution pipeline. Names are trimmed before every lookup so
// stray whitespace from command input never creates unreachable rows.
type FavoritesService struct {
	repo *Repo
}

func NewFavoritesService(repo *Repo) *FavoritesService {
	return &FavoritesService{repo: repo}
}

func (f *FavoritesService) Create(ctx context.Context, guild, author, name, query string) error {
	name = strings.TrimSpace(name)
	query = strings.TrimSpace(query)
	if name == "" || query == "" {
		return ErrFavoriteEmpty
	}
	return f.repo.AddFavorite(ctx, &Favorite{
		GuildID: guild,
		Author:  author,
		Name:    name,
		Query:   query,
	})
}

func (f *FavoritesService) Remove(ctx context.Context, guild, name string) error {
	n, err := f.repo.RemoveFavorite(ctx, guild, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// Use looks up the favorite whose query the caller wants to enqueue.
func (f *FavoritesService) Use(ctx context.Context, guild, name string) (*Favorite, error) {
	fav, err := f.repo.FindFavorite(ctx, guild, strings.TrimSpace(name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFavoriteNotFound
	}
	if err != nil {
		return nil, err
	}
	return fav, nil
}

func (f *FavoritesService) List(ctx context.Context, guild string) ([]Favorite, error) {
	return f.repo.ListFavorites(ctx, guild)
}
