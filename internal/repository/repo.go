package repository

import (
	"context"
	"database/sql"
	"errors"
)

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertSettings(ctx context.Context, guild string) (*Settings, error) {
	_, _ = r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings(guild_id) VALUES (?)`, guild,
	)
	return r.GetSettings(ctx, guild)
}

func (r *Repo) GetSettings(ctx context.Context, guild string) (*Settings, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT guild_id, playlist_limit, max_tracks, default_queue_page_size,
	       queue_add_ephemeral, auto_announce_next_song
	FROM settings WHERE guild_id = ?`, guild)

	var s Settings
	var b1, b2 int
	if err := row.Scan(
		&s.GuildID,
		&s.PlaylistLimit,
		&s.MaxTracks,
		&s.DefaultQueuePageSize,
		&b1, // queue_add_ephemeral
		&b2, // auto_announce_next_song
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	s.QAddEphemeral = b1 != 0
	s.AutoAnnounceNext = b2 != 0
	return &s, nil
}

func (r *Repo) UpdateSettings(ctx context.Context, s *Settings) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings SET
		  playlist_limit=?,
		  max_tracks=?,
		  default_queue_page_size=?,
		  queue_add_ephemeral=?,
		  auto_announce_next_song=?
		WHERE guild_id=?`,
		s.PlaylistLimit, s.MaxTracks, s.DefaultQueuePageSize,
		boolToInt(s.QAddEphemeral), boolToInt(s.AutoAnnounceNext),
		s.GuildID,
	)
	return err
}

func (r *Repo) AddFavorite(ctx context.Context, f *Favorite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites(guild_id, author_id, name, query) VALUES (?,?,?,?)`,
		f.GuildID, f.Author, f.Name, f.Query,
	)
	return err
}

func (r *Repo) RemoveFavorite(ctx context.Context, guild, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE guild_id=? AND name=?`, guild, name)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) FindFavorite(ctx context.Context, guild, name string) (*Favorite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, guild_id, author_id, name, query FROM favorites WHERE guild_id=? AND name=?`, guild, name)
	var f Favorite
	if err := row.Scan(&f.ID, &f.GuildID, &f.Author, &f.Name, &f.Query); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *Repo) ListFavorites(ctx context.Context, guild string) ([]Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, guild_id, author_id, name, query FROM favorites WHERE guild_id=? ORDER BY name ASC`, guild)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.GuildID, &f.Author, &f.Name, &f.Query); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
