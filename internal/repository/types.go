package repository

import "database/sql"

type Repo struct {
	db *sql.DB
}

type Settings struct {
	GuildID              string
	PlaylistLimit        int
	MaxTracks            int
	DefaultQueuePageSize int
	QAddEphemeral        bool
	AutoAnnounceNext     bool
}

type Favorite struct {
	ID      int64
	GuildID string
	Author  string
	Name    string
	Query   string
}
