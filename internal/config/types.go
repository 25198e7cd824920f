package config

type Config struct {
	DiscordToken          string
	SpotifyClientID       string
	SpotifyClientSecret   string
	DataDir               string
	APIPort               int
	MaxTracks             int
	PlaylistWarnSize      int
	RateTracksPerMinute   int
	RateBurst             int
	BotStatus             string // online/dnd/idle
	BotActivity           string
	RegisterCommandsOnBot bool
}
