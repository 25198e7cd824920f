package config

import (
	"os"
	"strconv"
)

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func LoadConfig() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./data")

	cfg := &Config{
		DiscordToken:          os.Getenv("DISCORD_TOKEN"),
		SpotifyClientID:       os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret:   os.Getenv("SPOTIFY_CLIENT_SECRET"),
		DataDir:               dataDir,
		APIPort:               getenvInt("API_PORT", 8056),
		MaxTracks:             getenvInt("MAX_TRACKS", 10000),
		PlaylistWarnSize:      getenvInt("PLAYLIST_WARN_SIZE", 50),
		RateTracksPerMinute:   getenvInt("RATE_TRACKS_PER_MINUTE", 100),
		RateBurst:             getenvInt("RATE_BURST", 300),
		BotStatus:             getenv("BOT_STATUS", "online"),
		BotActivity:           getenv("BOT_ACTIVITY", "music"),
		RegisterCommandsOnBot: getenv("REGISTER_COMMANDS_ON_BOT", "false") == "true",
	}

	if cfg.DiscordToken == "" {
		return nil, ErrConfig("DISCORD_TOKEN required")
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)
	return cfg, nil
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
