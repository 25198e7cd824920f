// Package spotify recognizes Spotify playlist and album identifiers, the
// slow-loading collection types the pipeline rate-limits, and fetches their
// metadata without resolving any tracks.
package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sonroyaalmerol/fairbeat/internal/loader"
)

type Client struct {
	raw *spotify.Client
}

func NewClientCredentials(clientID, clientSecret string) (*Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	cl := spotify.New(httpClient, spotify.WithRetry(true))
	return &Client{raw: cl}, nil
}

func (c *Client) Raw() *spotify.Client { return c.raw }

func ParseID(raw string) (typ string, id spotify.ID, err error) {
	if strings.HasPrefix(raw, "spotify:") {
		parts := strings.Split(raw, ":")
		if len(parts) == 3 {
			return parts[1], spotify.ID(parts[2]), nil
		}
		return "", "", fmt.Errorf("invalid spotify URI")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Host != "open.spotify.com" && u.Host != "www.open.spotify.com" {
		return "", "", fmt.Errorf("not a spotify URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid spotify URL path")
	}
	switch parts[0] {
	case "album", "playlist", "track", "artist":
		return parts[0], spotify.ID(parts[1]), nil
	}
	return "", "", fmt.Errorf("unsupported spotify type")
}

// Metadata implements loader.CollectionSource. Only playlists and albums
// count as slow-loading collections; tracks and everything unrecognized skip
// the gate.
func (c *Client) Metadata(ctx context.Context, identifier string) (*loader.CollectionInfo, bool) {
	typ, id, err := ParseID(identifier)
	if err != nil {
		return nil, false
	}

	switch typ {
	case "playlist":
		pl, err := c.raw.GetPlaylist(ctx, id)
		if err != nil {
			return nil, false
		}
		return &loader.CollectionInfo{
			Name:       pl.Name,
			TotalItems: int(pl.Tracks.Total),
		}, true
	case "album":
		alb, err := c.raw.GetAlbum(ctx, id)
		if err != nil {
			return nil, false
		}
		return &loader.CollectionInfo{
			Name:       alb.Name,
			TotalItems: int(alb.Tracks.Total),
		}, true
	}
	return nil, false
}
