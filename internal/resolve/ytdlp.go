// Package resolve provides the yt-dlp backed resolver. It implements the
// loader's four-outcome contract: one track, a collection, no match, or a
// classified failure.
package resolve

import (
	"context"
	"strings"
	"sync"
	"time"

	ytdlp "github.com/lrstanley/go-ytdlp"

	"github.com/sonroyaalmerol/fairbeat/internal/loader"
	"github.com/sonroyaalmerol/fairbeat/internal/queue"
)

type YTDLP struct {
	installOnce sync.Once
}

func NewYTDLP() *YTDLP {
	return &YTDLP{}
}

func (y *YTDLP) Resolve(ctx context.Context, identifier string) (*loader.LoadResult, error) {
	y.installOnce.Do(func() {
		// availability issues surface on the first Run below
		ytdlp.MustInstall(ctx, nil)
	})

	target := strings.TrimSpace(identifier)
	if target == "" {
		return &loader.LoadResult{Type: loader.LoadTypeEmpty}, nil
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "ytsearch1:" + target
	}

	cmd := ytdlp.New().
		Format("ba[acodec^=opus]/ba[ext=m4a]/bestaudio/best").
		NoCheckCertificates().
		DumpJSON()

	res, err := cmd.Run(ctx, target)
	if err != nil {
		return nil, classify(err)
	}

	infos, err := res.GetExtractedInfo()
	if err != nil {
		return nil, loader.SuspiciousError("parse yt-dlp output", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return &loader.LoadResult{Type: loader.LoadTypeEmpty}, nil
	}
	ext := infos[0]

	if len(ext.Entries) > 0 {
		tracks := make([]queue.Track, 0, len(ext.Entries))
		for _, e := range ext.Entries {
			if e == nil {
				continue
			}
			tracks = append(tracks, toTrack(e))
		}
		if len(tracks) == 0 {
			return &loader.LoadResult{Type: loader.LoadTypeEmpty}, nil
		}
		// a one-entry search container is a single track, not a collection
		if len(tracks) == 1 && strings.HasPrefix(target, "ytsearch") {
			return &loader.LoadResult{Type: loader.LoadTypeTrack, Track: tracks[0]}, nil
		}
		return &loader.LoadResult{
			Type:         loader.LoadTypePlaylist,
			PlaylistName: str(ext.Title),
			Tracks:       tracks,
		}, nil
	}

	return &loader.LoadResult{Type: loader.LoadTypeTrack, Track: toTrack(ext)}, nil
}

func toTrack(e *ytdlp.ExtractedInfo) queue.Track {
	u := str(e.WebpageURL)
	if u == "" {
		u = str(e.URL)
	}
	thumb := ""
	for _, t := range e.Thumbnails {
		if t != nil && t.URL != "" {
			thumb = t.URL
		}
	}
	return queue.Track{
		Identifier: e.ID,
		Title:      str(e.Title),
		Artist:     str(e.Uploader),
		URL:        u,
		Duration:   time.Duration(fl(e.Duration) * float64(time.Second)),
		IsStream:   bl(e.IsLive),
		Thumbnail:  thumb,
	}
}

// classify maps yt-dlp failures the user can act on to common errors;
// everything else stays suspicious.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "Unsupported URL"):
		return loader.CommonError("that link points at something I can't play")
	case strings.Contains(msg, "Private video"),
		strings.Contains(msg, "Video unavailable"):
		return loader.CommonError("that video is unavailable")
	}
	return loader.SuspiciousError("yt-dlp failed", err)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fl(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func bl(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
