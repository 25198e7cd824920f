package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/fairbeat/internal/config"
	"github.com/sonroyaalmerol/fairbeat/internal/loader"
	plib "github.com/sonroyaalmerol/fairbeat/internal/player"
	"github.com/sonroyaalmerol/fairbeat/internal/queue"
	"github.com/sonroyaalmerol/fairbeat/internal/repository"
)

type CommandHandler struct {
	cfg  *config.Config
	repo *repository.Repo
	pm   *plib.Manager
	favs *repository.FavoritesService
}

func NewCommandHandler(cfg *config.Config, repo *repository.Repo, pm *plib.Manager, favs *repository.FavoritesService) *CommandHandler {
	return &CommandHandler{cfg: cfg, repo: repo, pm: pm, favs: favs}
}

func (h *CommandHandler) RegisterCommands(s *discordgo.Session, appID string, guildID string) error {
	start := time.Now()
	slog.Info("registering application commands", "appID", appID, "guildID", guildID)

	cmds := []*discordgo.ApplicationCommand{
		{
			Name:        "play",
			Description: "Queue a track, playlist or search result",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "query", Description: "query or URL", Type: discordgo.ApplicationCommandOptionString, Required: true},
				{Name: "next", Description: "add to front of queue", Type: discordgo.ApplicationCommandOptionBoolean},
				{Name: "start", Description: "start position, seconds or 1m30s", Type: discordgo.ApplicationCommandOptionString},
				{Name: "hidden", Description: "queue silently", Type: discordgo.ApplicationCommandOptionBoolean},
			},
		},
		{Name: "skip", Description: "skip the current track"},
		{Name: "pause", Description: "pause playback"},
		{Name: "resume", Description: "resume playback"},
		{Name: "stop", Description: "stop playback and clear the queue"},
		{Name: "clear", Description: "clear the queue"},
		{Name: "now-playing", Description: "show the currently playing track"},
		{Name: "shuffle", Description: "toggle shuffled playback order"},
		{Name: "reshuffle", Description: "reroll the shuffled order"},
		{
			Name:        "repeat",
			Description: "set the repeat mode",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name: "mode", Description: "repeat mode", Type: discordgo.ApplicationCommandOptionString, Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "none", Value: "none"},
						{Name: "single", Value: "single"},
						{Name: "all", Value: "all"},
					},
				},
			},
		},
		{
			Name:        "queue",
			Description: "show the current queue",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "page", Description: "page of queue to show [default: 1]", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "page-size", Description: "how many items per page [default: 10, max: 30]", Type: discordgo.ApplicationCommandOptionInteger},
			},
		},
		{
			Name:        "remove",
			Description: "remove your tracks from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{Name: "position", Description: "position of the track to remove [default: 1]", Type: discordgo.ApplicationCommandOptionInteger},
				{Name: "range", Description: "number of tracks to remove [default: 1]", Type: discordgo.ApplicationCommandOptionInteger},
			},
		},
		{
			Name:        "favorites",
			Description: "Manage favorites",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "use",
					Description: "use a favorite",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "name", Description: "favorite name", Type: discordgo.ApplicationCommandOptionString, Required: true},
						{Name: "next", Description: "front of queue", Type: discordgo.ApplicationCommandOptionBoolean},
						{Name: "hidden", Description: "queue silently", Type: discordgo.ApplicationCommandOptionBoolean},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "list favorites",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "create favorite",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "name", Description: "name", Type: discordgo.ApplicationCommandOptionString, Required: true},
						{Name: "query", Description: "query", Type: discordgo.ApplicationCommandOptionString, Required: true},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "remove favorite",
					Options: []*discordgo.ApplicationCommandOption{
						{Name: "name", Description: "name", Type: discordgo.ApplicationCommandOptionString, Required: true},
					},
				},
			},
		},
		{
			Name:        "config",
			Description: "Configure bot settings",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "get", Description: "show settings"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set-playlist-limit", Description: "set max playlist add", Options: []*discordgo.ApplicationCommandOption{
					{Name: "limit", Description: "max tracks", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
				}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set-max-tracks", Description: "set the queue capacity ceiling", Options: []*discordgo.ApplicationCommandOption{
					{Name: "limit", Description: "max queued tracks", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
				}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set-queue-add-response-hidden", Description: "ephemeral queue add responses", Options: []*discordgo.ApplicationCommandOption{
					{Name: "value", Description: "true/false", Type: discordgo.ApplicationCommandOptionBoolean, Required: true},
				}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set-auto-announce-next-song", Description: "announce next track on skip", Options: []*discordgo.ApplicationCommandOption{
					{Name: "value", Description: "true/false", Type: discordgo.ApplicationCommandOptionBoolean, Required: true},
				}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set-default-queue-page-size", Description: "queue page size", Options: []*discordgo.ApplicationCommandOption{
					{Name: "page_size", Description: "1-30", Type: discordgo.ApplicationCommandOptionInteger, Required: true},
				}},
			},
		},
	}

	for _, c := range cmds {
		if _, err := s.ApplicationCommandCreate(appID, guildID, c); err != nil {
			slog.Error("failed to create application command", "guildID", guildID, "command", c.Name, "err", err)
			return err
		}
		slog.Debug("registered command", "guildID", guildID, "command", c.Name)
	}

	slog.Info("finished registering commands", "guildID", guildID, "count", len(cmds), "took", time.Since(start))
	return nil
}

func (h *CommandHandler) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		slog.Debug("interaction: application command", "guildID", i.GuildID, "userID", userIDOf(i), "command", i.ApplicationCommandData().Name)
		h.handleChatCommand(s, i)
	default:
		slog.Debug("interaction: ignored type", "type", i.Type, "guildID", i.GuildID)
	}
}

func (h *CommandHandler) handleChatCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "play":
		h.cmdPlay(s, i)
	case "skip":
		h.cmdSkip(s, i)
	case "pause":
		h.cmdPause(s, i)
	case "resume":
		h.cmdResume(s, i)
	case "stop":
		h.cmdStop(s, i)
	case "clear":
		h.cmdClear(s, i)
	case "now-playing":
		h.cmdNowPlaying(s, i)
	case "shuffle":
		h.cmdShuffle(s, i)
	case "reshuffle":
		h.cmdReshuffle(s, i)
	case "repeat":
		h.cmdRepeat(s, i)
	case "queue":
		h.cmdQueue(s, i)
	case "remove":
		h.cmdRemove(s, i)
	case "favorites":
		h.cmdFavorites(s, i)
	case "config":
		h.cmdConfig(s, i)
	default:
		slog.Debug("unknown command", "name", data.Name, "guildID", i.GuildID, "userID", userIDOf(i))
	}
}

func (h *CommandHandler) reply(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := uint64(0)
	if ephemeral {
		flags = 1 << 6
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlags(flags),
		},
	}); err != nil {
		slog.Warn("reply failed", "guildID", i.GuildID, "userID", userIDOf(i), "err", err)
	}
}

func (h *CommandHandler) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) {
	flags := uint64(0)
	if ephemeral {
		flags = 1 << 6
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlags(flags),
		},
	}); err != nil {
		slog.Warn("defer reply failed", "guildID", i.GuildID, "userID", userIDOf(i), "err", err)
	}
}

func (h *CommandHandler) enqueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	query string,
	next bool,
	offset time.Duration,
	hidden bool,
) {
	guildID := i.GuildID
	memberID := userIDOf(i)

	ctx := context.Background()
	if _, err := h.repo.UpsertSettings(ctx, guildID); err != nil {
		slog.Warn("upsert settings failed", "guildID", guildID, "err", err)
	}
	set, err := h.repo.GetSettings(ctx, guildID)
	if err != nil {
		slog.Error("get settings failed", "guildID", guildID, "err", err)
		h.reply(s, i, "internal error", true)
		return
	}

	ephemeral := hidden || set.QAddEphemeral
	h.deferReply(s, i, ephemeral)

	sink := newInteractionSink(s, i, displayNameOf(i), ephemeral)
	req := loader.NewRequest(query, memberID, displayNameOf(i), sink)
	req.Priority = next
	req.Quiet = hidden
	req.StartOffset = offset
	req.PlaylistLimit = set.PlaylistLimit
	req.MaxTracks = set.MaxTracks

	if hidden {
		// A silent add never edits the deferred response, so acknowledge it
		// here and let any failure notices arrive as followups.
		sink.Reply("request queued")
	}

	sess := h.pm.Get(guildID)
	sess.Loader.Submit(ctx, req)
	slog.Info("cmd play", "guildID", guildID, "userID", memberID, "query", query, "next", next, "hidden", hidden)
}

func (h *CommandHandler) cmdPlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var query, start string
	var next, hidden bool
	for _, o := range i.ApplicationCommandData().Options {
		switch o.Name {
		case "query":
			query = o.StringValue()
		case "next":
			next = o.BoolValue()
		case "start":
			start = o.StringValue()
		case "hidden":
			hidden = o.BoolValue()
		}
	}
	offset, err := parseOffset(start)
	if err != nil {
		h.reply(s, i, "invalid start position", true)
		return
	}
	h.enqueue(s, i, query, next, offset, hidden)
}

func (h *CommandHandler) cmdSkip(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Peek(i.GuildID)
	if sess == nil || sess.Player.Status() == plib.StatusIdle {
		h.reply(s, i, "not currently playing", true)
		return
	}
	next := sess.Player.Skip()
	slog.Info("cmd skip", "guildID", i.GuildID, "userID", userIDOf(i))

	set, err := h.repo.GetSettings(context.Background(), i.GuildID)
	if next != nil && err == nil && set != nil && set.AutoAnnounceNext {
		h.reply(s, i, fmt.Sprintf("skipped, now playing **%s**", next.Track().Title), false)
		return
	}
	h.reply(s, i, "skipped", false)
}

func (h *CommandHandler) cmdPause(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Peek(i.GuildID)
	if sess == nil || !sess.Player.Pause() {
		h.reply(s, i, "not currently playing", true)
		return
	}
	slog.Info("cmd pause", "guildID", i.GuildID, "userID", userIDOf(i))
	h.reply(s, i, "paused", false)
}

func (h *CommandHandler) cmdResume(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Peek(i.GuildID)
	if sess == nil || !sess.Player.Resume() {
		h.reply(s, i, "nothing to resume", true)
		return
	}
	slog.Info("cmd resume", "guildID", i.GuildID, "userID", userIDOf(i))
	h.reply(s, i, "resumed", false)
}

func (h *CommandHandler) cmdStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Peek(i.GuildID)
	if sess == nil {
		h.reply(s, i, "nothing is playing", true)
		return
	}
	sess.Player.Stop()
	slog.Info("cmd stop", "guildID", i.GuildID, "userID", userIDOf(i))
	h.reply(s, i, "stopped and cleared the queue", false)
}

func (h *CommandHandler) cmdClear(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Get(i.GuildID)
	sess.Player.Queue().Clear()
	slog.Info("cmd clear queue", "guildID", i.GuildID, "userID", userIDOf(i))
	h.reply(s, i, "queue cleared", false)
}

func (h *CommandHandler) cmdNowPlaying(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess := h.pm.Peek(i.GuildID)
	if sess == nil {
		h.reply(s, i, "nothing is currently playing", true)
		return
	}
	cur := sess.Player.NowPlaying()
	if cur == nil {
		h.reply(s, i, "nothing is currently playing", true)
		return
	}
	t := cur.Track()
	length := prettyDuration(t.Duration)
	if t.IsStream {
		length = "live"
	}
	h.reply(s, i, fmt.Sprintf("**%s** [%s] requested by <@%s>", t.Title, length, cur.Requester()), false)
}

func (h *CommandHandler) cmdShuffle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	q := h.pm.Get(i.GuildID).Player.Queue()
	on := !q.Shuffle()
	q.SetShuffle(on)
	slog.Info("cmd shuffle", "guildID", i.GuildID, "userID", userIDOf(i), "on", on)
	if on {
		h.reply(s, i, "shuffle on", false)
	} else {
		h.reply(s, i, "shuffle off", false)
	}
}

func (h *CommandHandler) cmdReshuffle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	q := h.pm.Get(i.GuildID).Player.Queue()
	if !q.Shuffle() {
		h.reply(s, i, "shuffle is off", true)
		return
	}
	q.Reshuffle()
	slog.Info("cmd reshuffle", "guildID", i.GuildID, "userID", userIDOf(i))
	h.reply(s, i, "rerolled the shuffle order", false)
}

func (h *CommandHandler) cmdRepeat(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var mode string
	for _, o := range i.ApplicationCommandData().Options {
		if o.Name == "mode" {
			mode = o.StringValue()
		}
	}
	q := h.pm.Get(i.GuildID).Player.Queue()
	q.SetRepeat(queue.ParseRepeatMode(mode))
	slog.Info("cmd repeat", "guildID", i.GuildID, "userID", userIDOf(i), "mode", mode)
	h.reply(s, i, fmt.Sprintf("repeat set to %s", q.Repeat()), false)
}

func (h *CommandHandler) cmdQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if _, err := h.repo.UpsertSettings(ctx, i.GuildID); err != nil {
		slog.Warn("upsert settings failed", "guildID", i.GuildID, "err", err)
	}
	set, err := h.repo.GetSettings(ctx, i.GuildID)
	if err != nil {
		slog.Error("get settings failed", "guildID", i.GuildID, "err", err)
		h.reply(s, i, "failed to fetch settings", true)
		return
	}

	page := 1
	pageSize := set.DefaultQueuePageSize
	for _, o := range i.ApplicationCommandData().Options {
		if o.Name == "page" {
			page = int(o.IntValue())
		} else if o.Name == "page-size" {
			pageSize = int(o.IntValue())
		}
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 30 {
		pageSize = 30
	}

	sess := h.pm.Get(i.GuildID)
	q := sess.Player.Queue()

	var b strings.Builder
	if cur := sess.Player.NowPlaying(); cur != nil {
		b.WriteString(fmt.Sprintf("now playing: **%s** (<@%s>)\n", cur.Track().Title, cur.Requester()))
	}

	start := (page - 1) * pageSize
	entries := q.Range(start, start+pageSize)
	if len(entries) == 0 && b.Len() == 0 {
		h.reply(s, i, "the queue is empty", true)
		return
	}
	for n, e := range entries {
		t := e.Track()
		length := prettyDuration(t.Duration)
		if t.IsStream {
			length = "live"
		}
		marker := ""
		if e.Priority() {
			marker = " *"
		}
		b.WriteString(fmt.Sprintf("%d. **%s** [%s] <@%s>%s\n", start+n+1, t.Title, length, e.Requester(), marker))
	}
	b.WriteString(fmt.Sprintf("\n%d tracks", q.Size()))
	if streams := q.StreamCount(); streams > 0 {
		b.WriteString(fmt.Sprintf(", %d live", streams))
	}
	b.WriteString(fmt.Sprintf(", %s total", prettyDuration(q.Duration())))

	slog.Debug("cmd queue", "guildID", i.GuildID, "userID", userIDOf(i), "page", page, "pageSize", pageSize)
	h.reply(s, i, b.String(), true)
}

func (h *CommandHandler) cmdRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	pos := 1
	cnt := 1
	for _, o := range i.ApplicationCommandData().Options {
		if o.Name == "position" {
			pos = int(o.IntValue())
		} else if o.Name == "range" {
			cnt = int(o.IntValue())
		}
	}
	if pos < 1 || cnt < 1 {
		h.reply(s, i, "position and range must be at least 1", true)
		return
	}

	q := h.pm.Get(i.GuildID).Player.Queue()
	entries := q.Range(pos-1, pos-1+cnt)
	if len(entries) == 0 {
		h.reply(s, i, "nothing at that position", true)
		return
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID())
	}
	if !q.IsUserTrackOwner(userIDOf(i), ids) {
		h.reply(s, i, "you can only remove your own tracks", true)
		return
	}
	removed := q.RemoveByIDs(ids)
	slog.Info("cmd remove", "guildID", i.GuildID, "userID", userIDOf(i), "pos", pos, "cnt", cnt, "removed", removed)
	h.reply(s, i, fmt.Sprintf("removed %d tracks", removed), false)
}

func (h *CommandHandler) cmdFavorites(s *discordgo.Session, i *discordgo.InteractionCreate) {
	sub := i.ApplicationCommandData().Options[0]
	ctx := context.Background()
	switch sub.Name {
	case "create":
		var name, query string
		for _, o := range sub.Options {
			if o.Name == "name" {
				name = o.StringValue()
			} else if o.Name == "query" {
				query = o.StringValue()
			}
		}
		if err := h.favs.Create(ctx, i.GuildID, userIDOf(i), name, query); err != nil {
			if errors.Is(err, repository.ErrFavoriteEmpty) {
				h.reply(s, i, "favorite name and query must not be empty", true)
				return
			}
			if strings.Contains(err.Error(), "UNIQUE") {
				h.reply(s, i, "a favorite with that name already exists", true)
				return
			}
			slog.Warn("favorite create failed", "guildID", i.GuildID, "userID", userIDOf(i), "name", name, "err", err)
			h.reply(s, i, "failed to create favorite", true)
			return
		}
		slog.Info("favorite created", "guildID", i.GuildID, "userID", userIDOf(i), "name", name)
		h.reply(s, i, "favorite created", false)
	case "remove":
		var name string
		for _, o := range sub.Options {
			if o.Name == "name" {
				name = o.StringValue()
			}
		}
		f, err := h.favs.Use(ctx, i.GuildID, name)
		if err != nil {
			h.reply(s, i, "no favorite with that name exists", true)
			return
		}
		if f.Author != userIDOf(i) {
			h.reply(s, i, "you can only remove your own favorites", true)
			return
		}
		if err := h.favs.Remove(ctx, i.GuildID, name); err != nil {
			slog.Warn("favorite remove failed", "guildID", i.GuildID, "userID", userIDOf(i), "name", name, "err", err)
			h.reply(s, i, "failed to remove favorite", true)
			return
		}
		slog.Info("favorite removed", "guildID", i.GuildID, "userID", userIDOf(i), "name", name)
		h.reply(s, i, "favorite removed", false)
	case "list":
		items, err := h.favs.List(ctx, i.GuildID)
		if err != nil {
			slog.Warn("favorite list failed", "guildID", i.GuildID, "err", err)
		}
		if len(items) == 0 {
			h.reply(s, i, "there aren't any favorites yet", false)
			return
		}
		var b strings.Builder
		for _, f := range items {
			b.WriteString(fmt.Sprintf("- %s: %s (<@%s>)\n", f.Name, f.Query, f.Author))
		}
		slog.Debug("favorite list", "guildID", i.GuildID, "count", len(items))
		h.reply(s, i, b.String(), true)
	case "use":
		var name string
		var next, hidden bool
		for _, o := range sub.Options {
			switch o.Name {
			case "name":
				name = o.StringValue()
			case "next":
				next = o.BoolValue()
			case "hidden":
				hidden = o.BoolValue()
			}
		}
		f, err := h.favs.Use(ctx, i.GuildID, name)
		if err != nil {
			h.reply(s, i, "no favorite with that name exists", true)
			return
		}
		slog.Info("favorite used", "guildID", i.GuildID, "userID", userIDOf(i), "name", name)
		h.enqueue(s, i, f.Query, next, 0, hidden)
	}
}

func (h *CommandHandler) cmdConfig(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	if _, err := h.repo.UpsertSettings(ctx, i.GuildID); err != nil {
		slog.Warn("upsert settings failed", "guildID", i.GuildID, "err", err)
	}
	sub := i.ApplicationCommandData().Options[0]
	switch sub.Name {
	case "get":
		set, err := h.repo.GetSettings(ctx, i.GuildID)
		if err != nil {
			slog.Error("get settings failed", "guildID", i.GuildID, "err", err)
			h.reply(s, i, "failed to fetch config", true)
			return
		}
		msg := fmt.Sprintf(
			"Config\n- Playlist limit: %d\n- Max queued tracks: %d\n- Auto announce next track: %t\n- Add to queue responses ephemeral: %t\n- Default queue page size: %d",
			set.PlaylistLimit,
			set.MaxTracks,
			set.AutoAnnounceNext,
			set.QAddEphemeral,
			set.DefaultQueuePageSize,
		)
		slog.Debug("config get", "guildID", i.GuildID)
		h.reply(s, i, msg, false)
	case "set-playlist-limit":
		limit := int(sub.Options[0].IntValue())
		if limit < 1 {
			h.reply(s, i, "invalid limit", true)
			return
		}
		set, _ := h.repo.GetSettings(ctx, i.GuildID)
		set.PlaylistLimit = limit
		_ = h.repo.UpdateSettings(ctx, set)
		slog.Info("config updated", "guildID", i.GuildID, "key", "PlaylistLimit", "value", limit)
		h.reply(s, i, "limit updated", false)
	case "set-max-tracks":
		limit := int(sub.Options[0].IntValue())
		if limit < 1 {
			h.reply(s, i, "invalid limit", true)
			return
		}
		set, _ := h.repo.GetSettings(ctx, i.GuildID)
		set.MaxTracks = limit
		_ = h.repo.UpdateSettings(ctx, set)
		slog.Info("config updated", "guildID", i.GuildID, "key", "MaxTracks", "value", limit)
		h.reply(s, i, "queue capacity updated", false)
	case "set-queue-add-response-hidden":
		val := sub.Options[0].BoolValue()
		set, _ := h.repo.GetSettings(ctx, i.GuildID)
		set.QAddEphemeral = val
		_ = h.repo.UpdateSettings(ctx, set)
		slog.Info("config updated", "guildID", i.GuildID, "key", "QAddEphemeral", "value", val)
		h.reply(s, i, "queue add notification setting updated", false)
	case "set-auto-announce-next-song":
		val := sub.Options[0].BoolValue()
		set, _ := h.repo.GetSettings(ctx, i.GuildID)
		set.AutoAnnounceNext = val
		_ = h.repo.UpdateSettings(ctx, set)
		slog.Info("config updated", "guildID", i.GuildID, "key", "AutoAnnounceNext", "value", val)
		h.reply(s, i, "auto announce setting updated", false)
	case "set-default-queue-page-size":
		val := int(sub.Options[0].IntValue())
		if val < 1 || val > 30 {
			h.reply(s, i, "page size must be between 1 and 30", true)
			return
		}
		set, _ := h.repo.GetSettings(ctx, i.GuildID)
		set.DefaultQueuePageSize = val
		_ = h.repo.UpdateSettings(ctx, set)
		slog.Info("config updated", "guildID", i.GuildID, "key", "DefaultQueuePageSize", "value", val)
		h.reply(s, i, "default queue page size updated", false)
	}
}

// parseOffset accepts a bare number of seconds or a Go duration string.
func parseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if sec, err := strconv.Atoi(s); err == nil {
		if sec < 0 {
			return 0, fmt.Errorf("negative offset")
		}
		return time.Duration(sec) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return d, nil
}

func prettyDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

func userIDOf(i *discordgo.InteractionCreate) string {
	if i == nil || i.Member == nil || i.Member.User == nil {
		return ""
	}
	return i.Member.User.ID
}

func displayNameOf(i *discordgo.InteractionCreate) string {
	if i == nil || i.Member == nil {
		return ""
	}
	if i.Member.Nick != "" {
		return i.Member.Nick
	}
	if i.Member.User != nil {
		return i.Member.User.Username
	}
	return ""
}
