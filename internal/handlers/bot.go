package handlers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sonroyaalmerol/fairbeat/internal/config"
	"github.com/sonroyaalmerol/fairbeat/internal/player"
	"github.com/sonroyaalmerol/fairbeat/internal/repository"
)

type Bot struct {
	cfg  *config.Config
	repo *repository.Repo
	pm   *player.Manager
	cmd  *CommandHandler
}

func NewBot(cfg *config.Config, repo *repository.Repo, pm *player.Manager) *Bot {
	cmd := NewCommandHandler(cfg, repo, pm, repository.NewFavoritesService(repo))
	return &Bot{cfg: cfg, repo: repo, pm: pm, cmd: cmd}
}

func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	// On ready: register commands depending on configuration
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("connected", "user", s.State.User.Username)
		appID := s.State.User.ID

		status := discordgo.UpdateStatusData{Status: b.cfg.BotStatus}
		if b.cfg.BotActivity != "" {
			status.Activities = []*discordgo.Activity{
				{Name: b.cfg.BotActivity, Type: discordgo.ActivityTypeListening},
			}
		}
		if err := s.UpdateStatusComplex(status); err != nil {
			slog.Warn("set presence failed", "err", err)
		}

		if b.cfg.RegisterCommandsOnBot {
			if err := b.cmd.RegisterCommands(s, appID, ""); err != nil {
				slog.Error("register global commands", "err", err)
			} else {
				slog.Info("registered global application commands")
			}
		} else {
			var wg sync.WaitGroup
			for _, g := range s.State.Guilds {
				wg.Add(1)
				go func(guildID string) {
					defer wg.Done()
					if err := b.cmd.RegisterCommands(s, appID, guildID); err != nil {
						slog.Error("register guild commands", "guild", guildID, "err", err)
					}
				}(g.ID)
			}
			wg.Wait()

			_, err := s.ApplicationCommandBulkOverwrite(appID, "", []*discordgo.ApplicationCommand{})
			if err != nil {
				slog.Error("clear global commands", "err", err)
			} else {
				slog.Info("cleared global application commands")
			}

			slog.Info("registered commands on all guilds")
		}
	})

	// If registering per-guild, register on new guilds too
	dg.AddHandler(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		if b.cfg.RegisterCommandsOnBot {
			return
		}
		appID := s.State.User.ID
		if err := b.cmd.RegisterCommands(s, appID, g.ID); err != nil {
			slog.Error("register guild commands on join", "guild", g.ID, "err", err)
		} else {
			slog.Info("registered commands on new guild", "guild", g.ID)
		}
	})

	// Interactions
	dg.AddHandler(b.cmd.HandleInteraction)

	if err := dg.Open(); err != nil {
		return err
	}
	defer dg.Close()

	<-ctx.Done()
	return nil
}
