package handlers

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// interactionSink delivers pipeline notifications for one deferred
// interaction. The first message edits the deferred response; anything after
// that goes out as a followup so nothing is lost when a request produces more
// than one notice.
type interactionSink struct {
	s         *discordgo.Session
	i         *discordgo.Interaction
	requester string
	ephemeral bool

	replied atomic.Bool
}

func newInteractionSink(s *discordgo.Session, i *discordgo.InteractionCreate, requesterName string, ephemeral bool) *interactionSink {
	return &interactionSink{
		s:         s,
		i:         i.Interaction,
		requester: requesterName,
		ephemeral: ephemeral,
	}
}

func (k *interactionSink) Reply(text string) {
	if k.replied.CompareAndSwap(false, true) {
		if _, err := k.s.InteractionResponseEdit(k.i, &discordgo.WebhookEdit{
			Content: &text,
		}); err != nil {
			slog.Warn("edit reply failed", "err", err)
		}
		return
	}

	flags := discordgo.MessageFlags(0)
	if k.ephemeral {
		flags = 1 << 6
	}
	if _, err := k.s.FollowupMessageCreate(k.i, false, &discordgo.WebhookParams{
		Content: text,
		Flags:   flags,
	}); err != nil {
		slog.Warn("followup failed", "err", err)
	}
}

func (k *interactionSink) ReplyWithRequesterName(text string) {
	if k.requester == "" {
		k.Reply(text)
		return
	}
	k.Reply(fmt.Sprintf("%s: %s", k.requester, text))
}
