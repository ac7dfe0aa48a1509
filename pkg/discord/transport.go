package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"modcmd/pkg/platform"
	"modcmd/pkg/reply"
)

// MessageTransport sends replies as regular channel messages. Private replies
// go to the caller's direct message channel; the ephemeral interaction flag
// has no message equivalent and is ignored.
type MessageTransport struct {
	session   *discordgo.Session
	channelID string
	callerID  string
	reference *discordgo.MessageReference
	log       *zap.Logger

	mu       sync.Mutex
	channels map[platform.ID]string
}

// NewMessageTransport creates a transport replying into the given channel.
// When reference is set, the initial reply quotes that message.
func NewMessageTransport(session *discordgo.Session, channelID, callerID string, reference *discordgo.MessageReference, log *zap.Logger) *MessageTransport {
	return &MessageTransport{
		session:   session,
		channelID: channelID,
		callerID:  callerID,
		reference: reference,
		log:       log,
		channels:  make(map[platform.ID]string),
	}
}

// Defer shows the typing indicator; messages have no deferral concept.
func (t *MessageTransport) Defer(ctx context.Context) error {
	return t.session.ChannelTyping(t.channelID, discordgo.WithContext(ctx))
}

func (t *MessageTransport) Send(ctx context.Context, spec reply.Spec, initial bool) (platform.ID, error) {
	target := t.channelID
	private := spec.Privacy == reply.PrivacyPrivate
	if private {
		dm, err := t.session.UserChannelCreate(t.callerID, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("opening direct message channel: %w", err)
		}
		target = dm.ID
	}

	var msg *discordgo.Message
	var err error
	if initial && !private && t.reference != nil {
		msg, err = t.session.ChannelMessageSendReply(target, spec.Content, t.reference, discordgo.WithContext(ctx))
	} else {
		msg, err = t.session.ChannelMessageSend(target, spec.Content, discordgo.WithContext(ctx))
	}
	if err != nil {
		return "", fmt.Errorf("sending reply: %w", err)
	}

	id := platform.ID(msg.ID)
	t.mu.Lock()
	t.channels[id] = target
	t.mu.Unlock()

	if spec.Ephemeral.HasTimed() && spec.DeleteDelay > 0 {
		t.scheduleDelete(id, spec.DeleteDelay)
	}
	return id, nil
}

func (t *MessageTransport) Edit(ctx context.Context, id platform.ID, spec reply.Spec) error {
	_, err := t.session.ChannelMessageEdit(t.channelOf(id), string(id), spec.Content, discordgo.WithContext(ctx))
	return err
}

func (t *MessageTransport) Delete(ctx context.Context, id platform.ID) error {
	return t.session.ChannelMessageDelete(t.channelOf(id), string(id), discordgo.WithContext(ctx))
}

// LongTerm returns the transport itself; channel messages outlive the
// invocation.
func (t *MessageTransport) LongTerm() reply.Transport { return t }

func (t *MessageTransport) channelOf(id platform.ID) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ch, ok := t.channels[id]; ok {
		return ch
	}
	return t.channelID
}

func (t *MessageTransport) scheduleDelete(id platform.ID, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := t.session.ChannelMessageDelete(t.channelOf(id), string(id)); err != nil {
			t.log.Warn("failed to delete timed reply",
				zap.String("message_id", string(id)),
				zap.Error(err))
		}
	})
}

// InteractionTransport sends replies through an interaction's response
// webhook: the first reply answers the interaction, later ones are follow-ups.
// Interaction tokens expire after fifteen minutes; LongTerm switches to plain
// channel messages.
type InteractionTransport struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	log         *zap.Logger

	mu        sync.Mutex
	deferred  bool
	initialID platform.ID
}

// NewInteractionTransport creates a transport answering the given interaction.
func NewInteractionTransport(session *discordgo.Session, interaction *discordgo.Interaction, log *zap.Logger) *InteractionTransport {
	return &InteractionTransport{
		session:     session,
		interaction: interaction,
		log:         log,
	}
}

// Defer acknowledges the interaction so the platform shows a pending state
// instead of timing the interaction out after three seconds.
func (t *InteractionTransport) Defer(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deferred || t.initialID != "" {
		return nil
	}
	err := t.session.InteractionRespond(t.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("deferring interaction: %w", err)
	}
	t.deferred = true
	return nil
}

func (t *InteractionTransport) Send(ctx context.Context, spec reply.Spec, initial bool) (platform.ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var flags discordgo.MessageFlags
	// Interactions have no direct message routing; a private reply is
	// delivered as an ephemeral one, visible only to the caller.
	if spec.Privacy == reply.PrivacyPrivate || spec.Ephemeral.HasInteraction() {
		flags = discordgo.MessageFlagsEphemeral
	}

	var id platform.ID
	switch {
	case t.initialID == "" && t.deferred:
		msg, err := t.session.InteractionResponseEdit(t.interaction, &discordgo.WebhookEdit{
			Content: &spec.Content,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("completing deferred response: %w", err)
		}
		id = platform.ID(msg.ID)
		t.initialID = id
	case t.initialID == "":
		err := t.session.InteractionRespond(t.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: spec.Content,
				Flags:   flags,
			},
		}, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("responding to interaction: %w", err)
		}
		msg, err := t.session.InteractionResponse(t.interaction, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("fetching interaction response: %w", err)
		}
		id = platform.ID(msg.ID)
		t.initialID = id
	default:
		msg, err := t.session.FollowupMessageCreate(t.interaction, true, &discordgo.WebhookParams{
			Content: spec.Content,
			Flags:   flags,
		}, discordgo.WithContext(ctx))
		if err != nil {
			return "", fmt.Errorf("sending follow-up: %w", err)
		}
		id = platform.ID(msg.ID)
	}

	if spec.Ephemeral.HasTimed() && spec.DeleteDelay > 0 && flags&discordgo.MessageFlagsEphemeral == 0 {
		t.scheduleDelete(id, spec.DeleteDelay)
	}
	return id, nil
}

func (t *InteractionTransport) Edit(ctx context.Context, id platform.ID, spec reply.Spec) error {
	t.mu.Lock()
	initial := id == t.initialID
	t.mu.Unlock()

	if initial {
		_, err := t.session.InteractionResponseEdit(t.interaction, &discordgo.WebhookEdit{
			Content: &spec.Content,
		}, discordgo.WithContext(ctx))
		return err
	}
	_, err := t.session.FollowupMessageEdit(t.interaction, string(id), &discordgo.WebhookEdit{
		Content: &spec.Content,
	}, discordgo.WithContext(ctx))
	return err
}

func (t *InteractionTransport) Delete(ctx context.Context, id platform.ID) error {
	t.mu.Lock()
	initial := id == t.initialID
	t.mu.Unlock()

	if initial {
		return t.session.InteractionResponseDelete(t.interaction, discordgo.WithContext(ctx))
	}
	return t.session.FollowupMessageDelete(t.interaction, string(id), discordgo.WithContext(ctx))
}

// LongTerm switches to channel messages, which do not expire with the
// interaction token.
func (t *InteractionTransport) LongTerm() reply.Transport {
	caller := ""
	if t.interaction.Member != nil && t.interaction.Member.User != nil {
		caller = t.interaction.Member.User.ID
	} else if t.interaction.User != nil {
		caller = t.interaction.User.ID
	}
	return NewMessageTransport(t.session, t.interaction.ChannelID, caller, nil, t.log)
}

func (t *InteractionTransport) scheduleDelete(id platform.ID, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := t.Delete(context.Background(), id); err != nil {
			t.log.Warn("failed to delete timed reply",
				zap.String("message_id", string(id)),
				zap.Error(err))
		}
	})
}
