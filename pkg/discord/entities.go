package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"modcmd/pkg/platform"
)

// allPermissions is every permission bit, granted to guild owners and
// administrators.
const allPermissions = platform.PermissionSet(discordgo.PermissionAll)

type user struct {
	u *discordgo.User
}

func (u user) ID() platform.ID  { return platform.ID(u.u.ID) }
func (u user) Username() string { return u.u.Username }
func (u user) Bot() bool        { return u.u.Bot }

type member struct {
	user
	client  *Client
	guildID platform.ID
	m       *discordgo.Member
}

func (m member) GuildID() platform.ID { return m.guildID }

func (m member) RoleIDs() []platform.ID {
	ids := make([]platform.ID, len(m.m.Roles))
	for i, r := range m.m.Roles {
		ids[i] = platform.ID(r)
	}
	return ids
}

func (m member) Booster() bool { return m.m.PremiumSince != nil }

// Permissions computes the member's base guild permissions by folding the
// everyone role and the member's roles. Owners and administrators get every
// bit.
func (m member) Permissions(ctx context.Context) (platform.PermissionSet, error) {
	g, err := m.client.rawGuild(string(m.guildID))
	if err != nil {
		return 0, err
	}
	if g.OwnerID == m.u.ID {
		return allPermissions, nil
	}

	var perms int64
	for _, role := range g.Roles {
		if role.ID == g.ID {
			// The everyone role shares the guild's ID.
			perms |= role.Permissions
			continue
		}
		for _, id := range m.m.Roles {
			if role.ID == id {
				perms |= role.Permissions
				break
			}
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return allPermissions, nil
	}
	return platform.PermissionSet(perms), nil
}

type guild struct {
	g *discordgo.Guild
}

func (g guild) ID() platform.ID      { return platform.ID(g.g.ID) }
func (g guild) Name() string         { return g.g.Name }
func (g guild) OwnerID() platform.ID { return platform.ID(g.g.OwnerID) }

type channel struct {
	client *Client
	ch     *discordgo.Channel
}

func (c channel) ID() platform.ID { return platform.ID(c.ch.ID) }
func (c channel) Name() string    { return c.ch.Name }

func (c channel) Private() bool {
	return c.ch.Type == discordgo.ChannelTypeDM || c.ch.Type == discordgo.ChannelTypeGroupDM
}

func (c channel) NSFW() bool { return c.ch.NSFW }

func (c channel) EffectivePermissions(ctx context.Context, u platform.ID) (platform.PermissionSet, error) {
	if c.Private() {
		return 0, platform.ErrNotFound
	}
	perms, err := c.client.session.UserChannelPermissions(string(u), c.ch.ID)
	if err != nil {
		return 0, mapError(err)
	}
	return platform.PermissionSet(perms), nil
}

type role struct {
	r *discordgo.Role
}

func (r role) ID() platform.ID { return platform.ID(r.r.ID) }
func (r role) Name() string    { return r.r.Name }

type message struct {
	m *discordgo.Message
}

func (m message) ID() platform.ID        { return platform.ID(m.m.ID) }
func (m message) ChannelID() platform.ID { return platform.ID(m.m.ChannelID) }
func (m message) Content() string        { return m.m.Content }

func (m message) Attachments() []platform.Attachment {
	out := make([]platform.Attachment, len(m.m.Attachments))
	for i, a := range m.m.Attachments {
		out[i] = attachment{a}
	}
	return out
}

type attachment struct {
	a *discordgo.MessageAttachment
}

func (a attachment) ID() platform.ID     { return platform.ID(a.a.ID) }
func (a attachment) Filename() string    { return a.a.Filename }
func (a attachment) Size() int           { return a.a.Size }
func (a attachment) URL() string         { return a.a.URL }
func (a attachment) ContentType() string { return a.a.ContentType }
