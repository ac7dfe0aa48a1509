// Package platformtest provides in-memory implementations of the platform
// interfaces for use in tests.
package platformtest

import (
	"context"

	"modcmd/pkg/platform"
)

// User is a fake user.
type User struct {
	UserID platform.ID
	Name   string
	IsBot  bool
}

func (u *User) ID() platform.ID  { return u.UserID }
func (u *User) Username() string { return u.Name }
func (u *User) Bot() bool        { return u.IsBot }

// Member is a fake guild member.
type Member struct {
	User
	Guild    platform.ID
	Roles    []platform.ID
	Perms    platform.PermissionSet
	Boosting bool
}

func (m *Member) GuildID() platform.ID   { return m.Guild }
func (m *Member) RoleIDs() []platform.ID { return m.Roles }
func (m *Member) Booster() bool          { return m.Boosting }

func (m *Member) Permissions(ctx context.Context) (platform.PermissionSet, error) {
	return m.Perms, nil
}

// Guild is a fake guild.
type Guild struct {
	GuildID   platform.ID
	GuildName string
	Owner     platform.ID
}

func (g *Guild) ID() platform.ID      { return g.GuildID }
func (g *Guild) Name() string         { return g.GuildName }
func (g *Guild) OwnerID() platform.ID { return g.Owner }

// Channel is a fake channel.
type Channel struct {
	ChannelID   platform.ID
	ChannelName string
	IsPrivate   bool
	IsNSFW      bool
	Perms       map[platform.ID]platform.PermissionSet
}

func (c *Channel) ID() platform.ID { return c.ChannelID }
func (c *Channel) Name() string    { return c.ChannelName }
func (c *Channel) Private() bool   { return c.IsPrivate }
func (c *Channel) NSFW() bool      { return c.IsNSFW }

func (c *Channel) EffectivePermissions(ctx context.Context, user platform.ID) (platform.PermissionSet, error) {
	if c.IsPrivate {
		return 0, platform.ErrNotFound
	}
	return c.Perms[user], nil
}

// Role is a fake role.
type Role struct {
	RoleID   platform.ID
	RoleName string
}

func (r *Role) ID() platform.ID { return r.RoleID }
func (r *Role) Name() string    { return r.RoleName }

// Message is a fake message.
type Message struct {
	MessageID platform.ID
	Channel   platform.ID
	Text      string
	Files     []platform.Attachment
}

func (m *Message) ID() platform.ID                    { return m.MessageID }
func (m *Message) ChannelID() platform.ID             { return m.Channel }
func (m *Message) Content() string                    { return m.Text }
func (m *Message) Attachments() []platform.Attachment { return m.Files }

// Attachment is a fake attachment.
type Attachment struct {
	AttachmentID platform.ID
	Name         string
	Bytes        int
	Link         string
	Type         string
}

func (a *Attachment) ID() platform.ID     { return a.AttachmentID }
func (a *Attachment) Filename() string    { return a.Name }
func (a *Attachment) Size() int           { return a.Bytes }
func (a *Attachment) URL() string         { return a.Link }
func (a *Attachment) ContentType() string { return a.Type }

// Client is a fake client backed by maps. Lookups missing from the maps
// return platform.ErrNotFound.
type Client struct {
	Owner    platform.ID
	Users    map[platform.ID]platform.User
	Members  map[platform.ID]platform.Member // keyed by "guild/user"
	Guilds   map[platform.ID]platform.Guild
	Channels map[platform.ID]platform.Channel
	Roles    map[platform.ID]platform.Role
	Messages map[platform.ID]platform.Message
}

// NewClient returns an empty fake client.
func NewClient() *Client {
	return &Client{
		Users:    make(map[platform.ID]platform.User),
		Members:  make(map[platform.ID]platform.Member),
		Guilds:   make(map[platform.ID]platform.Guild),
		Channels: make(map[platform.ID]platform.Channel),
		Roles:    make(map[platform.ID]platform.Role),
		Messages: make(map[platform.ID]platform.Message),
	}
}

func (c *Client) BotOwnerID(ctx context.Context) (platform.ID, error) {
	if c.Owner == "" {
		return "", platform.ErrNotFound
	}
	return c.Owner, nil
}

func (c *Client) GetUser(ctx context.Context, id platform.ID) (platform.User, error) {
	if u, ok := c.Users[id]; ok {
		return u, nil
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetMember(ctx context.Context, guild, user platform.ID) (platform.Member, error) {
	if m, ok := c.Members[guild+"/"+user]; ok {
		return m, nil
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetGuild(ctx context.Context, id platform.ID) (platform.Guild, error) {
	if g, ok := c.Guilds[id]; ok {
		return g, nil
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetChannel(ctx context.Context, id platform.ID) (platform.Channel, error) {
	if ch, ok := c.Channels[id]; ok {
		return ch, nil
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetRole(ctx context.Context, guild, id platform.ID) (platform.Role, error) {
	if r, ok := c.Roles[id]; ok {
		return r, nil
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetMessage(ctx context.Context, channel, id platform.ID) (platform.Message, error) {
	if m, ok := c.Messages[id]; ok {
		return m, nil
	}
	return nil, platform.ErrNotFound
}

// AddMember registers a member (and its user) under the given guild.
func (c *Client) AddMember(m *Member) {
	c.Members[m.Guild+"/"+m.UserID] = m
	c.Users[m.UserID] = &m.User
}
