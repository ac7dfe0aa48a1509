package access

import (
	"context"
	"sync"

	"modcmd/pkg/platform"
)

// New creates a Context backed by a platform client. An empty guild means the
// invocation happened in a private channel. Resolved entities are cached for
// the lifetime of the context; the cache is safe for concurrent use.
func New(client platform.Client, caller platform.User, guild, channel platform.ID) Context {
	return &clientContext{
		client:  client,
		caller:  caller,
		guild:   guild,
		channel: channel,
	}
}

type clientContext struct {
	client  platform.Client
	caller  platform.User
	guild   platform.ID
	channel platform.ID

	mu         sync.Mutex
	guildVal   platform.Guild
	channelVal platform.Channel
	memberVal  platform.Member
}

func (c *clientContext) Caller() platform.User { return c.caller }

func (c *clientContext) GuildID() (platform.ID, bool) {
	return c.guild, c.guild != ""
}

func (c *clientContext) Guild(ctx context.Context) (platform.Guild, error) {
	if c.guild == "" {
		return nil, platform.ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guildVal == nil {
		g, err := c.client.GetGuild(ctx, c.guild)
		if err != nil {
			return nil, err
		}
		c.guildVal = g
	}
	return c.guildVal, nil
}

func (c *clientContext) Channel(ctx context.Context) (platform.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channelVal == nil {
		ch, err := c.client.GetChannel(ctx, c.channel)
		if err != nil {
			return nil, err
		}
		c.channelVal = ch
	}
	return c.channelVal, nil
}

func (c *clientContext) Member(ctx context.Context) (platform.Member, error) {
	if c.guild == "" {
		return nil, platform.ErrNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.memberVal == nil {
		m, err := c.client.GetMember(ctx, c.guild, c.caller.ID())
		if err != nil {
			return nil, err
		}
		c.memberVal = m
	}
	return c.memberVal, nil
}

func (c *clientContext) Client() platform.Client { return c.client }
