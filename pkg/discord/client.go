// Package discord adapts the command framework to Discord through discordgo:
// entity lookups, gateway event handling and reply transports.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"

	"modcmd/pkg/platform"
)

// Client implements platform.Client over a discordgo session. Lookups prefer
// the session's state cache and fall back to the REST API.
type Client struct {
	session *discordgo.Session

	ownerMu sync.Mutex
	owner   platform.ID
}

// NewClient creates a client over an open or soon-to-be-opened session.
func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

// BotOwnerID resolves the owner of the bot application. For team-owned
// applications this is the team owner. The result is cached; application
// ownership does not change at runtime.
func (c *Client) BotOwnerID(ctx context.Context) (platform.ID, error) {
	c.ownerMu.Lock()
	defer c.ownerMu.Unlock()
	if c.owner != "" {
		return c.owner, nil
	}

	app, err := c.session.Application("@me")
	if err != nil {
		return "", fmt.Errorf("fetching application: %w", err)
	}
	switch {
	case app.Team != nil:
		c.owner = platform.ID(app.Team.OwnerID)
	case app.Owner != nil:
		c.owner = platform.ID(app.Owner.ID)
	default:
		return "", platform.ErrNotFound
	}
	return c.owner, nil
}

func (c *Client) GetUser(ctx context.Context, id platform.ID) (platform.User, error) {
	u, err := c.session.User(string(id), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return user{u}, nil
}

func (c *Client) GetMember(ctx context.Context, guildID, userID platform.ID) (platform.Member, error) {
	m, err := c.session.State.Member(string(guildID), string(userID))
	if err != nil {
		m, err = c.session.GuildMember(string(guildID), string(userID), discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err)
		}
	}
	if m.User == nil {
		return nil, platform.ErrNotFound
	}
	return member{user: user{m.User}, client: c, guildID: guildID, m: m}, nil
}

func (c *Client) GetGuild(ctx context.Context, id platform.ID) (platform.Guild, error) {
	g, err := c.rawGuild(string(id))
	if err != nil {
		return nil, err
	}
	return guild{g}, nil
}

func (c *Client) GetChannel(ctx context.Context, id platform.ID) (platform.Channel, error) {
	ch, err := c.session.State.Channel(string(id))
	if err != nil {
		ch, err = c.session.Channel(string(id), discordgo.WithContext(ctx))
		if err != nil {
			return nil, mapError(err)
		}
	}
	return channel{client: c, ch: ch}, nil
}

func (c *Client) GetRole(ctx context.Context, guildID, id platform.ID) (platform.Role, error) {
	g, err := c.rawGuild(string(guildID))
	if err != nil {
		return nil, err
	}
	for _, r := range g.Roles {
		if r.ID == string(id) {
			return role{r}, nil
		}
	}
	return nil, platform.ErrNotFound
}

func (c *Client) GetMessage(ctx context.Context, channelID, id platform.ID) (platform.Message, error) {
	m, err := c.session.ChannelMessage(string(channelID), string(id), discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return message{m}, nil
}

func (c *Client) rawGuild(id string) (*discordgo.Guild, error) {
	g, err := c.session.State.Guild(id)
	if err == nil && len(g.Roles) > 0 {
		return g, nil
	}
	g, err = c.session.Guild(id)
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

// mapError translates discordgo REST errors into the framework's sentinel
// where the entity simply does not exist.
func mapError(err error) error {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusNotFound:
			return platform.ErrNotFound
		case http.StatusForbidden:
			// An invisible entity and a missing one look the same to the
			// framework.
			return platform.ErrNotFound
		}
	}
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return platform.ErrNotFound
	}
	return err
}
