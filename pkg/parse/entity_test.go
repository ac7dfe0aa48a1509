package parse

import (
	"context"
	"errors"
	"testing"

	"modcmd/pkg/access"
	"modcmd/pkg/platform"
	"modcmd/pkg/platform/platformtest"
)

func entityContext(t *testing.T) (access.Context, *platformtest.Client) {
	t.Helper()
	client := platformtest.NewClient()
	caller := &platformtest.User{UserID: "100", Name: "tester"}
	client.Users["100"] = caller
	client.Users["111"] = &platformtest.User{UserID: "111", Name: "target"}
	client.Guilds["300"] = &platformtest.Guild{GuildID: "300", GuildName: "testing", Owner: "100"}
	client.Channels["200"] = &platformtest.Channel{ChannelID: "200", ChannelName: "general"}
	client.Channels["201"] = &platformtest.Channel{ChannelID: "201", ChannelName: "other"}
	client.Roles["400"] = &platformtest.Role{RoleID: "400", RoleName: "mods"}
	client.Messages["500"] = &platformtest.Message{MessageID: "500", Channel: "200", Text: "hi"}
	client.Messages["501"] = &platformtest.Message{MessageID: "501", Channel: "201", Text: "there"}
	client.AddMember(&platformtest.Member{
		User:  platformtest.User{UserID: "111", Name: "target"},
		Guild: "300",
	})
	return access.New(client, caller, "300", "200"), client
}

func TestIDParserFormats(t *testing.T) {
	cc, _ := entityContext(t)

	tests := []struct {
		name    string
		kind    IDKind
		in      string
		want    platform.ID
		invalid bool
	}{
		{"bare ID", KindAny, "12345", "12345", false},
		{"non-numeric", KindAny, "abc", "", true},
		{"user mention", KindUser, "<@111>", "111", false},
		{"nick mention", KindUser, "<@!111>", "111", false},
		{"user URL", KindUser, "https://discord.com/users/111", "111", false},
		{"role mention", KindRole, "<@&400>", "400", false},
		{"role has no URL form", KindRole, "https://discord.com/users/400", "", true},
		{"channel mention", KindChannel, "<#200>", "200", false},
		{"channel URL", KindChannel, "https://discord.com/channels/300/200", "200", false},
		{"message URL", KindMessage, "https://discord.com/channels/300/200/500", "500", false},
		{"wrong mention kind", KindUser, "<@&400>", "", true},
		{"mention rejected for any", KindAny, "<@111>", "", true},
		{"malformed mention", KindUser, "<@abc>", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewIDParser(tt.kind).Parse(context.Background(), cc, tt.in)
			if tt.invalid {
				var invalid *InvalidArgumentError
				if !errors.As(err, &invalid) {
					t.Fatalf("Expected invalid argument error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestUserRef(t *testing.T) {
	cc, _ := entityContext(t)

	u, err := UserRef().Parse(context.Background(), cc, "<@111>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if u.ID() != "111" {
		t.Errorf("Expected user 111, got %s", u.ID())
	}

	// A well-formed reference to a missing user is a rejection, not a fault.
	_, err = UserRef().Parse(context.Background(), cc, "999")
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected invalid argument error, got %v", err)
	}
}

func TestMemberRefRequiresGuild(t *testing.T) {
	cc, client := entityContext(t)

	m, err := MemberRef().Parse(context.Background(), cc, "111")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.GuildID() != "300" {
		t.Errorf("Expected member of guild 300, got %s", m.GuildID())
	}

	private := access.New(client, &platformtest.User{UserID: "100"}, "", "200")
	_, err = MemberRef().Parse(context.Background(), private, "111")
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected rejection in private channel, got %v", err)
	}
}

func TestRoleRef(t *testing.T) {
	cc, _ := entityContext(t)

	r, err := RoleRef().Parse(context.Background(), cc, "<@&400>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.ID() != "400" {
		t.Errorf("Expected role 400, got %s", r.ID())
	}
}

func TestChannelRef(t *testing.T) {
	cc, _ := entityContext(t)

	ch, err := ChannelRef().Parse(context.Background(), cc, "<#201>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if ch.ID() != "201" {
		t.Errorf("Expected channel 201, got %s", ch.ID())
	}
}

func TestMessageRef(t *testing.T) {
	cc, _ := entityContext(t)

	// A bare ID resolves within the invocation channel.
	m, err := MessageRef().Parse(context.Background(), cc, "500")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.ID() != "500" {
		t.Errorf("Expected message 500, got %s", m.ID())
	}

	// A URL carries its own channel.
	m, err = MessageRef().Parse(context.Background(), cc, "https://discord.com/channels/300/201/501")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.ID() != "501" || m.ChannelID() != "201" {
		t.Errorf("Expected message 501 in channel 201, got %s in %s", m.ID(), m.ChannelID())
	}
}
