package parse

import (
	"context"
	"regexp"
	"strings"

	"modcmd/pkg/access"
	"modcmd/pkg/platform"
)

// IDKind selects which reference formats an ID parser accepts, beyond a bare
// numeric ID.
type IDKind int

const (
	// KindAny accepts only bare numeric IDs.
	KindAny IDKind = iota
	// KindUser additionally accepts user mentions and user profile URLs.
	KindUser
	// KindRole additionally accepts role mentions.
	KindRole
	// KindChannel additionally accepts channel mentions and channel URLs.
	KindChannel
	// KindMessage additionally accepts message URLs.
	KindMessage
)

var (
	userMentionRE    = regexp.MustCompile(`^<@!?(\d+)>$`)
	roleMentionRE    = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMentionRE = regexp.MustCompile(`^<#(\d+)>$`)
	userURLRE        = regexp.MustCompile(`^https://(?:\w+\.)?discord\.com/users/(\d+)/?$`)
	channelURLRE     = regexp.MustCompile(`^https://(?:\w+\.)?discord\.com/channels/(?:\d+|@me)/(\d+)/?$`)
	messageURLRE     = regexp.MustCompile(`^https://(?:\w+\.)?discord\.com/channels/(?:\d+|@me)/(\d+)/(\d+)/?$`)
)

// IDParser parses platform IDs from bare numeric form or, depending on the
// kind, from a mention or an entity URL. Formats are tried URL first, then
// mention, then bare ID.
type IDParser struct {
	kind IDKind
}

// NewIDParser creates a parser for IDs of the given kind.
func NewIDParser(kind IDKind) *IDParser {
	return &IDParser{kind: kind}
}

// Parse implements Parser.
func (p *IDParser) Parse(ctx context.Context, cc access.Context, raw Value) (platform.ID, error) {
	s, err := toString(raw)
	if err != nil {
		return "", err
	}
	id, err := extractID(p.kind, s)
	if err != nil {
		return "", err
	}
	return id, nil
}

func extractID(kind IDKind, s string) (platform.ID, error) {
	if strings.HasPrefix(s, "https://") {
		if id, ok := extractURL(kind, s); ok {
			return id, nil
		}
		return "", Invalidf("%q is not a valid link for this argument", s)
	}
	if strings.HasPrefix(s, "<") {
		if re := mentionRE(kind); re != nil {
			if m := re.FindStringSubmatch(s); m != nil {
				return platform.ID(m[1]), nil
			}
		}
		return "", Invalidf("%q is not a valid mention for this argument", s)
	}
	id := platform.ID(s)
	if !id.Valid() {
		return "", Invalidf("%q is not a valid ID", s)
	}
	return id, nil
}

func extractURL(kind IDKind, s string) (platform.ID, bool) {
	switch kind {
	case KindUser:
		if m := userURLRE.FindStringSubmatch(s); m != nil {
			return platform.ID(m[1]), true
		}
	case KindChannel:
		if m := channelURLRE.FindStringSubmatch(s); m != nil {
			return platform.ID(m[1]), true
		}
	case KindMessage:
		if m := messageURLRE.FindStringSubmatch(s); m != nil {
			return platform.ID(m[2]), true
		}
	}
	return "", false
}

func mentionRE(kind IDKind) *regexp.Regexp {
	switch kind {
	case KindUser:
		return userMentionRE
	case KindRole:
		return roleMentionRE
	case KindChannel:
		return channelMentionRE
	default:
		return nil
	}
}
