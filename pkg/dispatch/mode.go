package dispatch

import "fmt"

// Channel selects where the software comes from.
type Channel string

const (
	ChannelStable  Channel = "stable"
	ChannelTesting Channel = "testing"
	ChannelDaily   Channel = "daily"
	ChannelGit     Channel = "git"
	ChannelOnedir  Channel = "onedir"
)

// Mode couples the release channel with an optional sub-selector: a
// pinned version for the package channels, or a branch, tag, or
// commit for the git channel. Supplied by the caller and read-only
// from then on.
type Mode struct {
	Channel Channel
	Rev     string
}

// ParseMode interprets the positional command line tokens. No tokens
// selects the stable channel at its latest version.
func ParseMode(args []string) (Mode, error) {
	if len(args) == 0 {
		return Mode{Channel: ChannelStable}, nil
	}
	if len(args) > 2 {
		return Mode{}, fmt.Errorf("unexpected argument %q after install mode", args[2])
	}

	ch := Channel(args[0])
	switch ch {
	case ChannelStable, ChannelTesting, ChannelDaily, ChannelGit, ChannelOnedir:
	default:
		return Mode{}, fmt.Errorf("unknown install mode %q", args[0])
	}

	m := Mode{Channel: ch}
	if len(args) == 2 {
		m.Rev = args[1]
	}
	return m, nil
}

// String renders the mode for logs, e.g. "stable" or "git v3006.1".
func (m Mode) String() string {
	if m.Rev == "" {
		return string(m.Channel)
	}
	return string(m.Channel) + " " + m.Rev
}
