package notify

import (
	"errors"
	"fmt"
)

// Channel identifies one delivery mechanism.
type Channel string

// Supported channels.
const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// Validation errors returned by the dispatcher before any fan-out begins.
var (
	ErrEmptyChannels      = errors.New("notification request has no channels")
	ErrUnsupportedChannel = errors.New("unsupported channel")
)

// ParseChannel converts a string into a Channel, returning
// ErrUnsupportedChannel for anything outside the supported set.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelEmail, ChannelSMS, ChannelPush, ChannelInApp:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedChannel, s)
}

// ParseChannels converts a list of channel names, rejecting the empty list
// and any unknown name. Duplicates are collapsed, first occurrence wins.
func ParseChannels(names []string) ([]Channel, error) {
	if len(names) == 0 {
		return nil, ErrEmptyChannels
	}
	seen := make(map[Channel]bool, len(names))
	channels := make([]Channel, 0, len(names))
	for _, n := range names {
		c, err := ParseChannel(n)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		channels = append(channels, c)
	}
	return channels, nil
}
