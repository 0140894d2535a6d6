package wire

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const channelAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ChannelNameLength is the fixed length of generated channel names.
const ChannelNameLength = 8

// NewChannelName generates a lowercase alphanumeric channel name. Channels
// are session-scoped: a fresh one is generated on every connection and never
// persisted.
func NewChannelName() string {
	var b strings.Builder
	b.Grow(ChannelNameLength)
	for i := 0; i < ChannelNameLength; i++ {
		b.WriteByte(channelAlphabet[rand.IntN(len(channelAlphabet))])
	}
	return b.String()
}

// NewRequestID generates a correlation id: the current time in base36
// followed by a random base36 suffix. Uniqueness is probabilistic, not
// cryptographic; a collision within one process is negligible at the request
// rates this bridge sees.
func NewRequestID() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 36))
	b.WriteByte('-')
	for i := 0; i < 8; i++ {
		b.WriteByte(channelAlphabet[rand.IntN(len(channelAlphabet))])
	}
	return b.String()
}
