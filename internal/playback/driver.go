package playback

import "github.com/TobiTenno/hekbot/internal/catalog"

// Request asks for one sound to be played in one guild voice channel. It is
// created by the message handler and consumed exactly once by the queue.
type Request struct {
	Sound     catalog.Sound
	GuildID   string
	ChannelID string
}

// Conn is a live voice connection handle.
type Conn interface {
	// ChannelID reports the voice channel the connection is attached to.
	ChannelID() string
}

// Driver abstracts the voice gateway: joining a channel, streaming one sound
// to completion, and releasing the connection.
type Driver interface {
	// Join acquires a connection to the given channel. If the guild
	// already has a connection to another channel, the driver relocates
	// it rather than opening a second one.
	Join(guildID, channelID string) (Conn, error)

	// Play streams one sound file into the connection and blocks until
	// the platform signals end of stream. It supports repeated calls on
	// the same connection without re-joining.
	Play(conn Conn, soundPath string) error

	// Disconnect releases the connection. Safe to call more than once.
	Disconnect(conn Conn)
}
