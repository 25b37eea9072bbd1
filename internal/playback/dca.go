package playback

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
)

// settleDelay is a brief pause before each stream; sending frames right
// after a join or a previous stream tends to clip the start of the sound.
const settleDelay = 250 * time.Millisecond

// DCADriver streams local audio files into Discord voice connections using
// the dca encoder (ffmpeg under the hood).
type DCADriver struct {
	session *discordgo.Session
	opts    *dca.EncodeOptions
}

// NewDCADriver creates a driver on top of an open Discord session.
func NewDCADriver(session *discordgo.Session) *DCADriver {
	opts := *dca.StdEncodeOptions
	opts.RawOutput = true
	opts.Bitrate = 96
	opts.Application = dca.AudioApplicationLowDelay
	return &DCADriver{session: session, opts: &opts}
}

type dcaConn struct {
	vc        *discordgo.VoiceConnection
	closeOnce sync.Once
}

func (c *dcaConn) ChannelID() string {
	return c.vc.ChannelID
}

// Join connects to a voice channel. discordgo relocates an existing guild
// connection instead of opening a second one, which is exactly the
// one-channel-per-guild behavior the queue relies on.
func (d *DCADriver) Join(guildID, channelID string) (Conn, error) {
	vc, err := d.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("joining voice channel %s: %w", channelID, err)
	}
	return &dcaConn{vc: vc}, nil
}

// Play encodes the file and streams it until end of stream.
func (d *DCADriver) Play(conn Conn, soundPath string) error {
	c, ok := conn.(*dcaConn)
	if !ok {
		return errors.New("connection was not created by this driver")
	}

	encodeSession, err := dca.EncodeFile(soundPath, d.opts)
	if err != nil {
		return fmt.Errorf("creating encode session for %s: %w", soundPath, err)
	}
	defer encodeSession.Cleanup()

	time.Sleep(settleDelay)

	c.vc.Speaking(true)
	defer c.vc.Speaking(false)

	done := make(chan error)
	dca.NewStream(encodeSession, c.vc, done)
	if err := <-done; err != nil && err != io.EOF {
		return fmt.Errorf("streaming %s: %w", soundPath, err)
	}
	return nil
}

// Disconnect releases the connection. Repeated calls are no-ops.
func (d *DCADriver) Disconnect(conn Conn) {
	c, ok := conn.(*dcaConn)
	if !ok {
		return
	}
	c.closeOnce.Do(func() {
		c.vc.Disconnect()
	})
}
