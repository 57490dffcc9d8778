// inputs/video.go
package inputs

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// firstFrameTimeout bounds how long NewVideoChannel waits for a picture.
const firstFrameTimeout = 5 * time.Second

// VideoOptions configure the ffmpeg decoder.
type VideoOptions struct {
	FFmpegPath string
	Loop       bool
}

var _ IChannel = (*VideoChannel)(nil)

// VideoChannel streams a video file into a texture. ffmpeg decodes to raw
// RGBA on a pipe; a FramePump reads it and Update uploads the newest frame
// on the render thread.
type VideoChannel struct {
	textureID uint32
	info      VideoInfo

	cmd    *exec.Cmd
	reader *io.PipeReader
	writer *io.PipeWriter
	pump   *FramePump

	frame []byte
	seen  uint64

	mu        sync.Mutex
	followers []Follower
}

// decoderArgs builds the ffmpeg input and output arguments.
func decoderArgs(opts VideoOptions) (inputArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{}
	if opts.Loop {
		inputArgs["stream_loop"] = "-1"
	}
	outputArgs = ffmpeg.KwArgs{
		"format":   "rawvideo",
		"pix_fmt":  "rgba",
		"vf":       "vflip",
		"an":       "",
		"loglevel": "error",
	}
	return inputArgs, outputArgs
}

// NewVideoChannel probes path, allocates the texture and starts the decoder
// paused with its first frame uploaded. It must be called on the render
// thread.
func NewVideoChannel(path string, opts VideoOptions) (*VideoChannel, error) {
	info, err := ProbeVideo(path)
	if err != nil {
		return nil, err
	}
	slog.Info("video probed", "path", path, "width", info.Width, "height", info.Height, "fps", info.FPS)

	var interval time.Duration
	if info.FPS > 0 {
		interval = time.Duration(float64(time.Second) / info.FPS)
	}

	frameSize := info.Width * info.Height * 4
	c := &VideoChannel{
		info:  info,
		pump:  NewFramePump(frameSize, interval),
		frame: make([]byte, frameSize),
	}
	c.textureID = newTexture(info.Width, info.Height, nil, WrapClamp, FilterNearest)

	if err := c.start(path, opts); err != nil {
		gl.DeleteTextures(1, &c.textureID)
		return nil, err
	}

	select {
	case <-c.pump.First():
		c.Update()
		if err := c.pump.Err(); err != nil {
			slog.Warn("video has no first frame", "path", path, "error", err)
		}
	case <-time.After(firstFrameTimeout):
		slog.Warn("timed out waiting for first video frame", "path", path)
	}
	return c, nil
}

func (c *VideoChannel) start(path string, opts VideoOptions) error {
	c.reader, c.writer = io.Pipe()

	inputArgs, outputArgs := decoderArgs(opts)
	ffmpegCmd := ffmpeg.Input(path, inputArgs).
		Output("pipe:", outputArgs).
		WithOutput(c.writer).
		ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	c.cmd = ffmpegCmd.Compile()
	if err := c.cmd.Start(); err != nil {
		return fmt.Errorf("starting video decoder: %w", err)
	}

	go func() {
		err := c.cmd.Wait()
		if err != nil {
			slog.Debug("video decoder exited", "error", err)
		}
		c.writer.Close()
	}()
	go c.pump.Run(c.reader)
	return nil
}

// Follow registers f to be played and paused with the video.
func (c *VideoChannel) Follow(f Follower) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followers = append(c.followers, f)
}

func (c *VideoChannel) Play() error {
	if err := c.pump.Err(); err != nil {
		return err
	}
	c.pump.Play()
	return c.each(Follower.Play)
}

func (c *VideoChannel) Pause() error {
	c.pump.Pause()
	return c.each(Follower.Pause)
}

func (c *VideoChannel) Playing() bool {
	return c.pump.Playing()
}

func (c *VideoChannel) each(fn func(Follower) error) error {
	c.mu.Lock()
	followers := append([]Follower(nil), c.followers...)
	c.mu.Unlock()

	var first error
	for _, f := range followers {
		if err := fn(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Update uploads the newest decoded frame, if any.
func (c *VideoChannel) Update() {
	seq, ok := c.pump.CopyLatest(c.frame, c.seen)
	if !ok {
		return
	}
	c.seen = seq

	gl.BindTexture(gl.TEXTURE_2D, c.textureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(c.info.Width), int32(c.info.Height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(c.frame))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (c *VideoChannel) GetTextureID() uint32 {
	return c.textureID
}

func (c *VideoChannel) ChannelRes() [2]int {
	return [2]int{c.info.Width, c.info.Height}
}

// Info returns the probed stream details.
func (c *VideoChannel) Info() VideoInfo {
	return c.info
}

// Destroy stops the decoder and the pump and frees the texture.
func (c *VideoChannel) Destroy() {
	c.pump.Close()
	c.reader.CloseWithError(io.ErrClosedPipe)
	if c.cmd != nil && c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
	<-c.pump.Done()
	gl.DeleteTextures(1, &c.textureID)
}
