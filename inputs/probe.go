package inputs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo is what the video channel needs to know about a file.
type VideoInfo struct {
	Width    int
	Height   int
	FPS      float64
	HasAudio bool
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
	} `json:"streams"`
}

// ProbeVideo runs ffprobe on path.
func ProbeVideo(path string) (VideoInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("probing %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(data string) (VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return VideoInfo{}, fmt.Errorf("parsing probe output: %w", err)
	}

	var info VideoInfo
	found := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if found {
				continue
			}
			found = true
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseRate(s.AvgFrameRate)
			if info.FPS == 0 {
				info.FPS = parseRate(s.RFrameRate)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !found {
		return VideoInfo{}, fmt.Errorf("no video stream found")
	}
	if info.Width <= 0 || info.Height <= 0 {
		return VideoInfo{}, fmt.Errorf("invalid video size %dx%d", info.Width, info.Height)
	}
	return info, nil
}

// parseRate parses ffprobe rates such as "30000/1001". It returns 0 when
// the rate is unknown.
func parseRate(r string) float64 {
	num, den, ok := strings.Cut(r, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
