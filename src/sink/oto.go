//go:build !headless

// Package sink provides the output devices a synth can play through.
package sink

import (
	"io"

	"github.com/hajimehoshi/oto"

	"github.com/jinjor/desktop-synth/src/audio"
)

type otoSink struct {
	otoContext *oto.Context
}

// NewDefault opens the platform's default output device.
func NewDefault() (audio.Sink, error) {
	otoContext, err := oto.NewContext(audio.SampleRate, audio.ChannelNum, audio.BitDepthInBytes, audio.BufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	return &otoSink{otoContext: otoContext}, nil
}

func (s *otoSink) NewPlayer() io.WriteCloser {
	return s.otoContext.NewPlayer()
}

func (s *otoSink) Close() error {
	return s.otoContext.Close()
}
