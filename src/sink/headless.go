//go:build headless

// Package sink provides the output devices a synth can play through.
package sink

import (
	"io"
	"time"

	"github.com/jinjor/desktop-synth/src/audio"
)

// NewDefault returns a sink that consumes audio in real time and discards it.
func NewDefault() (audio.Sink, error) {
	return discardSink{}, nil
}

type discardSink struct{}

func (discardSink) NewPlayer() io.WriteCloser {
	return discardPlayer{}
}

func (discardSink) Close() error {
	return nil
}

type discardPlayer struct{}

func (discardPlayer) Write(buf []byte) (int, error) {
	frames := len(buf) / (audio.BitDepthInBytes * audio.ChannelNum)
	time.Sleep(time.Duration(frames) * time.Second / audio.SampleRate)
	return len(buf), nil
}

func (discardPlayer) Close() error {
	return nil
}
