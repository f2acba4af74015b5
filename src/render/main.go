package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jinjor/desktop-synth/src/audio"
	"github.com/jinjor/desktop-synth/src/synth"
	"golang.org/x/sync/errgroup"
)

var (
	dir        = flag.String("dir", ".", "output directory")
	duration   = flag.Duration("duration", time.Second, "length of each note")
	configPath = flag.String("config", "", "path to a JSON configuration file")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	if flag.NArg() == 0 {
		log.Fatalf("usage: render [-dir out] [-duration 1s] [-config synth.json] C4 E4 A4 ...")
	}
	config := synth.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = synth.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
	}
	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	frames := int(duration.Seconds() * audio.SampleRate)

	g, _ := errgroup.WithContext(context.Background())
	for _, pitch := range flag.Args() {
		pitch := pitch
		g.Go(func() error {
			note, octave, err := synth.ParsePitch(pitch)
			if err != nil {
				return err
			}
			samples, err := renderNote(config, note, octave, frames)
			if err != nil {
				return fmt.Errorf("%s: %w", pitch, err)
			}
			log.Printf("rendered %s\n", pitch)
			path := filepath.Join(*dir, pitch+".wav")
			if err := writeWav(path, samples); err != nil {
				return err
			}
			log.Printf("saved %s\n", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("Successfully rendered notes.")
}

// renderNote plays one note on an offline engine.
func renderNote(config synth.Config, note synth.Note, octave int, frames int) ([]float64, error) {
	e, err := synth.New(config, nil)
	if err != nil {
		return nil, err
	}
	defer e.Off()
	if err := e.Play(note, octave); err != nil {
		return nil, err
	}
	return e.Render(frames), nil
}

// writeWav writes mono samples as a 16-bit stereo WAV file.
func writeWav(path string, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, audio.SampleRate, 16, audio.ChannelNum, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: audio.ChannelNum,
			SampleRate:  audio.SampleRate,
		},
		Data:           make([]int, len(samples)*audio.ChannelNum),
		SourceBitDepth: 16,
	}
	for i, value := range samples {
		v := int(math.Max(-1, math.Min(1, value)) * math.MaxInt16)
		for ch := 0; ch < audio.ChannelNum; ch++ {
			buf.Data[i*audio.ChannelNum+ch] = v
		}
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}
