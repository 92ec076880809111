package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// player streams the renderer to the default audio device. Read runs on
// oto's goroutine, which becomes the only caller of the engine.
type player struct {
	r *renderer
}

func (p *player) Read(b []byte) (int, error) {
	n := len(b) / 4
	samples := p.r.next(n)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(float32(s)))
	}

	return 4 * n, nil
}

func play(r *renderer, sampleRate int, d time.Duration) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	out := ctx.NewPlayer(&player{r: r})
	out.Play()
	time.Sleep(d)

	return out.Close()
}
