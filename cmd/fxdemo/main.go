// Command fxdemo renders a test tone through a peaking equalizer followed
// by a reverb and reports what came out.
//
// Usage:
//
//	fxdemo [flags]
//
// Examples:
//
//	fxdemo -freq 1000 -gain 4
//	fxdemo -tone 440 -feedback 0.9 -cutoff 6000 -seconds 3
//	fxdemo -play -seconds 5
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-fxhost/dsp/core"
	"github.com/cwbudde/algo-fxhost/dsp/spectrum"
	"github.com/cwbudde/algo-fxhost/effects"
	"github.com/cwbudde/algo-fxhost/graph"
	"github.com/cwbudde/algo-fxhost/node"
)

type options struct {
	freq, gain, q    float64
	feedback, cutoff float64
	tone, amplitude  float64
	seconds          float64
	sampleRate       float64
	block            int
	dry, play        bool
	verbose          bool
}

func main() {
	var o options

	flag.Float64Var(&o.freq, "freq", 1000, "equalizer center frequency in Hz")
	flag.Float64Var(&o.gain, "gain", 2, "equalizer gain (linear, 1 = flat)")
	flag.Float64Var(&o.q, "q", 0.707, "equalizer Q")
	flag.Float64Var(&o.feedback, "feedback", 0.6, "reverb feedback (0..1)")
	flag.Float64Var(&o.cutoff, "cutoff", 4000, "reverb damping cutoff in Hz")
	flag.Float64Var(&o.tone, "tone", 1000, "test tone frequency in Hz")
	flag.Float64Var(&o.amplitude, "amplitude", 0.25, "test tone amplitude")
	flag.Float64Var(&o.seconds, "seconds", 2, "length of the rendered signal")
	flag.Float64Var(&o.sampleRate, "rate", 48000, "sample rate in Hz")
	flag.IntVar(&o.block, "block", 512, "render block size")
	flag.BoolVar(&o.dry, "dry", false, "leave the reverb stopped")
	flag.BoolVar(&o.play, "play", false, "play the processed tone on the default audio device")
	flag.BoolVar(&o.verbose, "v", false, "log host activity")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxdemo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a test tone through peq0 -> rvsc and prints level and spectrum.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	err := run(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}

	return log
}

func run(o options) error {
	log := newLogger(o.verbose)
	defer func() { _ = log.Sync() }()

	graph.SetLogger(log)
	node.SetLogger(log)

	engine := graph.Shared(
		graph.WithFormat(monoFormat(o.sampleRate)),
		graph.WithBlockSize(o.block),
	)
	defer func() { _ = graph.ShutdownShared() }()

	host := node.NewHost(effects.DefaultRegistry(), engine, node.WithLogger(log))
	defer func() { _ = host.Close() }()

	eq, err := host.NewNode(effects.PeakingEQDescription,
		node.WithValue("centerFrequency", o.freq),
		node.WithValue("gain", o.gain),
		node.WithValue("q", o.q),
		node.WithStarted(true),
	)
	if err != nil {
		return fmt.Errorf("create equalizer: %w", err)
	}

	rv, err := host.NewNode(effects.CostelloReverbDescription,
		node.WithValue("feedback", o.feedback),
		node.WithValue("cutoffFrequency", o.cutoff),
		node.WithInput(eq),
		node.WithStarted(!o.dry),
	)
	if err != nil {
		return fmt.Errorf("create reverb: %w", err)
	}

	rv.OnChange(func(c node.Change) {
		log.Info("reverb parameter changed by unit", zap.String("name", c.Name), zap.Float64("value", c.Value))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, n := range []*node.Node{eq, rv} {
		err := n.Wait(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", n.Name(), err)
		}

		if err := n.ActivationErr(); err != nil {
			return fmt.Errorf("%s: %w", n.Name(), err)
		}
	}

	r := newRenderer(engine, o.tone, o.amplitude)
	frames := int(o.seconds * o.sampleRate)

	in, out := r.render(frames)

	err = report(os.Stdout, o, in, out, []*node.Node{eq, rv})
	if err != nil {
		return err
	}

	if !o.play {
		return nil
	}

	return play(r, int(o.sampleRate), time.Duration(o.seconds*float64(time.Second)))
}

func report(w io.Writer, o options, in, out []float64, nodes []*node.Node) error {
	an, err := spectrum.NewAnalyzer(8192)
	if err != nil {
		return err
	}

	domFreq, domMag, err := an.Dominant(out, o.sampleRate)
	if err != nil {
		return err
	}

	toneIn, err := toneAmplitude(in, o.tone, o.sampleRate)
	if err != nil {
		return err
	}

	toneOut, err := toneAmplitude(out, o.tone, o.sampleRate)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t", n.Name(), n.Description(), n.State())

		for _, d := range n.Descriptors() {
			v, _ := n.Get(d.Name)
			fmt.Fprintf(tw, "%s=%g%s ", d.Name, v, d.Unit)
		}

		fmt.Fprintln(tw)
	}

	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "Signal\tRMS [dB]\tPeak\tTone %.0f Hz\n", o.tone)
	fmt.Fprintf(tw, "------\t--------\t----\t-----------\n")
	fmt.Fprintf(tw, "input\t%.2f\t%.4f\t%.4f\n", core.LinearToDB(core.RMS(in)), peak(in), toneIn)
	fmt.Fprintf(tw, "output\t%.2f\t%.4f\t%.4f\n", core.LinearToDB(core.RMS(out)), peak(out), toneOut)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "dominant output frequency\t%.1f Hz (magnitude %.4f)\n", domFreq, domMag)

	return tw.Flush()
}

func toneAmplitude(sig []float64, freq, sampleRate float64) (float64, error) {
	g, err := spectrum.NewGoertzel(freq, sampleRate)
	if err != nil {
		return 0, err
	}

	g.ProcessBlock(sig)

	return g.Amplitude(), nil
}

func peak(sig []float64) float64 {
	p := 0.0
	for _, v := range sig {
		p = max(p, v, -v)
	}

	return p
}
