package unit

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-fxhost/param"
)

func testTable() *param.Table {
	return param.MustTable(param.New(0, "gain").Range(0, 2).Default(1).Build())
}

func TestBaseStartStop(t *testing.T) {
	t.Parallel()

	b := NewBase(testTable(), Format{SampleRate: 48000, Channels: 1})
	if b.IsStarted() {
		t.Fatal("new base must start stopped")
	}

	if err := b.Start(); err != nil {
		t.Fatalf("Start returned unexpected error: %v", err)
	}

	if !b.IsStarted() {
		t.Fatal("expected started after Start")
	}

	b.Stop()

	if b.IsStarted() {
		t.Fatal("expected stopped after Stop")
	}
}

func TestBaseStartHookFailure(t *testing.T) {
	t.Parallel()

	errBusy := errors.New("dsp resources exhausted")
	b := NewBase(testTable(), Format{SampleRate: 48000, Channels: 1})
	b.OnStart(func() error { return errBusy })

	if err := b.Start(); !errors.Is(err, errBusy) {
		t.Fatalf("expected hook error, got: %v", err)
	}

	if b.IsStarted() {
		t.Fatal("failed start must leave the unit stopped")
	}
}

func TestBaseParameters(t *testing.T) {
	t.Parallel()

	b := NewBase(testTable(), Format{SampleRate: 44100, Channels: 1})

	v, err := b.Parameters().ValueOf("gain")
	if err != nil || v != 1 {
		t.Fatalf("gain = %v, %v; want default 1", v, err)
	}
}

func TestFormatCompatible(t *testing.T) {
	t.Parallel()

	mono48 := Format{SampleRate: 48000, Channels: 1}

	tests := []struct {
		name  string
		other Format
		want  bool
	}{
		{name: "identical", other: mono48, want: true},
		{name: "channel mismatch", other: Format{SampleRate: 48000, Channels: 2}, want: false},
		{name: "rate mismatch", other: Format{SampleRate: 44100, Channels: 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := mono48.Compatible(tt.other); got != tt.want {
				t.Fatalf("Compatible(%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}
