package audio

import (
	"math"
	"reflect"
	"testing"
)

func TestSampleConversion(t *testing.T) {
	if got := FromUint16(32768); got != 0 {
		t.Errorf("FromUint16(32768) = %d, want 0", got)
	}
	if got := FromUint16(0); got != -32768 {
		t.Errorf("FromUint16(0) = %d, want -32768", got)
	}
	if got := FromUint16(65535); got != 32767 {
		t.Errorf("FromUint16(65535) = %d, want 32767", got)
	}

	tests := []struct {
		in   float32
		want int16
	}{
		{1.5, 32767},
		{1, 32767},
		{-1.5, -32767},
		{0, 0},
		{0.5, 16383},
	}
	for _, tt := range tests {
		if got := FromFloat32(tt.in); got != tt.want {
			t.Errorf("FromFloat32(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDownmix(t *testing.T) {
	got := Downmix([]int16{100, 200, -3, 0, 7}, 2)
	want := []int16{150, -1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Downmix = %v, want %v", got, want)
	}
	mono := []int16{1, 2, 3}
	if got := Downmix(mono, 1); !reflect.DeepEqual(got, mono) {
		t.Errorf("mono must pass through, got %v", got)
	}
}

func TestNormalizeStereoFloat(t *testing.T) {
	got := NormalizeFloat32([]float32{1, 1, -1, 0}, 2)
	want := []int16{32767, -16383}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeFloat32 = %v, want %v", got, want)
	}
}

func TestResampleDecimation(t *testing.T) {
	got := Resample([]int16{0, 100, 200, 300, 400, 600}, 2, 1)
	want := []int16{50, 250, 500}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resample = %v, want %v", got, want)
	}
}

func TestResampleLength(t *testing.T) {
	rates := []int{8000, 11025, 16000, 22050, 44100, 48000, 96000}
	sizes := []int{2, 3, 17, 441, 1000, 48000}
	for _, r := range rates {
		for _, n := range sizes {
			in := make([]int16, n)
			got := len(Resample(in, r, TargetRate))
			var want int
			switch {
			case r == TargetRate:
				want = n
			case r%TargetRate == 0:
				want = n / (r / TargetRate)
			default:
				want = (n*TargetRate + r - 1) / r
				if want < 1 {
					want = 1
				}
			}
			if got != want {
				t.Errorf("len(Resample(%d samples, %d→16000)) = %d, want %d", n, r, got, want)
			}
		}
	}
}

func TestResampleIdentityAndShort(t *testing.T) {
	in := []int16{42}
	if got := Resample(in, 44100, 16000); !reflect.DeepEqual(got, in) {
		t.Errorf("single sample must pass through, got %v", got)
	}
	in = []int16{1, 2, 3}
	if got := Resample(in, 16000, 16000); !reflect.DeepEqual(got, in) {
		t.Errorf("equal rates must pass through, got %v", got)
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	got := Resample([]int16{0, 100}, 1, 2)
	want := []int16{0, 50, 100, 100}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resample up = %v, want %v", got, want)
	}
}

func TestMeasure(t *testing.T) {
	peak, rms := Measure([]int16{3, -4})
	if peak != 4 {
		t.Errorf("peak = %d", peak)
	}
	if math.Abs(rms-math.Sqrt(12.5)) > 1e-9 {
		t.Errorf("rms = %v", rms)
	}
	if peak, _ := Measure([]int16{-32768}); peak != 32767 {
		t.Errorf("peak of -32768 = %d, want saturated 32767", peak)
	}
	if p, r := Measure(nil); p != 0 || r != 0 {
		t.Errorf("empty = %d %v", p, r)
	}
}

func TestLevel(t *testing.T) {
	quiet := []int16{100, -200}
	out, scaled := Level(quiet)
	if scaled || !reflect.DeepEqual(out, quiet) {
		t.Errorf("quiet input must not change: %v %v", out, scaled)
	}

	loud := []int16{32767, -32767, 1000}
	out, scaled = Level(loud)
	if !scaled {
		t.Fatal("loud input must be scaled")
	}
	peak, _ := Measure(out)
	if limit := 26213; peak > limit || peak < limit-1 {
		t.Errorf("peak after leveling = %d, want ≈%d", peak, limit)
	}
	if loud[0] != 32767 {
		t.Error("input must not be modified")
	}
}
