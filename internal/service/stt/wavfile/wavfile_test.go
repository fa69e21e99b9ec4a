package wavfile

import (
	"path/filepath"
	"testing"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	in := []int16{0, 1000, -1000, 32767, -32768, 5}
	if err := Write(path, in, 16000); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, rate, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rate != 16000 {
		t.Errorf("rate = %d", rate)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestReadInvalid(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("expected error for missing file")
	}
}
