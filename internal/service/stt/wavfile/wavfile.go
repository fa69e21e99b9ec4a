// Package wavfile читает и пишет 16-bit mono PCM WAV через go-audio.
package wavfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Write сохраняет сэмплы в файл path (16 бит, моно).
func Write(path string, samples []int16, sampleRate int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav: encode: %w", err)
	}
	return enc.Close()
}

// Read загружает WAV целиком. Многоканальная запись сводится в моно.
func Read(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("wav: неверный или неподдерживаемый файл")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wav decode: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return nil, 0, errors.New("wav: пустой буфер или отсутствует формат")
	}
	if buf.SourceBitDepth != 16 {
		return nil, 0, fmt.Errorf("wav: требуется 16-bit PCM, получено %d-bit", buf.SourceBitDepth)
	}

	ch := buf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}
	out := make([]int16, len(buf.Data)/ch)
	for i := range out {
		sum := 0
		for c := 0; c < ch; c++ {
			sum += buf.Data[i*ch+c]
		}
		out[i] = toInt16(sum / ch)
	}
	return out, buf.Format.SampleRate, nil
}

func toInt16(v int) int16 {
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}
