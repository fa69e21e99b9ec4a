package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// Gate определяет, есть ли в записи речь, до отправки её распознавателю.
type Gate struct {
	vad        *webrtcvad.VAD
	sampleRate int
	minFrames  int // Сколько голосовых кадров по 10 мс нужно, чтобы считать запись речью
}

// New создаёт детектор. mode 0..3: чем больше, тем агрессивнее отсев не-речи.
func New(sampleRate, mode, minFrames int) (*Gate, error) {
	switch sampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, fmt.Errorf("vad: invalid sample rate %d, must be one of 8000/16000/32000/48000", sampleRate)
	}
	mode = max(0, min(3, mode))
	if minFrames <= 0 {
		minFrames = 3
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("vad: create: %w", err)
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("vad: set mode: %w", err)
	}
	return &Gate{vad: v, sampleRate: sampleRate, minFrames: minFrames}, nil
}

// HasSpeech true, если в записи не меньше minFrames голосовых кадров.
func (g *Gate) HasSpeech(samples []int16) (bool, error) {
	n, err := g.VoicedFrames(samples)
	if err != nil {
		return false, err
	}
	return n >= g.minFrames, nil
}

// VoicedFrames считает 10-мс кадры, помеченные как речь. Хвост короче кадра не проверяется.
func (g *Gate) VoicedFrames(samples []int16) (int, error) {
	frame := g.sampleRate / 100
	buf := make([]byte, frame*2)
	voiced := 0
	for i := 0; i+frame <= len(samples); i += frame {
		for j, s := range samples[i : i+frame] {
			buf[2*j] = byte(s)
			buf[2*j+1] = byte(s >> 8)
		}
		active, err := g.vad.Process(g.sampleRate, buf)
		if err != nil {
			return voiced, fmt.Errorf("vad: process: %w", err)
		}
		if active {
			voiced++
		}
	}
	return voiced, nil
}
