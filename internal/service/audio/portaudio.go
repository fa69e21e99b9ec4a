package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Частоты, которые проверяются при выводе списка устройств.
var probeRates = []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 96000}

// PortAudio драйвер записи поверх PortAudio (нужна portaudio DLL/so рядом с бинарём или в PATH).
// PortAudio сам конвертирует поток в запрошенный тип буфера, поэтому устройства
// отдаются как float32; для u16 буферов в PortAudio типа нет.
type PortAudio struct{}

// NewPortAudio инициализирует PortAudio. Вызывающий обязан вызвать Close.
func NewPortAudio() (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	return &PortAudio{}, nil
}

func (p *PortAudio) Close() error { return portaudio.Terminate() }

func (p *PortAudio) Devices() ([]DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()

	out := make([]DeviceInfo, 0, len(devs))
	for _, d := range devs {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, p.info(d, def))
	}
	return out, nil
}

func (p *PortAudio) DefaultInput() (DeviceInfo, error) {
	d, err := portaudio.DefaultInputDevice()
	if err != nil {
		return DeviceInfo{}, err
	}
	if d == nil || d.MaxInputChannels <= 0 {
		return DeviceInfo{}, ErrNoDefaultDevice
	}
	return p.info(d, d), nil
}

func (p *PortAudio) info(d, def *portaudio.DeviceInfo) DeviceInfo {
	info := DeviceInfo{
		Name:        d.Name,
		Channels:    min(d.MaxInputChannels, 2),
		DefaultRate: int(d.DefaultSampleRate),
		Format:      FormatFloat32,
		Default:     def != nil && d.Name == def.Name && d.HostApi == def.HostApi,
		ref:         d,
	}
	for _, r := range probeRates {
		if p.Supports(info, StreamFormat{Format: info.Format, Channels: info.Channels, Rate: r}) {
			info.SupportedRates = append(info.SupportedRates, r)
		}
	}
	return info
}

func (p *PortAudio) params(dev DeviceInfo, f StreamFormat, frames int) (portaudio.StreamParameters, error) {
	d, ok := dev.ref.(*portaudio.DeviceInfo)
	if !ok || d == nil {
		return portaudio.StreamParameters{}, errors.New("portaudio: device handle missing")
	}
	if frames <= 0 {
		frames = portaudio.FramesPerBufferUnspecified
	}
	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   d,
			Channels: f.Channels,
			Latency:  d.DefaultLowInputLatency,
		},
		SampleRate:      float64(f.Rate),
		FramesPerBuffer: frames,
	}, nil
}

func (p *PortAudio) Supports(dev DeviceInfo, f StreamFormat) bool {
	params, err := p.params(dev, f, 0)
	if err != nil {
		return false
	}
	switch f.Format {
	case FormatInt16:
		return portaudio.IsFormatSupported(params, func(in []int16) {}) == nil
	case FormatFloat32:
		return portaudio.IsFormatSupported(params, func(in []float32) {}) == nil
	default:
		return false
	}
}

func (p *PortAudio) Open(dev DeviceInfo, f StreamFormat, frames int, sink Sink) (Stream, error) {
	params, err := p.params(dev, f, frames)
	if err != nil {
		return nil, err
	}
	var s *portaudio.Stream
	switch f.Format {
	case FormatInt16:
		s, err = portaudio.OpenStream(params, func(in []int16) { sink.WriteInt16(in) })
	case FormatFloat32:
		s, err = portaudio.OpenStream(params, func(in []float32) { sink.WriteFloat32(in) })
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Format)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
