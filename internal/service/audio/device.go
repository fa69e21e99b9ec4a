package audio

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound    = errors.New("audio: input device not found")
	ErrNoDefaultDevice   = errors.New("audio: no default input device available")
	ErrUnsupportedFormat = errors.New("audio: unsupported sample format")
	ErrRateUnsupported   = errors.New("audio: requested sample rate not supported by device")
	ErrBufferAccess      = errors.New("audio: failed accessing capture buffer")
	ErrCaptureBusy       = errors.New("audio: capture already in progress")
)

// StreamError ошибка построения или запуска потока записи.
type StreamError struct {
	Op  string // build|start
	Err error
}

func (e *StreamError) Error() string { return fmt.Sprintf("audio: %s stream: %v", e.Op, e.Err) }
func (e *StreamError) Unwrap() error { return e.Err }

// DeviceInfo устройство записи, как его видит драйвер.
type DeviceInfo struct {
	Name           string
	Channels       int          // Каналы по умолчанию для записи
	DefaultRate    int          // Частота по умолчанию
	Format         SampleFormat // Нативная кодировка
	SupportedRates []int        // Частоты, прошедшие проверку драйвером (для вывода списка)
	Default        bool

	ref any // Драйверный дескриптор устройства
}

// StreamFormat согласованные параметры потока.
type StreamFormat struct {
	Format   SampleFormat
	Channels int
	Rate     int
}

func (f StreamFormat) String() string {
	return fmt.Sprintf("%d ch @ %d Hz, %s", f.Channels, f.Rate, f.Format)
}

// Sink принимает сырые буферы из аудио-колбэка.
// Вызывается из потока звуковой подсистемы и не должен блокироваться надолго.
type Sink interface {
	WriteInt16(in []int16)
	WriteUint16(in []uint16)
	WriteFloat32(in []float32)
}

// Stream открытый поток записи.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Driver звуковая подсистема (PortAudio в проде, фейк в тестах).
type Driver interface {
	Devices() ([]DeviceInfo, error)
	DefaultInput() (DeviceInfo, error)
	Supports(dev DeviceInfo, f StreamFormat) bool
	Open(dev DeviceInfo, f StreamFormat, framesPerBuffer int, sink Sink) (Stream, error)
}

// SelectDevice ищет устройство по точному имени, либо берёт устройство по умолчанию.
func SelectDevice(d Driver, name string) (DeviceInfo, error) {
	if name == "" {
		dev, err := d.DefaultInput()
		if err != nil {
			return DeviceInfo{}, ErrNoDefaultDevice
		}
		return dev, nil
	}
	devs, err := d.Devices()
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("audio: list devices: %w", err)
	}
	for _, dev := range devs {
		if dev.Name == name {
			return dev, nil
		}
	}
	return DeviceInfo{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}
