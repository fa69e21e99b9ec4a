package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RatePolicy поведение, если устройство не поддерживает запрошенную частоту.
type RatePolicy string

const (
	// RateFallback берёт частоту устройства по умолчанию и пишет предупреждение.
	RateFallback RatePolicy = "fallback"
	// RateStrict завершает открытие ошибкой ErrRateUnsupported.
	RateStrict RatePolicy = "strict"
)

type Options struct {
	DeviceName      string
	SampleRate      int
	RatePolicy      RatePolicy
	FramesPerBuffer int
	Debug           bool // Диагностика уровня сигнала и выравнивание громкости
}

// Capturer записывает короткие фрагменты с выбранного устройства.
// Одновременно активна не более одной записи.
type Capturer struct {
	driver Driver
	device DeviceInfo
	format StreamFormat
	opts   Options
	logger *zap.SugaredLogger

	mu     sync.Mutex
	active *session
}

// Open выбирает устройство и согласует формат потока.
func Open(driver Driver, opts Options, logger *zap.SugaredLogger) (*Capturer, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = TargetRate
	}
	if opts.RatePolicy == "" {
		opts.RatePolicy = RateFallback
	}

	dev, err := SelectDevice(driver, opts.DeviceName)
	if err != nil {
		return nil, err
	}
	switch dev.Format {
	case FormatInt16, FormatUint16, FormatFloat32:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, dev.Format)
	}

	channels := dev.Channels
	if channels <= 0 {
		channels = 1
	}
	format := StreamFormat{Format: dev.Format, Channels: channels, Rate: opts.SampleRate}
	if !driver.Supports(dev, format) {
		if opts.RatePolicy == RateStrict {
			return nil, fmt.Errorf("%w: %d Hz on %q", ErrRateUnsupported, opts.SampleRate, dev.Name)
		}
		logger.Warnw("Requested sample rate not supported, using device default",
			"requested", opts.SampleRate, "using", dev.DefaultRate, "device", dev.Name)
		format.Rate = dev.DefaultRate
	}

	logger.Infow("Audio input ready", "device", dev.Name, "format", format.String())
	return &Capturer{driver: driver, device: dev, format: format, opts: opts, logger: logger}, nil
}

func (c *Capturer) Device() DeviceInfo   { return c.device }
func (c *Capturer) Format() StreamFormat { return c.format }

// Capture записывает звук и возвращает моно int16 в 16 кГц.
// duration > 0: запись фиксированной длительности, Stop на неё не влияет.
// duration == 0: запись идёт до Stop. В обоих случаях отмена ctx прерывает запись.
func (c *Capturer) Capture(ctx context.Context, duration time.Duration) ([]int16, error) {
	return c.CaptureUntil(ctx, duration, nil)
}

// CaptureUntil как Capture, но при duration == 0 запись завершается ещё и закрытием stop.
// Канал, закрытый до начала записи, останавливает её сразу после запуска потока.
func (c *Capturer) CaptureUntil(ctx context.Context, duration time.Duration, stop <-chan struct{}) ([]int16, error) {
	s, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer c.finish(s)

	stream, err := c.driver.Open(c.device, c.format, c.opts.FramesPerBuffer, s)
	if err != nil {
		return nil, &StreamError{Op: "build", Err: err}
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return nil, &StreamError{Op: "start", Err: err}
	}

	var ctxErr error
	if duration > 0 {
		t := time.NewTimer(duration)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			ctxErr = context.Cause(ctx)
		}
	} else {
		select {
		case <-s.stopCh:
		case <-stop:
		case <-ctx.Done():
			ctxErr = context.Cause(ctx)
		}
	}
	if err := stream.Stop(); err != nil {
		c.logger.Warnw("Failed to stop audio stream", "error", err)
	}
	if ctxErr != nil {
		return nil, ctxErr
	}

	data, err := s.drain()
	if err != nil {
		return nil, err
	}
	c.logger.Debugw("Capture finished", "samples", len(data), "elapsed", time.Since(s.startedAt).String())

	if c.opts.Debug && len(data) > 0 {
		var scaled bool
		data, scaled = Level(data)
		peak, rms := Measure(data)
		c.logger.Infow("Audio level",
			"peak_pct", fmt.Sprintf("%.1f", float64(peak)/32767*100),
			"rms_pct", fmt.Sprintf("%.1f", rms/32767*100),
			"scaled", scaled)
	}

	if c.format.Rate != TargetRate {
		data = Resample(data, c.format.Rate, TargetRate)
	}
	return data, nil
}

// Stop завершает текущую запись без фиксированной длительности.
func (c *Capturer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.requestStop()
	}
}

// Recording сообщает, идёт ли сейчас запись.
func (c *Capturer) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

func (c *Capturer) begin() (*session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return nil, ErrCaptureBusy
	}
	c.active = newSession(c.format.Channels)
	return c.active, nil
}

func (c *Capturer) finish(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == s {
		c.active = nil
	}
}

// session буфер одной записи. Пополняется из колбэка, замораживается при drain.
type session struct {
	startedAt time.Time
	channels  int

	mu     sync.Mutex
	buf    []int16
	frozen bool
	failed bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newSession(channels int) *session {
	return &session{startedAt: time.Now(), channels: channels, stopCh: make(chan struct{})}
}

func (s *session) requestStop() { s.stopOnce.Do(func() { close(s.stopCh) }) }

func (s *session) WriteInt16(in []int16) {
	s.append(func() []int16 { return NormalizeInt16(in, s.channels) })
}

func (s *session) WriteUint16(in []uint16) {
	s.append(func() []int16 { return NormalizeUint16(in, s.channels) })
}

func (s *session) WriteFloat32(in []float32) {
	s.append(func() []int16 { return NormalizeFloat32(in, s.channels) })
}

// append конвертирует буфер колбэка и дописывает его. Паника внутри колбэка
// помечает запись испорченной вместо падения аудио-потока.
func (s *session) append(convert func() []int16) {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.failed = true
			s.mu.Unlock()
		}
	}()
	mono := convert()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	s.buf = append(s.buf, mono...)
}

func (s *session) drain() ([]int16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
	if s.failed {
		return nil, ErrBufferAccess
	}
	out := s.buf
	s.buf = nil
	return out, nil
}
