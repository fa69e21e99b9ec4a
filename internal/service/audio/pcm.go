package audio

import (
	"fmt"
	"math"
)

// TargetRate частота, в которой отдаются записи распознавателю.
const TargetRate = 16000

// SampleFormat нативная кодировка сэмплов устройства.
type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatInt16
	FormatUint16
	FormatFloat32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "i16"
	case FormatUint16:
		return "u16"
	case FormatFloat32:
		return "f32"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FromInt16 конвертация без изменений.
func FromInt16(s int16) int16 { return s }

// FromUint16 центрирует беззнаковый сэмпл вокруг нуля: 32768 → 0.
func FromUint16(s uint16) int16 { return int16(int32(s) - 32768) }

// FromFloat32 ограничивает сэмпл диапазоном [-1,1] и масштабирует на 32767.
func FromFloat32(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	return int16(s * math.MaxInt16)
}

// Downmix сводит чередующиеся каналы в моно целочисленным средним по кадру.
// Неполный хвостовой кадр отбрасывается.
func Downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	out := make([]int16, 0, len(samples)/channels)
	for i := 0; i+channels <= len(samples); i += channels {
		var sum int32
		for _, s := range samples[i : i+channels] {
			sum += int32(s)
		}
		out = append(out, int16(sum/int32(channels)))
	}
	return out
}

// NormalizeInt16 переводит буфер колбэка в моно int16.
func NormalizeInt16(in []int16, channels int) []int16 {
	out := make([]int16, len(in))
	copy(out, in)
	return Downmix(out, channels)
}

func NormalizeUint16(in []uint16, channels int) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		out[i] = FromUint16(s)
	}
	return Downmix(out, channels)
}

func NormalizeFloat32(in []float32, channels int) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		out[i] = FromFloat32(s)
	}
	return Downmix(out, channels)
}

// Measure возвращает пиковую амплитуду и RMS.
func Measure(samples []int16) (peak int, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	var sumSq uint64
	for _, s := range samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
		sumSq += uint64(int64(s) * int64(s))
	}
	if peak > math.MaxInt16 {
		peak = math.MaxInt16
	}
	return peak, math.Sqrt(float64(sumSq) / float64(len(samples)))
}

// Level уменьшает громкость записи до 80% полной шкалы, если пик выше.
// Тихие записи не усиливаются. Вход не изменяется.
func Level(samples []int16) ([]int16, bool) {
	target := float64(math.MaxInt16) * 0.8
	peak, _ := Measure(samples)
	if float64(peak) <= target {
		return samples, false
	}
	scale := target / float64(peak)
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = int16(float64(s) * scale)
	}
	return out, true
}

// Resample переводит запись из src в dst Гц.
// Кратные частоты понижаются усреднением блоков, остальные: линейной интерполяцией.
func Resample(samples []int16, src, dst int) []int16 {
	if src == dst || len(samples) < 2 || src <= 0 || dst <= 0 {
		return samples
	}
	if src%dst == 0 {
		if factor := src / dst; factor > 1 {
			out := make([]int16, 0, len(samples)/factor)
			for i := 0; i+factor <= len(samples); i += factor {
				var sum int32
				for _, s := range samples[i : i+factor] {
					sum += int32(s)
				}
				out = append(out, int16(sum/int32(factor)))
			}
			return out
		}
	}

	// ceil(N*dst/src) в целых, без ошибки округления float
	n := (len(samples)*dst + src - 1) / src
	if n < 1 {
		n = 1
	}
	step := float64(src) / float64(dst)
	last := len(samples) - 1
	out := make([]int16, n)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx > last {
			idx = last
		}
		frac := pos - float64(idx)
		next := idx + 1
		if next > last {
			next = last
		}
		s0, s1 := float64(samples[idx]), float64(samples[next])
		out[i] = int16(s0 + (s1-s0)*frac)
	}
	return out
}
