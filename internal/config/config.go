package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DefaultPath файл конфигурации, если путь не передан аргументом.
const DefaultPath = "config.toml"

type Config struct {
	Audio         AudioConfig         `toml:"audio"`
	Hotkey        HotkeyConfig        `toml:"hotkey"`
	Feedback      FeedbackConfig      `toml:"feedback"`
	Classifier    ClassifierConfig    `toml:"classifier"`
	Transcription TranscriptionConfig `toml:"transcription"`
	System        SystemConfig        `toml:"system"`
	Logging       LoggingConfig       `toml:"logging"`

	Files        map[string]string `toml:"files"`        // ключ → путь к файлу (относительные пути от рабочей директории)
	Applications map[string]string `toml:"applications"` // ключ → команда запуска приложения

	GoogleTTS GoogleTTSConfig `toml:"google_tts"`
	YandexTTS YandexTTSConfig `toml:"yandex_tts"`
	GeminiTTS GeminiTTSConfig `toml:"gemini_tts"`
}

// AudioConfig параметры захвата с микрофона.
type AudioConfig struct {
	DeviceName          string `toml:"device_name" env:"BUDDY_AUDIO_DEVICE"`                     // Точное имя устройства; пусто: устройство по умолчанию
	CaptureDurationSecs int    `toml:"capture_duration_secs" env:"BUDDY_CAPTURE_DURATION_SECS"`  // 0: запись до повторного нажатия хоткея
	SampleRate          int    `toml:"sample_rate" env:"BUDDY_SAMPLE_RATE"`                      // Желаемая частота устройства
	RatePolicy          string `toml:"rate_policy" env:"BUDDY_RATE_POLICY"`                      // fallback|strict
	FramesPerBuffer     int    `toml:"frames_per_buffer" env:"BUDDY_FRAMES_PER_BUFFER"`          // Размер буфера колбэка PortAudio
	VAD                 bool   `toml:"vad" env:"BUDDY_VAD"`                                      // Отбрасывать записи без речи до транскрипции
	VADMode             int    `toml:"vad_mode" env:"BUDDY_VAD_MODE"`                            // Агрессивность WebRTC VAD 0..3
}

// HotkeyConfig глобальная комбинация клавиш.
type HotkeyConfig struct {
	Key    string `toml:"key" env:"BUDDY_HOTKEY"`
	Manual bool   `toml:"manual" env:"BUDDY_HOTKEY_MANUAL"` // Вместо глобального хоткея ждать Enter в консоли
}

// FeedbackConfig звуковая и голосовая обратная связь.
type FeedbackConfig struct {
	Mode         string  `toml:"mode" env:"BUDDY_FEEDBACK_MODE"` // sound|tts|both|none
	SuccessSound string  `toml:"success_sound" env:"BUDDY_SUCCESS_SOUND"`
	ErrorSound   string  `toml:"error_sound" env:"BUDDY_ERROR_SOUND"`
	TTSService   string  `toml:"tts_service" env:"BUDDY_TTS_SERVICE"` // google|yandex|gemini; пусто: только системные уведомления
	TTSVoice     string  `toml:"tts_voice" env:"BUDDY_TTS_VOICE"`     // default: голос провайдера
	Notify       bool    `toml:"notify" env:"BUDDY_NOTIFY"`           // Дублировать ошибки всплывающим уведомлением
	VolumeDB     float64 `toml:"volume_db" env:"BUDDY_VOLUME_DB"`     // Громкость звуков, dB (отрицательные: тише)
	CopyAnswer   bool    `toml:"copy_answer" env:"BUDDY_COPY_ANSWER"` // Копировать ответы ассистента в буфер обмена
}

// ClassifierConfig удалённый классификатор намерений.
type ClassifierConfig struct {
	Provider      string        `toml:"provider" env:"BUDDY_CLASSIFIER_PROVIDER"` // ollama|openai
	Endpoint      string        `toml:"endpoint" env:"BUDDY_CLASSIFIER_ENDPOINT"`
	Model         string        `toml:"model" env:"BUDDY_CLASSIFIER_MODEL"`
	TimeoutSecs   int           `toml:"timeout_secs" env:"BUDDY_CLASSIFIER_TIMEOUT_SECS"`
	ReadyRetries  int           `toml:"ready_retries" env:"BUDDY_CLASSIFIER_READY_RETRIES"` // Попыток проверки готовности при старте
	ReadyInterval time.Duration `toml:"-" env:"BUDDY_CLASSIFIER_READY_INTERVAL"`
	MinConfidence float64       `toml:"min_confidence" env:"BUDDY_MIN_CONFIDENCE"` // Ниже порога намерение считается неизвестным
	APIKey        string        `toml:"-" env:"OPENAI_API_KEY"`                     // Только для provider=openai
}

// TranscriptionConfig движок распознавания речи.
type TranscriptionConfig struct {
	Engine      string `toml:"engine" env:"BUDDY_STT_ENGINE"` // whisper-cli|whisper-http|yandex|google
	Binary      string `toml:"binary" env:"BUDDY_WHISPER_BIN"`
	ModelPath   string `toml:"model_path" env:"BUDDY_WHISPER_MODEL"`
	ServerURL   string `toml:"server_url" env:"BUDDY_WHISPER_URL"`
	Language    string `toml:"language" env:"BUDDY_STT_LANGUAGE"`
	Threads     int    `toml:"threads" env:"BUDDY_STT_THREADS"`
	TimeoutSecs int    `toml:"timeout_secs" env:"BUDDY_STT_TIMEOUT_SECS"`
	YandexKey   string `toml:"-" env:"YC_STT_API_KEY"`
}

// SystemConfig разрешённые системные действия.
type SystemConfig struct {
	VolumeMute bool `toml:"volume_mute"`
	VolumeUp   bool `toml:"volume_up"`
	VolumeDown bool `toml:"volume_down"`
	VolumeSet  bool `toml:"volume_set"`
	Sleep      bool `toml:"sleep"`
	Shutdown   bool `toml:"shutdown"`
	Restart    bool `toml:"restart"`
	Lock       bool `toml:"lock"`
}

type LoggingConfig struct {
	Debug      bool `toml:"debug" env:"BUDDY_DEBUG"`
	WhisperLog bool `toml:"whisper_log" env:"BUDDY_WHISPER_LOG"` // Показывать stderr whisper-cli
}

// YandexTTSConfig конфигурация для синтеза речи через Yandex SpeechKit.
type YandexTTSConfig struct {
	APIKey  string `toml:"-" env:"YC_TTS_API_KEY"` // Ключ берём из .env/ENV
	Voice   string `toml:"voice" env:"YC_TTS_VOICE"`
	Format  string `toml:"format" env:"YC_TTS_FORMAT"` // mp3|wav
	Speed   string `toml:"speed" env:"YC_TTS_SPEED"`
	Emotion string `toml:"emotion" env:"YC_TTS_EMOTION"`
	Volume  int    `toml:"volume" env:"YC_TTS_VOLUME"` // 0-100; 100: не изменять громкость
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	Language     string  `toml:"language" env:"GOOGLE_TTS_LANGUAGE"`
	Voice        string  `toml:"voice" env:"GOOGLE_TTS_VOICE"`
	SpeakingRate float64 `toml:"speaking_rate" env:"GOOGLE_TTS_SPEAKING_RATE"`
	Pitch        float64 `toml:"pitch" env:"GOOGLE_TTS_PITCH"`
	VolumeGainDb float64 `toml:"volume_db" env:"GOOGLE_TTS_VOLUME_DB"`
}

// GeminiTTSConfig конфигурация Gemini-TTS (Cloud Text-to-Speech v1beta1).
type GeminiTTSConfig struct {
	Endpoint  string `toml:"endpoint" env:"GEMINI_TTS_ENDPOINT"`
	ModelName string `toml:"model_name" env:"GEMINI_TTS_MODEL"`
	Language  string `toml:"language" env:"GEMINI_TTS_LANGUAGE"`
	VoiceName string `toml:"voice" env:"GEMINI_TTS_VOICE"`
	Prompt    string `toml:"prompt" env:"GEMINI_TTS_PROMPT"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются файлом, .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		Audio: AudioConfig{
			CaptureDurationSecs: 3,
			SampleRate:          16000,
			RatePolicy:          "fallback",
			FramesPerBuffer:     512,
			VADMode:             2,
		},
		Hotkey: HotkeyConfig{Key: "ctrl+alt+b"},
		Feedback: FeedbackConfig{
			Mode:     "tts",
			TTSVoice: "default",
		},
		Classifier: ClassifierConfig{
			Provider:      "ollama",
			Endpoint:      "http://localhost:11434/api/chat",
			Model:         "deepseek-r1:latest",
			TimeoutSecs:   5,
			ReadyRetries:  10,
			ReadyInterval: time.Second,
		},
		Transcription: TranscriptionConfig{
			Engine:      "whisper-cli",
			Binary:      "whisper-cli",
			ModelPath:   "models/ggml-base.en.bin",
			TimeoutSecs: 30,
		},
		System: SystemConfig{
			VolumeMute: true,
			VolumeUp:   true,
			VolumeDown: true,
			VolumeSet:  true,
			Sleep:      true,
			Shutdown:   true,
			Restart:    true,
			Lock:       true,
		},
		Files:        map[string]string{},
		Applications: map[string]string{},
		YandexTTS: YandexTTSConfig{
			Voice:   "filipp",
			Format:  "mp3",
			Speed:   "1.0",
			Emotion: "neutral",
			Volume:  100,
		},
		GoogleTTS: GoogleTTSConfig{
			Language:     "en-US",
			Voice:        "en-US-Standard-C",
			SpeakingRate: 1.0,
		},
		GeminiTTS: GeminiTTSConfig{
			ModelName: "gemini-2.5-flash-tts",
			Language:  "en-US",
			VoiceName: "Kore",
		},
	}
}

// Load собирает конфигурацию: дефолты → TOML-файл → .env/окружение.
// Ошибка чтения файла не фатальна: возвращаются дефолты вместе с ошибкой,
// вызывающий решает, логировать ли её.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	fileErr := cfg.readFile(path)
	if fileErr != nil {
		// Частично прочитанный файл не используем
		cfg = Defaults()
	}

	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("config: env: %w", err)
	}
	cfg.normalize()
	return cfg, fileErr
}

// FileError файл конфигурации не прочитан; не фатальна, используются дефолты.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("config: %s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Err: err}
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return &FileError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return nil
}

// normalize приводит строковые переключатели к нижнему регистру и чинит пустые карты.
func (c *Config) normalize() {
	c.Audio.RatePolicy = strings.ToLower(strings.TrimSpace(c.Audio.RatePolicy))
	c.Feedback.Mode = strings.ToLower(strings.TrimSpace(c.Feedback.Mode))
	c.Feedback.TTSService = strings.ToLower(strings.TrimSpace(c.Feedback.TTSService))
	c.Classifier.Provider = strings.ToLower(strings.TrimSpace(c.Classifier.Provider))
	c.Transcription.Engine = strings.ToLower(strings.TrimSpace(c.Transcription.Engine))
	if c.Files == nil {
		c.Files = map[string]string{}
	}
	if c.Applications == nil {
		c.Applications = map[string]string{}
	}
}

// Validate проверяет значения, без которых конвейер не запустится.
func (c *Config) Validate() error {
	var errs []error
	if c.Audio.CaptureDurationSecs < 0 {
		errs = append(errs, errors.New("audio.capture_duration_secs must be >= 0"))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, errors.New("audio.sample_rate must be positive"))
	}
	switch c.Audio.RatePolicy {
	case "fallback", "strict":
	default:
		errs = append(errs, fmt.Errorf("audio.rate_policy: unknown value %q", c.Audio.RatePolicy))
	}
	switch c.Feedback.Mode {
	case "sound", "tts", "both", "none":
	default:
		errs = append(errs, fmt.Errorf("feedback.mode: unknown value %q", c.Feedback.Mode))
	}
	switch c.Classifier.Provider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("classifier.provider: unknown value %q", c.Classifier.Provider))
	}
	if c.Classifier.MinConfidence < 0 || c.Classifier.MinConfidence > 1 {
		errs = append(errs, errors.New("classifier.min_confidence must be within [0,1]"))
	}
	return errors.Join(errs...)
}

// BindFlags регистрирует флаги CLI. Значения применяются ApplyFlags только если флаг задан явно,
// иначе файл и окружение перекрывались бы дефолтами флагов.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "путь к config.toml (также можно передать первым аргументом)")
	fs.Bool("debug", false, "включить режим дебага: подробные логи и диагностика уровня сигнала")
	fs.Bool("no-debug", false, "выключить режим дебага, даже если он включён в конфиге")
	fs.Bool("whisper-log", false, "показывать вывод whisper-cli")
	fs.Bool("no-whisper-log", false, "скрывать вывод whisper-cli")
	fs.String("hotkey", "", "комбинация клавиш, напр. ctrl+alt+b")
	fs.Bool("manual", false, "ждать Enter в консоли вместо глобального хоткея")
	fs.String("device", "", "точное имя устройства записи")
	fs.Int("duration", 0, "длительность записи в секундах")
	fs.String("feedback", "", "режим обратной связи: sound|tts|both|none")
	fs.String("classifier-endpoint", "", "адрес /api/chat классификатора")
	fs.String("classifier-model", "", "модель классификатора")
	fs.String("stt-engine", "", "движок распознавания: whisper-cli|whisper-http|yandex|google")
}

// ApplyFlags перекрывает конфигурацию явно заданными флагами.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) {
	if fs.Changed("debug") {
		cfg.Logging.Debug, _ = fs.GetBool("debug")
	}
	if v, _ := fs.GetBool("no-debug"); v {
		cfg.Logging.Debug = false
	}
	if fs.Changed("whisper-log") {
		cfg.Logging.WhisperLog, _ = fs.GetBool("whisper-log")
	}
	if v, _ := fs.GetBool("no-whisper-log"); v {
		cfg.Logging.WhisperLog = false
	}
	if fs.Changed("hotkey") {
		cfg.Hotkey.Key, _ = fs.GetString("hotkey")
	}
	if fs.Changed("manual") {
		cfg.Hotkey.Manual, _ = fs.GetBool("manual")
	}
	if fs.Changed("device") {
		cfg.Audio.DeviceName, _ = fs.GetString("device")
	}
	if fs.Changed("duration") {
		cfg.Audio.CaptureDurationSecs, _ = fs.GetInt("duration")
	}
	if fs.Changed("feedback") {
		cfg.Feedback.Mode, _ = fs.GetString("feedback")
	}
	if fs.Changed("classifier-endpoint") {
		cfg.Classifier.Endpoint, _ = fs.GetString("classifier-endpoint")
	}
	if fs.Changed("classifier-model") {
		cfg.Classifier.Model, _ = fs.GetString("classifier-model")
	}
	if fs.Changed("stt-engine") {
		cfg.Transcription.Engine, _ = fs.GetString("stt-engine")
	}
	cfg.normalize()
}

func (c *Config) CaptureDuration() time.Duration {
	return time.Duration(c.Audio.CaptureDurationSecs) * time.Second
}

func (c *Config) ClassifierTimeout() time.Duration {
	if c.Classifier.TimeoutSecs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Classifier.TimeoutSecs) * time.Second
}

// FileKeys ключи файлов в алфавитном порядке.
func (c *Config) FileKeys() []string { return sortedKeys(c.Files) }

// AppKeys ключи приложений в алфавитном порядке.
func (c *Config) AppKeys() []string { return sortedKeys(c.Applications) }

// EnabledActions включённые системные действия в фиксированном порядке.
func (c *Config) EnabledActions() []string {
	s := c.System
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(s.VolumeMute, "volume_mute")
	add(s.VolumeUp, "volume_up")
	add(s.VolumeDown, "volume_down")
	add(s.VolumeSet, "volume_set")
	add(s.Sleep, "sleep")
	add(s.Shutdown, "shutdown")
	add(s.Restart, "restart")
	add(s.Lock, "lock")
	return out
}

// TranscriptionPrompt подсказка для распознавания из известных команд:
// "Open resume. Launch chrome. Mute volume. ..." Пусто, если команд нет.
func (c *Config) TranscriptionPrompt() string {
	return strings.Join(c.TranscriptionPhrases(), " ")
}

// TranscriptionPhrases фразы известных команд по одной.
func (c *Config) TranscriptionPhrases() []string {
	var phrases []string
	for _, k := range c.FileKeys() {
		phrases = append(phrases, "Open "+k+".")
	}
	for _, k := range c.AppKeys() {
		phrases = append(phrases, "Launch "+k+".")
	}
	s := c.System
	add := func(on bool, phrase string) {
		if on {
			phrases = append(phrases, phrase)
		}
	}
	add(s.VolumeMute, "Mute volume.")
	add(s.VolumeUp, "Volume up.")
	add(s.VolumeDown, "Volume down.")
	add(s.VolumeSet, "Set volume to 50.")
	add(s.Sleep, "Go to sleep.")
	add(s.Restart, "Restart computer.")
	add(s.Shutdown, "Shut down computer.")
	add(s.Lock, "Lock computer.")
	return phrases
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
