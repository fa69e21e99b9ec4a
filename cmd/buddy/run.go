package main

import (
	"context"
	"fmt"
	"os/signal"
	"time"

	"Buddy/internal/app/pipeline"
	"Buddy/internal/config"
	"Buddy/internal/service/audio"
	"Buddy/internal/service/executor"
	"Buddy/internal/service/hotkey"
	"Buddy/internal/service/intent"
	"Buddy/internal/service/notify"
	"Buddy/internal/service/stt"
	"Buddy/internal/service/tts"
	"Buddy/internal/service/tts/player"
	"Buddy/internal/service/vad"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, logger, sync, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer sync()

	base, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx, stop := signal.NotifyContext(base, osInterruptSignals()...)
	defer stop()

	logger.Infow("Starting Buddy",
		"DebugMode", cfg.Logging.Debug,
		"hotkey", cfg.Hotkey.Key,
		"engine", cfg.Transcription.Engine,
		"classifier", cfg.Classifier.Provider,
		"model", cfg.Classifier.Model,
	)

	pa, err := audio.NewPortAudio()
	if err != nil {
		logger.Errorw("Failed to initialize audio", "error", err)
		return err
	}
	defer func() {
		if err := pa.Close(); err != nil {
			logger.Warnw("Failed to terminate audio", "error", err)
		}
	}()

	capturer, err := audio.Open(pa, audio.Options{
		DeviceName:      cfg.Audio.DeviceName,
		SampleRate:      cfg.Audio.SampleRate,
		RatePolicy:      audio.RatePolicy(cfg.Audio.RatePolicy),
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		Debug:           cfg.Logging.Debug,
	}, logger)
	if err != nil {
		logger.Errorw("Failed to open input device", "device", cfg.Audio.DeviceName, "error", err)
		return err
	}

	var gate pipeline.SpeechGate
	if cfg.Audio.VAD {
		g, err := vad.New(audio.TargetRate, cfg.Audio.VADMode, 0)
		if err != nil {
			return err
		}
		gate = g
	}

	transcriber, err := stt.New(cfg, logger)
	if err != nil {
		logger.Errorw("Failed to create transcriber", "error", err)
		return err
	}

	transport := newTransport(cfg)
	if err := intent.WaitReady(ctx, transport, cfg.Classifier.ReadyRetries, cfg.Classifier.ReadyInterval, logger); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// модель может подняться позже, каждая команда всё равно получит свою ошибку
		logger.Warnw("Continuing without a ready classifier", "error", err)
	}
	classifier := intent.NewClassifier(transport, intent.MappingsFromConfig(cfg), cfg.ClassifierTimeout(), logger)

	ply := player.NewWithVolume(cfg.Feedback.VolumeDB)
	fb := newFeedback(cfg, ply, logger)
	defer fb.Close()

	listener, err := hotkey.New(hotkey.Config{
		Key:       cfg.Hotkey.Key,
		Manual:    cfg.Hotkey.Manual,
		Interrupt: cancel,
	}, logger)
	if err != nil {
		logger.Errorw("Failed to register hotkey", "hotkey", cfg.Hotkey.Key, "error", err)
		return err
	}
	defer func() {
		if err := listener.Close(); err != nil {
			logger.Warnw("Failed to release hotkey", "error", err)
		}
	}()

	p := pipeline.New(pipeline.Config{
		CaptureDuration:   cfg.CaptureDuration(),
		TranscribeTimeout: time.Duration(cfg.Transcription.TimeoutSecs) * time.Second,
		MinConfidence:     cfg.Classifier.MinConfidence,
	}, pipeline.Deps{
		Trigger:     listener,
		Recorder:    capturer,
		Transcriber: transcriber,
		Classifier:  classifier,
		Executor:    executor.New(cfg, logger),
		Feedback:    fb,
		Gate:        gate,
	}, logger)

	if cfg.CaptureDuration() > 0 {
		fmt.Printf("Нажмите %s и говорите (%s)\n", cfg.Hotkey.Key, cfg.CaptureDuration())
	} else {
		fmt.Printf("Нажмите %s, чтобы начать запись, и ещё раз, чтобы закончить\n", cfg.Hotkey.Key)
	}

	runErr := p.Run(ctx)
	for _, o := range p.History() {
		logger.Debugw("Session command", "at", o.At.Format("15:04:05"), "transcript", o.Transcript,
			"intent", o.Intent, "result", o.Message, "ok", o.OK)
	}
	if runErr != nil {
		logger.Errorw("Pipeline stopped", "error", runErr)
		return runErr
	}
	logger.Infow("Shutting down", "commands", len(p.History()))
	return nil
}

// newFeedback: без рабочего синтезатора голосовая часть молчит, звуки и уведомления остаются.
func newFeedback(cfg *config.Config, ply player.Player, logger *zap.SugaredLogger) *notify.Feedback {
	mode := notify.ParseMode(cfg.Feedback.Mode)

	var speaker notify.Speaker
	if mode == notify.ModeTTS || mode == notify.ModeBoth {
		syn, err := tts.New(cfg, ply, logger)
		if err != nil {
			logger.Warnw("Speech feedback disabled", "service", cfg.Feedback.TTSService, "error", err)
		} else {
			speaker = syn
		}
	}

	sounds := notify.NewSoundNotifier(logger, ply, cfg.Feedback.SuccessSound, cfg.Feedback.ErrorSound)
	return notify.New(mode, sounds, speaker, cfg.Feedback.Notify, logger)
}
