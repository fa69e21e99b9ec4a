package main

import (
	"fmt"
	"time"

	"Buddy/internal/service/audio"
	"Buddy/internal/service/executor"
	"Buddy/internal/service/intent"
	"Buddy/internal/service/stt"
	"Buddy/internal/service/stt/wavfile"

	"github.com/spf13/cobra"
)

var runExecute bool

var transcribeCmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Распознать WAV-файл и определить намерение без микрофона",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscribe,
}

func init() {
	transcribeCmd.Flags().BoolVar(&runExecute, "execute", false, "выполнить найденную команду")
	rootCmd.AddCommand(transcribeCmd)
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg, logger, sync, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer sync()
	ctx := cmd.Context()

	samples, rate, err := wavfile.Read(args[0])
	if err != nil {
		return err
	}
	samples = audio.Resample(samples, rate, audio.TargetRate)
	peak, rms := audio.Measure(samples)
	logger.Debugw("Loaded recording", "path", args[0], "rate", rate, "samples", len(samples), "peak", peak, "rms", rms)

	transcriber, err := stt.New(cfg, logger)
	if err != nil {
		return err
	}
	started := time.Now()
	text, err := transcriber.Transcribe(ctx, samples)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Текст:      %q (%s)\n", text, time.Since(started).Round(time.Millisecond))

	classifier := intent.NewClassifier(newTransport(cfg), intent.MappingsFromConfig(cfg), cfg.ClassifierTimeout(), logger)
	target, err := classifier.Classify(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Намерение:  %s\n", target)

	if !runExecute {
		return nil
	}
	res, err := executor.New(cfg, logger).Execute(ctx, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Результат:  %s\n", res.Message)
	return nil
}
