package main

import (
	"context"
	"fmt"
	"io"

	"Buddy/internal/service/hotkey"
	"Buddy/internal/service/intent"
	"Buddy/internal/service/stt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [config.toml]",
	Short: "Проверка конфигурации и доступности классификатора",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, sync, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ClassifierTimeout()*2)
	defer cancel()

	out := cmd.OutOrStdout()
	failed := 0
	report := func(name string, err error, detail string) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "  %s %-12s %v\n", failStyle.Render("[-]"), name, err)
			return
		}
		fmt.Fprintf(out, "  %s %-12s %s\n", okStyle.Render("[+]"), name, mutedStyle.Render(detail))
	}

	fmt.Fprintln(out, headerStyle.Render("Buddy check"))

	chord, err := hotkey.ParseChord(cfg.Hotkey.Key)
	report("hotkey", err, chord.String())

	_, err = stt.New(cfg, logger)
	report("stt", err, cfg.Transcription.Engine)

	err = intent.WaitReady(ctx, newTransport(cfg), 1, 0, logger)
	report("classifier", err, cfg.Classifier.Provider+" "+cfg.Classifier.Model)

	m := intent.MappingsFromConfig(cfg)
	printMappings(out, m)

	if failed > 0 {
		return fmt.Errorf("check: %d problem(s) found", failed)
	}
	return nil
}

func printMappings(w io.Writer, m intent.Mappings) {
	fmt.Fprintf(w, "  files:   %v\n", m.FileKeys())
	fmt.Fprintf(w, "  apps:    %v\n", m.AppKeys())
	fmt.Fprintf(w, "  actions: %v\n", m.SortedActions())
}
