package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"Buddy/internal/config"
	"Buddy/internal/service/intent"
	"Buddy/internal/service/intent/ollama"
	"Buddy/internal/service/intent/openai"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listAudio bool

var rootCmd = &cobra.Command{
	Use:   "buddy [config.toml]",
	Short: "Голосовые команды по глобальному хоткею",
	Long: `Buddy ждёт комбинацию клавиш, записывает короткую фразу, распознаёт её,
определяет намерение через LLM и выполняет действие: открывает файл,
запускает приложение или выполняет системную команду.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listAudio {
			return runDevices(cmd, args)
		}
		return runPipeline(cmd, args)
	},
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.Flags().BoolVar(&listAudio, "list-audio", false, "показать устройства записи и выйти")
}

// loadConfig: путь берётся из --config или первого аргумента. Ошибка файла не фатальна,
// она возвращается отдельно, чтобы её залогировал уже настроенный логгер.
func loadConfig(cmd *cobra.Command, args []string) (cfg *config.Config, fileErr error, err error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" && len(args) > 0 {
		path = args[0]
	}
	cfg, loadErr := config.Load(path)
	config.ApplyFlags(cfg, cmd.Flags())
	var fe *config.FileError
	if loadErr != nil && !errors.As(loadErr, &fe) {
		return nil, nil, loadErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loadErr, nil
}

func newLogger(debug bool) (*zap.SugaredLogger, func(), error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	sugar := logger.Sugar()
	// сброс буфера логгера; ошибка Sync для stderr на части ОС ожидаема
	return sugar, func() { _ = logger.Sync() }, nil
}

// setup общий пролог команд: конфигурация и логгер.
func setup(cmd *cobra.Command, args []string) (*config.Config, *zap.SugaredLogger, func(), error) {
	cfg, fileErr, err := loadConfig(cmd, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		return nil, nil, nil, err
	}
	logger, sync, err := newLogger(cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: logger: %v\n", err)
		return nil, nil, nil, err
	}
	if fileErr != nil {
		logger.Warnw("Config file not loaded, using defaults", "error", fileErr)
	}
	return cfg, logger, sync, nil
}

type classifierTransport interface {
	intent.Transport
	intent.Prober
}

// newTransport клиент классификатора по classifier.provider.
func newTransport(cfg *config.Config) classifierTransport {
	cc := cfg.Classifier
	if cc.Provider == "openai" {
		baseURL := cc.Endpoint
		// адрес Ollama по умолчанию к OpenAI не относится
		if strings.HasSuffix(baseURL, "/api/chat") {
			baseURL = ""
		}
		model := cc.Model
		if model == config.Defaults().Classifier.Model {
			model = ""
		}
		return openai.New(cc.APIKey, baseURL, model)
	}
	return ollama.New(cc.Endpoint, cc.Model, cfg.ClassifierTimeout())
}

func osInterruptSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}
