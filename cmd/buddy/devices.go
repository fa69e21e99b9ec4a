package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"Buddy/internal/service/audio"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Список устройств записи",
	Long: `Показывает устройства ввода, их каналы, частоту по умолчанию
и частоты, которые устройство принимает. Устройство по умолчанию отмечено *.`,
	Args: cobra.NoArgs,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func runDevices(cmd *cobra.Command, _ []string) error {
	pa, err := audio.NewPortAudio()
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	defer pa.Close()

	devs, err := pa.Devices()
	if err != nil {
		return err
	}
	printDevices(cmd.OutOrStdout(), devs)
	return nil
}

func printDevices(w io.Writer, devs []audio.DeviceInfo) {
	if len(devs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Устройства записи не найдены"))
		return
	}

	width := len("DEVICE")
	for _, d := range devs {
		width = max(width, len(d.Name)+2)
	}
	cell := lipgloss.NewStyle().Width(width + 2)
	num := lipgloss.NewStyle().Width(10)

	fmt.Fprintln(w, headerStyle.Render(
		cell.Render("DEVICE")+num.Render("CHANNELS")+num.Render("RATE")+num.Render("FORMAT")+"SUPPORTED"))
	for _, d := range devs {
		name := "  " + d.Name
		if d.Default {
			name = "* " + d.Name
		}
		line := cell.Render(name) +
			num.Render(strconv.Itoa(d.Channels)) +
			num.Render(strconv.Itoa(d.DefaultRate)) +
			num.Render(d.Format.String()) +
			mutedStyle.Render(rates(d.SupportedRates))
		if d.Default {
			line = defaultStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

func rates(rs []int) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ", ")
}
