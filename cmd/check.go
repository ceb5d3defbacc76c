// Package cmd implements the command-line interface for cachedplayer.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/cachedplayer/cachedplayer/color"
	"github.com/cachedplayer/cachedplayer/constant"
	"github.com/cachedplayer/cachedplayer/icon"
	"github.com/cachedplayer/cachedplayer/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports whether the playback backend can be started.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that the playback backend is installed",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()
		path := lo.Must(exec.LookPath("mpv"))
		fmt.Printf("%s mpv found at %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
	},
}

// CheckDependencies exits with an install hint unless mpv is in PATH.
func CheckDependencies() {
	_, err := exec.LookPath("mpv")
	if err != nil {
		printMissingDependencyError("mpv")
		os.Exit(1)
	}
}

func printMissingDependencyError(dep string) {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
