package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/LFroesch/canopy/internal/config"
	"github.com/LFroesch/canopy/internal/explorer"
	"github.com/LFroesch/canopy/internal/fileops"
	"github.com/LFroesch/canopy/internal/git"
	"github.com/LFroesch/canopy/internal/history"
	"github.com/LFroesch/canopy/internal/logger"
)

var (
	flagHidden   bool
	flagPreview  bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "canopy [path]",
	Short: "A terminal file manager with an expandable tree",
	Long: `Canopy shows a directory as an expandable tree and lets you mark,
copy, move, rename and delete entries in place, with git status colours
and a preview of text, markdown, images and binary files.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return run(cmd, root)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&flagHidden, "hidden", "a", false, "show hidden files")
	rootCmd.Flags().BoolVarP(&flagPreview, "preview", "p", false, "start with the quick preview panel open")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// resolveRoot makes path absolute and resolves symlinks where possible.
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func run(cmd *cobra.Command, path string) error {
	root, err := resolveRoot(path)
	if err != nil {
		return err
	}

	dir := config.Dir()
	if err := logger.Init(dir); err != nil {
		// Logging is optional; keep going without it
		logger.Disable()
	}
	defer logger.Close()

	cfg := config.Load()
	if cmd.Flags().Changed("hidden") {
		cfg.ShowHidden = flagHidden
	}
	if cmd.Flags().Changed("preview") {
		cfg.QuickPreview = flagPreview
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Info("Starting canopy in %s", root)

	hist, err := history.Load(filepath.Join(dir, history.FileName))
	if err != nil {
		logger.Warn("Failed to read command history: %v", err)
	}

	exp, err := explorer.New(root, explorer.Options{
		ShowHidden:     cfg.ShowHidden,
		Ops:            fileops.New(fileops.Options{UseTrash: cfg.UseTrash}),
		VCS:            git.NewRepo(root),
		History:        hist,
		DefaultCommand: cfg.DefaultCommand,
		DoubleClick:    cfg.DoubleClick(),
	})
	if err != nil {
		return err
	}
	exp.SetQuickPreview(cfg.QuickPreview)

	m := newModel(exp, cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
