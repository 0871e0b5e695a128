package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/models"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/output"
	"github.com/AlejandroLaraPolanco/vs-copilot-session-restorer/internal/workspace"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
	channel string
)

var rootCmd = &cobra.Command{
	Use:   "vscsr [workspace]",
	Short: "Recover Copilot chat sessions stranded under old workspace hashes",
	Long: `vscsr finds Copilot chat sessions that the editor lost track of after a
folder move, rename, or switch to a .code-workspace file. Each workspace
gets a hash directory under workspaceStorage; when the hash changes, the
old chat sessions stay behind under the old one.

Run without a subcommand for the guided wizard: it locates the hash
directories that mention your workspace, shows which sessions the current
hash is missing, copies the ones you pick, and can rebuild the chat index
in state.vscdb so the editor lists them again.`,
	Args:              cobra.MaximumNArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return wizardRun(args)
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().StringVar(&channel, "channel", "", `Editor channel ("Code" or "Code - Insiders")`)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/vscsr/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "vscsr")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VSCSR")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	viper.SetDefault("channel", "")
	viper.SetDefault("storage_root", "")
	viper.SetDefault("backup_dir", "backups")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// resolveRoots returns the workspaceStorage roots to operate on. An explicit
// storage_root (config or VSCSR_STORAGE_ROOT) wins over channel discovery,
// which also keeps every command usable without an editor install.
func resolveRoots() ([]models.ChannelRoot, error) {
	if root := viper.GetString("storage_root"); root != "" {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: storage_root %s", workspace.ErrNoStorageRoot, root)
		}
		return []models.ChannelRoot{{Channel: "custom", Root: root}}, nil
	}

	ch := channel
	if ch == "" {
		ch = viper.GetString("channel")
	}
	return workspace.DetectRoots(ch)
}

// singleRoot is for non-interactive commands that need exactly one root.
func singleRoot() (models.ChannelRoot, error) {
	roots, err := resolveRoots()
	if err != nil {
		return models.ChannelRoot{}, err
	}
	if len(roots) > 1 {
		names := make([]string, len(roots))
		for i, r := range roots {
			names[i] = fmt.Sprintf("%q", r.Channel)
		}
		return models.ChannelRoot{}, fmt.Errorf("multiple channels installed (%s): pick one with --channel", strings.Join(names, ", "))
	}
	return roots[0], nil
}

// buildCandidates turns the workspace input into descriptor needles and scans
// one storage root. The label describes what was searched for.
func buildCandidates(storageRoot, input string, extra []string) (string, []models.HashInfo, error) {
	var label string
	var needles []string
	if strings.TrimSpace(input) != "" {
		resolved := workspace.ResolveInput(input)
		label, needles = workspace.BuildNeedles(resolved)
	} else {
		label = "keywords: " + strings.Join(extra, ", ")
	}
	needles = append(needles, extra...)

	hits, err := workspace.FindCandidateHashes(storageRoot, needles)
	if err != nil {
		return label, nil, err
	}
	return label, hits, nil
}

func resolveBackupDir(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString("backup_dir")
}

const timeLayout = "2006-01-02 15:04:05"

func fmtTime(t time.Time) string {
	return t.Format(timeLayout)
}

func fmtStoreTime(t *time.Time) string {
	if t == nil {
		return "(no state.vscdb)"
	}
	return fmtTime(*t)
}

func truncTitle(title string) string {
	const max = 60
	r := []rune(title)
	if len(r) <= max {
		return title
	}
	return string(r[:max]) + "…"
}
