package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dispman/dispman/internal/caps"
	"github.com/dispman/dispman/internal/config"
	"github.com/dispman/dispman/internal/ddc"
	"github.com/dispman/dispman/internal/monitor"
	"github.com/dispman/dispman/internal/profile"
	"github.com/dispman/dispman/internal/vcp"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var (
	cfgFile     string
	displayFlag int
	jsonFlag    bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "dispman",
	Short: "Control monitor settings over DDC/CI",
	Long: `dispman talks DDC/CI to connected monitors: it detects displays,
reads and writes VCP features (brightness, contrast, input source,
volume, power mode), queries capabilities, and saves/restores named
multi-monitor profiles.`,
	SilenceUsage: true,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect DDC/CI-capable displays",
	RunE:  runDetect,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show all well-known settings of a display",
	RunE:  runInspect,
}

var getCmd = &cobra.Command{
	Use:   "get <setting>",
	Short: "Read a setting (name or hex code)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var setCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Write a setting (value may be a number or an input/power name)",
	Args:  cobra.ExactArgs(2),
	RunE:  runSet,
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Query and parse a display's capabilities string",
	RunE:  runCapabilities,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved multi-monitor profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	RunE:  runProfileList,
}

var profileSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Capture current settings of all displays as a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSave,
}

var profileLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Apply a saved profile to the connected displays",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileLoad,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dispman %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dispman.yaml)")
	rootCmd.PersistentFlags().IntVarP(&displayFlag, "display", "d", 0, "display index (from detect)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "structured JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileSaveCmd)
	profileCmd.AddCommand(profileLoadCmd)
	profileCmd.AddCommand(profileDeleteCmd)

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func vlogf(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// transportOpts maps the loaded configuration onto transport options.
func transportOpts(cfg *config.Config) []ddc.Option {
	return []ddc.Option{
		ddc.WithDelay(cfg.CommandDelay),
		ddc.WithRetries(cfg.Retries),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withTarget enumerates displays, selects the --display target, and runs
// fn with a configured transport. Handles are released afterwards.
func withTarget(cfg *config.Config, fn func(*monitor.Display, *ddc.Transport) error) error {
	displays, err := monitor.Enumerate()
	if err != nil {
		return err
	}
	defer monitor.CloseAll(displays)

	target, err := monitor.Select(displays, displayFlag)
	if err != nil {
		return err
	}
	vlogf("selected display %d: %s", target.Index, target.Description)

	return fn(target, ddc.NewTransport(target.Device, transportOpts(cfg)...))
}

func runDetect(cmd *cobra.Command, args []string) error {
	displays, err := monitor.Enumerate()
	if err != nil {
		return err
	}
	defer monitor.CloseAll(displays)

	if jsonFlag {
		return printJSON(displays)
	}
	if len(displays) == 0 {
		fmt.Println("No DDC/CI-capable displays found.")
		return nil
	}
	for _, d := range displays {
		fmt.Printf("Display %d: %s\n", d.Index, d.Description)
	}
	return nil
}

type settingReport struct {
	Setting     string `json:"setting"`
	Code        uint8  `json:"code"`
	Value       uint32 `json:"value,omitempty"`
	Max         uint32 `json:"max,omitempty"`
	Formatted   string `json:"formatted,omitempty"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

type inspectReport struct {
	Display     int             `json:"display"`
	Description string          `json:"description"`
	Settings    []settingReport `json:"settings"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	return withTarget(cfg, func(target *monitor.Display, tr *ddc.Transport) error {
		report := inspectReport{
			Display:     target.Index,
			Description: target.Description,
		}

		// Capabilities are advisory here; a monitor with an unparseable
		// report still answers plain reads.
		var supported *caps.Capabilities
		if raw, err := tr.Capabilities(); err == nil {
			if parsed, perr := caps.Parse(raw); perr == nil {
				supported = parsed
			} else {
				vlogf("capabilities unusable, probing all codes: %v", perr)
			}
		} else {
			vlogf("capabilities query failed, probing all codes: %v", err)
		}

		for _, code := range vcp.Snapshot() {
			entry := settingReport{Setting: code.Name, Code: code.Value}
			if supported != nil && !supported.Supports(code.Value) {
				entry.Unavailable = true
				report.Settings = append(report.Settings, entry)
				continue
			}
			v, err := tr.Read(code.Value)
			if err != nil {
				vlogf("read %s: %v", code.Label(), err)
				entry.Unavailable = true
			} else {
				entry.Value = v.Current
				entry.Max = v.Max
				entry.Formatted = code.Format(v.Current)
			}
			report.Settings = append(report.Settings, entry)
		}

		if jsonFlag {
			return printJSON(report)
		}
		fmt.Printf("Display %d: %s\n", report.Display, report.Description)
		for _, s := range report.Settings {
			if s.Unavailable {
				fmt.Printf("  %-12s not supported\n", s.Setting+":")
				continue
			}
			fmt.Printf("  %-12s %s (max %d)\n", s.Setting+":", s.Formatted, s.Max)
		}
		return nil
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	code, err := vcp.Resolve(args[0])
	if err != nil {
		return err
	}

	return withTarget(cfg, func(target *monitor.Display, tr *ddc.Transport) error {
		v, err := tr.Read(code.Value)
		if err != nil {
			return fmt.Errorf("display %d: %w", target.Index, err)
		}

		if jsonFlag {
			return printJSON(settingReport{
				Setting:   code.Name,
				Code:      code.Value,
				Value:     v.Current,
				Max:       v.Max,
				Formatted: code.Format(v.Current),
			})
		}
		fmt.Printf("Display %d: %s = %s (raw %d, max %d)\n",
			target.Index, code.Label(), code.Format(v.Current), v.Current, v.Max)
		return nil
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	code, err := vcp.Resolve(args[0])
	if err != nil {
		return err
	}
	value, err := code.ParseValue(args[1])
	if err != nil {
		return err
	}

	return withTarget(cfg, func(target *monitor.Display, tr *ddc.Transport) error {
		// Learn the feature's maximum when the monitor will tell us;
		// otherwise the write falls back to the byte range.
		var max uint32
		if v, err := tr.Read(code.Value); err == nil {
			max = v.Max
		} else {
			vlogf("no maximum for %s, using byte range: %v", code.Label(), err)
		}

		if err := tr.Write(code.Value, value, max); err != nil {
			return fmt.Errorf("display %d: %w", target.Index, err)
		}
		fmt.Printf("Display %d: %s set to %s\n", target.Index, code.Label(), code.Format(value))
		return nil
	})
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	return withTarget(cfg, func(target *monitor.Display, tr *ddc.Transport) error {
		raw, err := tr.Capabilities()
		if err != nil {
			return fmt.Errorf("display %d: %w", target.Index, err)
		}

		parsed, perr := caps.Parse(raw)
		if perr != nil {
			// Unparseable reports still get shown raw.
			log.Printf("warning: %v", perr)
			if jsonFlag {
				return printJSON(map[string]string{"raw": raw})
			}
			fmt.Println(raw)
			return nil
		}

		if jsonFlag {
			return printJSON(parsed)
		}
		fmt.Printf("Display %d: %s\n", target.Index, target.Description)
		if parsed.Model != "" {
			fmt.Printf("  Model:        %s\n", parsed.Model)
		}
		if parsed.DisplayType != "" {
			fmt.Printf("  Type:         %s\n", parsed.DisplayType)
		}
		if parsed.Protocol != "" {
			fmt.Printf("  Protocol:     %s\n", parsed.Protocol)
		}
		if parsed.MCCSVersion != "" {
			fmt.Printf("  MCCS version: %s\n", parsed.MCCSVersion)
		}
		fmt.Println("  Supported VCP features:")
		for _, c := range parsed.Codes() {
			code := vcp.FromValue(c)
			fmt.Printf("    %s", code.Label())
			if values := parsed.AllowedValues(c); len(values) > 0 {
				fmt.Print(" [")
				for i, val := range values {
					if i > 0 {
						fmt.Print(", ")
					}
					fmt.Print(code.Format(val))
				}
				fmt.Print("]")
			}
			fmt.Println()
		}
		return nil
	})
}

func openStore(cfg *config.Config) (*profile.Store, error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	return profile.Open(cfg.DatabasePath)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonFlag {
		return printJSON(names)
	}
	if len(names) == 0 {
		fmt.Println("No profiles saved.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runProfileSave(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	displays, err := monitor.Enumerate()
	if err != nil {
		return err
	}
	defer monitor.CloseAll(displays)

	if len(displays) == 0 {
		return errors.New("no displays connected, nothing to save")
	}

	snap := profile.Capture(displays, transportOpts(cfg)...)
	if err := store.Save(context.Background(), name, snap); err != nil {
		return err
	}

	unavailable := 0
	for _, ds := range snap {
		for _, cv := range ds.Values {
			if cv.Unavailable {
				unavailable++
			}
		}
	}
	fmt.Printf("Profile %q saved (%d displays", name, len(snap))
	if unavailable > 0 {
		fmt.Printf(", %d settings unavailable", unavailable)
	}
	fmt.Println(")")
	return nil
}

func runProfileLoad(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.Load(context.Background(), name)
	if err != nil {
		return err
	}

	displays, err := monitor.Enumerate()
	if err != nil {
		return err
	}
	defer monitor.CloseAll(displays)

	results := rec.Snapshot.Apply(displays, transportOpts(cfg)...)
	failures := profile.Failures(results)

	applied := len(results) - len(failures)
	fmt.Printf("Profile %q: %d settings applied\n", name, applied)
	for _, f := range failures {
		fmt.Printf("  failed: %s\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d settings failed to apply", len(failures), len(results))
	}
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Profile %q deleted\n", args[0])
	return nil
}
