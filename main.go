package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/mrnavastar/modcheck/api"
	"github.com/mrnavastar/modcheck/compat"
	"github.com/mrnavastar/modcheck/services"
	"github.com/mrnavastar/modcheck/util"
	"github.com/mrnavastar/modcheck/util/fileutils"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
)

var rules = compat.DefaultRules()

func main() {
	app := &cli.App{
		Name:  "modcheck",
		Usage: "Build modpacks that actually launch",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Print debug output",
			},
			&cli.StringFlag{
				Name:    "curse-key",
				Usage:   "CurseForge API key",
				EnvVars: []string{"CURSEFORGE_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "rules",
				Usage:   "YAML file replacing the built-in category and conflict rules",
				EnvVars: []string{"MODCHECK_RULES"},
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				pterm.EnableDebugMessages()
			}
			api.CurseAPIKey = c.String("curse-key")

			if path := c.String("rules"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				loaded, err := compat.LoadRules(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				rules = loaded
				pterm.Debug.Println("loaded rules from " + path)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Setup modcheck on your system",
				ArgsUsage: "[.minecraft dir]",
				Action: func(c *cli.Context) error {
					dir := c.Args().First()
					if dir == "" {
						home, err := os.UserHomeDir()
						if err != nil {
							return err
						}
						dir = filepath.Join(home, ".minecraft")
					}
					if err := fileutils.Setup(dir); err != nil {
						return err
					}
					pterm.Success.Println("Done.")
					return nil
				},
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List all modpacks",
				Action: func(c *cli.Context) error {
					state, err := fileutils.LoadAppState()
					if err != nil {
						return err
					}

					t := util.NewTable("", "NAME", "VERSION", "LOADER", "MODS")
					for _, modpack := range state.Modpacks {
						active := ""
						if strings.EqualFold(modpack.Name, state.ActiveModpack) {
							active = "*"
						}
						loader := modpack.Loader
						if modpack.LoaderVersion != "" {
							loader += " " + modpack.LoaderVersion
						}
						t.AppendRow(table.Row{active, text.Bold.Sprint(modpack.Name), modpack.Version, loader, len(modpack.Mods)})
					}
					fmt.Println(t.Render())
					return nil
				},
			},
			{
				Name:      "make",
				Usage:     "Create a new modpack",
				ArgsUsage: "<name> <minecraft version>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "loader",
						Aliases: []string{"l"},
						Usage:   "Mod loader: forge, fabric, neoforge or quilt",
						Value:   compat.Fabric,
					},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2); err != nil {
						return err
					}

					name := c.Args().Get(0)
					pterm.Info.Println("Creating " + name)
					modpack, err := services.CreateModpack(name, c.Args().Get(1), c.String("loader"))
					if err != nil {
						return err
					}

					pterm.Success.Println("Created " + modpack.Name + " (" + modpack.Loader + " " + modpack.Version + ")")
					return services.SetActiveModpack(modpack.Name)
				},
			},
			{
				Name:      "mod",
				Usage:     "Modify a modpack",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.GetModpack(c.Args().First())
					if err != nil {
						return err
					}
					pterm.Info.Println("Now modifying " + modpack.Name)
					return services.SetActiveModpack(modpack.Name)
				},
			},
			{
				Name:      "rm",
				Aliases:   []string{"remove"},
				Usage:     "Remove a modpack",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					name := c.Args().First()
					if err := services.DeleteModpack(name); err != nil {
						if errors.Is(err, services.ErrModpackNotFound) {
							pterm.Warning.Println("Failed to find a modpack with that name")
							return nil
						}
						return err
					}
					pterm.Success.Println("Removed " + name)
					return nil
				},
			},
			{
				Name:      "install",
				Usage:     "Install mods into the active modpack",
				ArgsUsage: "<mod>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Install mods even when they are incompatible",
					},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}

					for _, arg := range c.Args().Slice() {
						result, err := services.AddMod(&modpack, arg, util.ModData{}, c.Bool("force"))
						switch {
						case errors.Is(err, services.ErrModAlreadyAdded):
							pterm.Warning.Println(arg + " has already been added")
							continue
						case errors.Is(err, api.ErrNoModFound), errors.Is(err, api.ErrFailedToGetMod):
							pterm.Warning.Println("Could not find mod under " + arg)
							continue
						case errors.Is(err, services.ErrIncompatible):
							pterm.Error.Println("Skipped " + arg + ": " + result.Reason + " (use --force to install anyway)")
							continue
						case err != nil:
							return err
						}

						if result.Reason != "" {
							pterm.Warning.Println(arg + ": " + result.Reason)
						}
						pterm.Success.Println("Installed " + modpack.Mods[len(modpack.Mods)-1].Name)
					}
					return services.SaveModpack(modpack)
				},
			},
			{
				Name:      "uninstall",
				Usage:     "Uninstall mods from the active modpack",
				ArgsUsage: "<mod>...",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}

					for _, arg := range c.Args().Slice() {
						mod, err := services.RemoveMod(&modpack, arg)
						if errors.Is(err, services.ErrModNotInstalled) {
							pterm.Warning.Println(arg + " is not installed")
							continue
						}
						if err != nil {
							return err
						}
						pterm.Success.Println("Uninstalled " + mod.Name)
					}
					return services.SaveModpack(modpack)
				},
			},
			{
				Name:  "lsmod",
				Usage: "List mods installed on the active modpack",
				Action: func(c *cli.Context) error {
					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}

					byKey := make(map[string]util.ModData, len(modpack.Mods))
					entries := make([]compat.LibraryEntry, 0, len(modpack.Mods))
					for _, mod := range modpack.Mods {
						byKey[mod.Key()] = mod
						entries = append(entries, compat.LibraryEntry{Id: mod.Key(), Name: mod.Name, Mod: mod.Candidate()})
					}

					selection := services.SelectionOf(modpack)
					t := util.NewTable("NAME", "VERSION", "LOADER", "STATE", "COMPATIBILITY")
					for _, entry := range compat.SortByCompatibility(modpack.Target(), entries) {
						mod := byKey[entry.Id]
						var flags []string
						if selection.IsLocked(entry.Id) {
							flags = append(flags, "locked")
						}
						if selection.IsDisabled(entry.Id) {
							flags = append(flags, "disabled")
						}
						t.AppendRow(table.Row{
							text.Bold.Sprint(mod.Name),
							mod.Version,
							mod.Loader,
							strings.Join(flags, ","),
							verdict(compat.Classify(modpack.Target(), entry.Mod)),
						})
					}
					fmt.Println(t.Render())
					return nil
				},
			},
			{
				Name:      "check",
				Usage:     "Check whether mods fit the active modpack without installing them",
				ArgsUsage: "<mod>...",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}
					printChecks(services.CheckMods(modpack, c.Args().Slice()))
					return nil
				},
			},
			{
				Name:      "scan",
				Usage:     "Check every jar in a directory against the active modpack",
				ArgsUsage: "<dir>",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}
					checks, err := services.ScanDir(modpack, c.Args().First())
					if err != nil {
						return err
					}
					printChecks(checks)
					return nil
				},
			},
			{
				Name:      "health",
				Usage:     "Score the health of a modpack",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the analysis as JSON",
					},
				},
				Action: func(c *cli.Context) error {
					modpack, err := modpackArg(c)
					if err != nil {
						return err
					}

					analysis := services.Analyze(modpack, rules)
					if c.Bool("json") {
						return printJson(analysis)
					}
					printAnalysis(modpack, analysis)
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "Uninstall every incompatible mod that is not locked",
				Action: func(c *cli.Context) error {
					modpack, err := services.GetActiveModpack()
					if err != nil {
						return err
					}

					removed, err := services.RemoveIncompatible(&modpack)
					for _, mod := range removed {
						pterm.Success.Println("Uninstalled " + mod.Name)
					}
					if err != nil {
						return err
					}
					if len(removed) == 0 {
						pterm.Info.Println("Nothing to prune")
					}
					return services.SaveModpack(modpack)
				},
			},
			selectionCommand("lock", "Protect mods from prune and update", services.LockMods, "Locked"),
			selectionCommand("unlock", "Remove the lock from mods", services.UnlockMods, "Unlocked"),
			selectionCommand("disable", "Keep mods installed but leave them out of health checks", services.DisableMods, "Disabled"),
			selectionCommand("enable", "Include disabled mods again", services.EnableMods, "Enabled"),
			{
				Name:      "convert",
				Usage:     "Move a modpack to another loader or minecraft version",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "loader",
						Aliases: []string{"l"},
						Usage:   "New mod loader",
					},
					&cli.StringFlag{
						Name:    "version",
						Aliases: []string{"v"},
						Usage:   "New minecraft version",
					},
				},
				Action: func(c *cli.Context) error {
					if c.String("loader") == "" && c.String("version") == "" {
						return errors.New("nothing to convert, pass --loader and/or --version")
					}
					modpack, err := modpackArg(c)
					if err != nil {
						return err
					}

					modpack, incompatible, err := services.ConvertModpack(modpack.Name, c.String("loader"), c.String("version"))
					if err != nil {
						return err
					}
					pterm.Success.Println(modpack.Name + " now targets " + modpack.Loader + " " + modpack.Version)
					for _, mod := range incompatible {
						result := compat.Classify(modpack.Target(), mod.Candidate())
						pterm.Warning.Println(mod.Name + ": " + result.Reason)
					}
					if len(incompatible) > 0 {
						pterm.Info.Println("Run prune to uninstall " + strconv.Itoa(len(incompatible)) + " incompatible mod(s)")
					}
					return nil
				},
			},
			{
				Name:      "update",
				Usage:     "Update the loader and mods of a modpack",
				ArgsUsage: "[name]",
				Action: func(c *cli.Context) error {
					modpack, err := modpackArg(c)
					if err != nil {
						return err
					}

					updates, err := services.UpdateModpack(modpack.Name)
					for _, u := range updates {
						pterm.Success.Println("Updated " + u.New.Name + " " + u.Old.Version + " -> " + u.New.Version)
					}
					if err != nil {
						return err
					}
					if len(updates) == 0 {
						pterm.Info.Println("All mods are up to date")
					}
					return nil
				},
			},
			{
				Name:      "import",
				Usage:     "Create a modpack from a Modrinth .mrpack file",
				ArgsUsage: "<file.mrpack>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name of the new modpack, defaults to the pack's own name",
					},
				},
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}

					modpack, err := services.ImportMrpack(c.Args().First(), c.String("name"))
					if err != nil {
						return err
					}
					pterm.Success.Println("Imported " + modpack.Name + " with " + strconv.Itoa(len(modpack.Mods)) + " mods")
					return services.SetActiveModpack(modpack.Name)
				},
			},
		},
	}

	util.Fatal(app.Run(os.Args))
}

func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() < n {
		return fmt.Errorf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage)
	}
	return nil
}

// modpackArg returns the modpack named by the first argument, or the active
// one when there is none.
func modpackArg(c *cli.Context) (util.Modpack, error) {
	if name := c.Args().First(); name != "" {
		return services.GetModpack(name)
	}
	return services.GetActiveModpack()
}

func selectionCommand(name string, usage string, apply func(*util.Modpack, []string) error, done string) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<mod>...",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}

			modpack, err := services.GetActiveModpack()
			if err != nil {
				return err
			}
			if err := apply(&modpack, c.Args().Slice()); err != nil {
				return err
			}
			pterm.Success.Println(done + " " + strings.Join(c.Args().Slice(), ", "))
			return services.SaveModpack(modpack)
		},
	}
}

func verdict(result compat.CompatibilityResult) string {
	switch {
	case !result.Compatible:
		return util.ColorResult(result, "incompatible: "+result.Reason)
	case result.Warning:
		return util.ColorResult(result, "warning: "+result.Reason)
	}
	return util.ColorResult(result, "compatible")
}

func printChecks(checks []services.ModCheck) {
	t := util.NewTable("MOD", "VERSION", "LOADER", "MINECRAFT", "COMPATIBILITY")
	for _, check := range checks {
		if check.Err != nil {
			t.AppendRow(table.Row{check.Arg, "", "", "", util.ColorTier(compat.TierBad, check.Err.Error())})
			continue
		}
		t.AppendRow(table.Row{
			text.Bold.Sprint(check.Mod.Name),
			check.Mod.Version,
			check.Mod.Loader,
			check.Mod.Candidate().BestVersion(),
			verdict(check.Result),
		})
	}
	fmt.Println(t.Render())
}

func printAnalysis(modpack util.Modpack, analysis services.Analysis) {
	health := analysis.Health
	fmt.Println()
	fmt.Println(text.Bold.Sprint(modpack.Name) + "  " + util.ColorTier(health.Tier, fmt.Sprintf("%d/100 %s", health.Score, health.Label)))
	fmt.Println()

	t := util.NewTable("CHECK", "COUNT")
	t.AppendRow(table.Row{"Missing dependencies", analysis.Summary.MissingDependencyCount})
	t.AppendRow(table.Row{"Conflicts", analysis.Summary.ConflictCount})
	t.AppendRow(table.Row{"Resource heavy mods", analysis.Summary.ResourceHeavyCount})
	t.AppendRow(table.Row{"Graphics intensive mods", analysis.Summary.GraphicsIntensiveCount})
	t.AppendRow(table.Row{"Optimization mods", analysis.Summary.OptimizationModCount})
	fmt.Println(t.Render())

	for _, missing := range analysis.MissingDependencies {
		pterm.Warning.Println(missing.RequiredBy + " requires " + missing.Dependency.Name + ", which is not installed")
	}
	for _, conflict := range analysis.Conflicts {
		msg := strings.Join(conflict.Mods, " and ") + " conflict"
		if conflict.Reason != "" {
			msg += ": " + conflict.Reason
		}
		if conflict.CountsAgainstScore() {
			pterm.Error.Println(msg)
		} else {
			pterm.Warning.Println(msg)
		}
	}
	for _, check := range analysis.Incompatible {
		pterm.Error.Println(check.Mod.Name + ": " + check.Result.Reason)
	}
	for _, check := range analysis.Warnings {
		pterm.Warning.Println(check.Mod.Name + ": " + check.Result.Reason)
	}
	if analysis.Disabled > 0 {
		pterm.Info.Println(strconv.Itoa(analysis.Disabled) + " disabled mod(s) were not checked")
	}
}

func printJson(analysis services.Analysis) error {
	out := struct {
		Health              compat.HealthScore           `json:"health"`
		Summary             compat.AnalysisSummary       `json:"summary"`
		MissingDependencies []services.MissingDependency `json:"missingDependencies"`
		Conflicts           []compat.Conflict            `json:"conflicts"`
		Incompatible        map[string]string            `json:"incompatible"`
		Warnings            map[string]string            `json:"warnings"`
	}{
		Health:              analysis.Health,
		Summary:             analysis.Summary,
		MissingDependencies: analysis.MissingDependencies,
		Conflicts:           analysis.Conflicts,
		Incompatible:        make(map[string]string),
		Warnings:            make(map[string]string),
	}
	for _, check := range analysis.Incompatible {
		out.Incompatible[check.Mod.Name] = check.Result.Reason
	}
	for _, check := range analysis.Warnings {
		out.Warnings[check.Mod.Name] = check.Result.Reason
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
