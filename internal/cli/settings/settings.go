package settings

import (
	"fmt"
	"sort"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

type SettingsCmd struct {
	List bool              `help:"List current settings."`
	Set  map[string]string `help:"Change settings, e.g. --set morning=07:30 --set timezone=Europe/London." mapsep:","`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if len(c.Set) == 0 {
		prefs, err := ctx.Service.Settings(ctx, ctx.UserID)
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		if !c.List {
			ctx.Println("No changes specified. Use --list to view settings or --set key=value to update them.")
			return nil
		}
		printSettings(ctx, prefs)
		return nil
	}

	prefs, results, err := ctx.Service.UpdateSettings(ctx, ctx.UserID, c.Set)
	if err != nil && results == nil {
		return err
	}
	ctx.Println("Settings updated successfully.")
	if failed := lifecycle.Failed(results); len(failed) > 0 {
		ctx.Printf("Warning: %d reminder(s) could not be rescheduled\n", len(failed))
	}
	if c.List {
		printSettings(ctx, prefs)
	}
	return err
}

func printSettings(ctx *cli.Context, prefs models.Settings) {
	kv := models.SettingsToMap(prefs)
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx.Println("Current Settings:")
	for _, k := range keys {
		ctx.Printf("  %-22s %s\n", k+":", kv[k])
	}
}
