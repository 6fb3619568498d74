package settings

import (
	"fmt"

	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	BaselineGold      *int    `help:"Gold added to every end evaluation."`
	NeutralSpeedBonus *int    `help:"Speed buff for an on-schedule neutral habit."`
	EnemyLevelPolicy  *string `help:"How enemy levels are picked: kill-streak or hours-since."`
	DurationBonus     *bool   `help:"Also reward occurrence length bounds."`
	Timezone          *string `help:"IANA zone used for display, or Local."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Service.Settings(ctx.Background())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Baseline Gold:       %d\n", settings.BaselineGold)
		fmt.Printf("  Neutral Speed Bonus: %d\n", settings.NeutralSpeedBonus)
		fmt.Printf("  Enemy Level Policy:  %s\n", settings.EnemyLevelPolicy)
		fmt.Printf("  Duration Bonus:      %v\n", settings.DurationBonus)
		fmt.Printf("  Timezone:            %s\n", settings.Timezone)
		return nil
	}

	updated := false
	if c.BaselineGold != nil {
		settings.BaselineGold = *c.BaselineGold
		updated = true
	}
	if c.NeutralSpeedBonus != nil {
		settings.NeutralSpeedBonus = *c.NeutralSpeedBonus
		updated = true
	}
	if c.EnemyLevelPolicy != nil {
		settings.EnemyLevelPolicy = constants.EnemyLevelPolicy(*c.EnemyLevelPolicy)
		updated = true
	}
	if c.DurationBonus != nil {
		settings.DurationBonus = *c.DurationBonus
		updated = true
	}
	if c.Timezone != nil {
		settings.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Service.SaveSettings(ctx.Background(), settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
