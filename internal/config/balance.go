package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"

	"elemental_chess/internal/game"
	"elemental_chess/internal/shared"
)

var balanceFile = "elemental-chess/balance.json"

// balanceOverride maps element name to piece name to the fields to replace.
// Fields left out keep their default.
type balanceOverride map[string]map[string]struct {
	Cooldown *int `json:"cooldown"`
	Duration *int `json:"duration"`
	Range    *int `json:"range"`
	Radius   *int `json:"radius"`
}

// LoadBalance returns the default balance table with the overrides of path
// applied. With an empty path the file is searched for in the XDG config
// directories, and a missing file leaves the defaults alone.
func LoadBalance(path string) (game.BalanceTable, string, error) {
	table := game.DefaultBalance()
	if path == "" {
		found, err := xdg.SearchConfigFile(balanceFile)
		if err != nil {
			return table, "", nil
		}
		path = found
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return table, "", &InvalidConfig{fmt.Sprintf("balance file %s not found", path)}
		}
		return table, "", fmt.Errorf("read balance: %w", err)
	}
	if err := applyBalance(&table, data); err != nil {
		return game.DefaultBalance(), "", fmt.Errorf("%s: %w", path, err)
	}
	return table, path, nil
}

func applyBalance(table *game.BalanceTable, data []byte) error {
	var over balanceOverride
	if err := json.Unmarshal(data, &over); err != nil {
		return &InvalidConfig{fmt.Sprintf("balance json: %v", err)}
	}
	for elName, pieces := range over {
		el, ok := shared.ParseElement(elName)
		if !ok || !el.Valid() {
			return &InvalidConfig{fmt.Sprintf("unknown element %q; valid: %v", elName, shared.ElementStrings())}
		}
		for ptName, fields := range pieces {
			pt, ok := shared.ParsePieceType(ptName)
			if !ok {
				return &InvalidConfig{fmt.Sprintf("unknown piece %q", ptName)}
			}
			bal := table.For(el, pt)
			if fields.Cooldown != nil {
				bal.Cooldown = *fields.Cooldown
			}
			if fields.Duration != nil {
				bal.Duration = *fields.Duration
			}
			if fields.Range != nil {
				bal.Range = *fields.Range
			}
			if fields.Radius != nil {
				bal.Radius = *fields.Radius
			}
			table.Set(el, pt, bal)
		}
	}
	if err := table.Validate(); err != nil {
		return &InvalidConfig{err.Error()}
	}
	return nil
}
