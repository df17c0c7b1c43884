// Package save implements JSON serialization and deserialization of battle state.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FormatVersion is bumped when the layout below changes incompatibly.
const FormatVersion = 1

var ErrFormatVersion = errors.New("unsupported save format")

// Status is one saved status instance.
type Status struct {
	Kind      string  `json:"kind"`
	Remaining int     `json:"remaining"`
	Potency   float64 `json:"potency"`
	Source    string  `json:"source,omitempty"`
}

// Combatant is the mutable part of one combatant. Everything else is
// rebuilt from the content templates.
type Combatant struct {
	ID        string         `json:"id"`
	HP        int            `json:"hp"`
	Brave     int            `json:"brave"`
	MP        int            `json:"mp"`
	Readiness int            `json:"readiness"`
	Cooldowns map[string]int `json:"cooldowns"`
	Statuses  []Status       `json:"statuses"`
}

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Format      int         `json:"format"`
	Version     string      `json:"version"`
	Game        string      `json:"game"`
	Encounter   string      `json:"encounter"`
	Turn        int         `json:"turn"`
	Ticks       int64       `json:"ticks"`
	RNGSeed     int64       `json:"rng_seed"`
	RNGPosition int64       `json:"rng_position"`
	Combatants  []Combatant `json:"combatants"`
	CommandLog  []string    `json:"command_log"`
}

// Save serializes battle state to JSON bytes.
func Save(sd SaveData) ([]byte, error) {
	sd.Format = FormatVersion
	return json.MarshalIndent(sd, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Format != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrFormatVersion, sd.Format)
	}
	if sd.Encounter == "" {
		return nil, errors.New("save has no encounter")
	}
	// Ensure collections are never nil after load.
	if sd.Combatants == nil {
		sd.Combatants = []Combatant{}
	}
	for i := range sd.Combatants {
		if sd.Combatants[i].Cooldowns == nil {
			sd.Combatants[i].Cooldowns = map[string]int{}
		}
		if sd.Combatants[i].Statuses == nil {
			sd.Combatants[i].Statuses = []Status{}
		}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
	return &sd, nil
}

// Find returns the saved combatant with id.
func (sd *SaveData) Find(id string) (Combatant, bool) {
	for _, c := range sd.Combatants {
		if c.ID == id {
			return c, true
		}
	}
	return Combatant{}, false
}
