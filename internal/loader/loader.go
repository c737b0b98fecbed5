package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/napolitain/bag-optimizer/internal/models"
)

// SpeciesJSON represents the JSON structure for one pokedex entry
type SpeciesJSON struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Family        int      `json:"family"`
	Types         []string `json:"types"`
	MaxCP         float64  `json:"max_cp"`
	CandyToEvolve int      `json:"candy_to_evolve"`
	Next          []int    `json:"next"`
	FastMoves     []int    `json:"fast_moves"`
	ChargedMoves  []int    `json:"charged_moves"`
}

// MoveJSON represents the JSON structure for a move
type MoveJSON struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Power      float64 `json:"power"`
	DurationMs int     `json:"duration_ms"`
	Energy     int     `json:"energy"`
}

// LoadSpecies loads species from pokemon.json
func LoadSpecies(dataDir string) ([]*models.Species, error) {
	filePath := filepath.Join(dataDir, "pokemon.json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pokemon.json: %w", err)
	}

	var raw []SpeciesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse pokemon.json: %w", err)
	}

	species := make([]*models.Species, 0, len(raw))
	for _, r := range raw {
		s := &models.Species{
			ID:            models.SpeciesID(r.ID),
			Name:          r.Name,
			FamilyID:      models.SpeciesID(r.Family),
			Types:         r.Types,
			MaxCP:         r.MaxCP,
			CandyToEvolve: r.CandyToEvolve,
		}
		for _, id := range r.Next {
			s.NextEvolutionIDs = append(s.NextEvolutionIDs, models.SpeciesID(id))
		}
		for _, id := range r.FastMoves {
			s.FastMoves = append(s.FastMoves, models.MoveID(id))
		}
		for _, id := range r.ChargedMoves {
			s.ChargedMoves = append(s.ChargedMoves, models.MoveID(id))
		}
		if s.HasNextEvolution() && s.CandyToEvolve <= 0 {
			return nil, fmt.Errorf("species %d (%s): evolves without a candy cost", r.ID, r.Name)
		}
		species = append(species, s)
	}

	return species, nil
}

// LoadMoves loads moves from moves.json
func LoadMoves(dataDir string) ([]*models.Move, error) {
	filePath := filepath.Join(dataDir, "moves.json")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read moves.json: %w", err)
	}

	var raw []MoveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse moves.json: %w", err)
	}

	moves := make([]*models.Move, 0, len(raw))
	for _, r := range raw {
		moves = append(moves, &models.Move{
			ID:         models.MoveID(r.ID),
			Name:       r.Name,
			Type:       r.Type,
			Power:      r.Power,
			DurationMs: r.DurationMs,
			Energy:     r.Energy,
		})
	}
	return moves, nil
}

// LoadPokedex loads all static game data from the data directory
func LoadPokedex(dataDir string) (*models.Pokedex, error) {
	species, err := LoadSpecies(dataDir)
	if err != nil {
		return nil, err
	}
	moves, err := LoadMoves(dataDir)
	if err != nil {
		return nil, err
	}
	return models.NewPokedex(species, moves), nil
}
