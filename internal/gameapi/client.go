// Package gameapi adapts raw game responses to the applier backend port.
package gameapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/napolitain/bag-optimizer/internal/applier"
	"github.com/napolitain/bag-optimizer/internal/loader"
	"github.com/napolitain/bag-optimizer/internal/models"
)

// ErrNoResponse is returned when the game sent nothing usable back
var ErrNoResponse = errors.New("no response from game")

// resultSuccess is the game's generic success code
const resultSuccess = 1

// Caller sends one request and returns the raw response envelope,
// {"responses": {"<REQUEST_NAME>": {...}}}.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]any) ([]byte, error)
}

// Client decodes game responses into applier results
type Client struct {
	caller Caller
	dex    *models.Pokedex
}

var _ applier.Backend = (*Client)(nil)

// NewClient creates a client. The pokedex resolves evolved and upgraded creatures.
func NewClient(caller Caller, dex *models.Pokedex) *Client {
	return &Client{caller: caller, dex: dex}
}

func (c *Client) call(ctx context.Context, method, response string, params map[string]any) (gjson.Result, error) {
	raw, err := c.caller.Call(ctx, method, params)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, err)
	}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, ErrNoResponse)
	}
	r := gjson.GetBytes(raw, "responses."+response)
	if !r.Exists() {
		return gjson.Result{}, fmt.Errorf("%s: %w", method, ErrNoResponse)
	}
	return r, nil
}

// Release transfers a creature and returns the candy awarded
func (c *Client) Release(ctx context.Context, p models.Creature) (int, error) {
	r, err := c.call(ctx, "release_pokemon", "RELEASE_POKEMON", map[string]any{"pokemon_id": p.UniqueID})
	if err != nil {
		return 0, err
	}
	return int(r.Get("candy_awarded").Int()), nil
}

// Evolve evolves a creature
func (c *Client) Evolve(ctx context.Context, p models.Creature) (applier.EvolveResult, error) {
	r, err := c.call(ctx, "evolve_pokemon", "EVOLVE_POKEMON", map[string]any{"pokemon_id": p.UniqueID})
	if err != nil {
		return applier.EvolveResult{}, err
	}
	if r.Get("result").Int() != resultSuccess {
		return applier.EvolveResult{}, nil
	}

	evolved, err := loader.ParseCreature(r.Get("evolved_pokemon_data"), c.dex)
	if err != nil {
		return applier.EvolveResult{}, fmt.Errorf("evolve_pokemon: %w", err)
	}
	return applier.EvolveResult{
		Success:      true,
		Evolved:      evolved,
		Experience:   int(r.Get("experience_awarded").Int()),
		CandyAwarded: int(r.Get("candy_awarded").Int()),
	}, nil
}

// Upgrade powers a creature up by one half level
func (c *Client) Upgrade(ctx context.Context, p models.Creature) (applier.UpgradeResult, error) {
	r, err := c.call(ctx, "upgrade_pokemon", "UPGRADE_POKEMON", map[string]any{"pokemon_id": p.UniqueID})
	if err != nil {
		return applier.UpgradeResult{}, err
	}
	if r.Get("result").Int() != resultSuccess {
		return applier.UpgradeResult{}, nil
	}

	upgraded, err := loader.ParseCreature(r.Get("upgraded_pokemon"), c.dex)
	if err != nil {
		return applier.UpgradeResult{}, fmt.Errorf("upgrade_pokemon: %w", err)
	}
	return applier.UpgradeResult{Success: true, Upgraded: upgraded}, nil
}

// UseLuckyEgg activates an experience boost
func (c *Client) UseLuckyEgg(ctx context.Context) (applier.BoostResult, error) {
	r, err := c.call(ctx, "use_item_xp_boost", "USE_ITEM_XP_BOOST", map[string]any{"item_id": int(models.ItemLuckyEgg)})
	if err != nil {
		return applier.BoostUnset, err
	}
	return applier.BoostResult(r.Get("result").Int()), nil
}

// Recycle discards count items of a kind and reports whether the game accepted it
func (c *Client) Recycle(ctx context.Context, item models.ItemID, count int) (bool, error) {
	r, err := c.call(ctx, "recycle_inventory_item", "RECYCLE_INVENTORY_ITEM", map[string]any{"item_id": int(item), "count": count})
	if err != nil {
		return false, err
	}
	return r.Get("result").Int() == resultSuccess, nil
}
