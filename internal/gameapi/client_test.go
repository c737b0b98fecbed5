package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/napolitain/bag-optimizer/internal/applier"
	"github.com/napolitain/bag-optimizer/internal/loader"
	"github.com/napolitain/bag-optimizer/internal/models"
)

type fakeCaller struct {
	responses map[string]string
	err       error
	calls     []string
	params    []map[string]any
}

func (f *fakeCaller) Call(_ context.Context, method string, params map[string]any) ([]byte, error) {
	f.calls = append(f.calls, method)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.responses[method]), nil
}

func newTestClient(t *testing.T, responses map[string]string) (*Client, *fakeCaller) {
	t.Helper()
	dex, err := loader.LoadPokedex("../../data")
	if err != nil {
		t.Fatalf("LoadPokedex: %v", err)
	}
	caller := &fakeCaller{responses: responses}
	return NewClient(caller, dex), caller
}

var pidgey = models.Creature{UniqueID: 42, SpeciesID: 16, Name: "Pidgey"}

func TestRelease(t *testing.T) {
	c, caller := newTestClient(t, map[string]string{
		"release_pokemon": `{"responses":{"RELEASE_POKEMON":{"result":1,"candy_awarded":1}}}`,
	})

	candy, err := c.Release(context.Background(), pidgey)
	if err != nil || candy != 1 {
		t.Fatalf("Release = %d, %v", candy, err)
	}
	if caller.params[0]["pokemon_id"] != uint64(42) {
		t.Errorf("Unexpected params: %v", caller.params[0])
	}
}

func TestEvolve(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"evolve_pokemon": `{"responses":{"EVOLVE_POKEMON":{"result":1,"experience_awarded":500,"candy_awarded":1,
			"evolved_pokemon_data":{"id":43,"pokemon_id":17,"cp":300,"individual_attack":5,"individual_defense":5,"individual_stamina":5,"cp_multiplier":0.5974}}}}`,
	})

	res, err := c.Evolve(context.Background(), pidgey)
	if err != nil {
		t.Fatalf("Evolve: %v", err)
	}
	if !res.Success || res.Experience != 500 || res.CandyAwarded != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}
	if res.Evolved.UniqueID != 43 || res.Evolved.Name != "Pidgeotto" || res.Evolved.CP != 300 {
		t.Errorf("Unexpected evolved creature: %+v", res.Evolved)
	}
}

func TestResultCodes(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"evolve_pokemon":         `{"responses":{"EVOLVE_POKEMON":{"result":3}}}`,
		"upgrade_pokemon":        `{"responses":{"UPGRADE_POKEMON":{"result":2}}}`,
		"use_item_xp_boost":      `{"responses":{"USE_ITEM_XP_BOOST":{"result":3}}}`,
		"recycle_inventory_item": `{"responses":{"RECYCLE_INVENTORY_ITEM":{"result":1,"new_count":20}}}`,
	})
	ctx := context.Background()

	if res, err := c.Evolve(ctx, pidgey); err != nil || res.Success {
		t.Errorf("Evolve = %+v, %v, want refused", res, err)
	}
	if res, err := c.Upgrade(ctx, pidgey); err != nil || res.Success {
		t.Errorf("Upgrade = %+v, %v, want refused", res, err)
	}
	if res, err := c.UseLuckyEgg(ctx); err != nil || res != applier.BoostAlreadyActive {
		t.Errorf("UseLuckyEgg = %v, %v, want already active", res, err)
	}
	if ok, err := c.Recycle(ctx, models.ItemPotion, 5); err != nil || !ok {
		t.Errorf("Recycle = %v, %v", ok, err)
	}
}

func TestNoResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", `{"responses":`},
		{"missing request", `{"responses":{"OTHER":{}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, map[string]string{"release_pokemon": tc.body})
			if _, err := c.Release(context.Background(), pidgey); !errors.Is(err, ErrNoResponse) {
				t.Errorf("Release error = %v, want ErrNoResponse", err)
			}
		})
	}

	c, caller := newTestClient(t, nil)
	caller.err = errors.New("connection reset")
	if _, err := c.UseLuckyEgg(context.Background()); err == nil {
		t.Error("Transport errors should surface")
	}
}

func TestBridgeCaller(t *testing.T) {
	var got bridgeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"responses":{"RELEASE_POKEMON":{"candy_awarded":1}}}`)
	}))
	defer srv.Close()

	b, err := NewBridgeCaller(srv.URL)
	if err != nil {
		t.Fatalf("NewBridgeCaller: %v", err)
	}
	raw, err := b.Call(context.Background(), "release_pokemon", map[string]any{"pokemon_id": 7})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got.Method != "release_pokemon" || got.Params["pokemon_id"] != float64(7) {
		t.Errorf("Bridge received %+v", got)
	}
	if string(raw) != `{"responses":{"RELEASE_POKEMON":{"candy_awarded":1}}}` {
		t.Errorf("Unexpected body %s", raw)
	}
}

func TestBridgeCallerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b, err := NewBridgeCaller(srv.URL)
	if err != nil {
		t.Fatalf("NewBridgeCaller: %v", err)
	}
	if _, err := b.Call(context.Background(), "release_pokemon", nil); err == nil {
		t.Error("Expected an error for a 502")
	}
}
