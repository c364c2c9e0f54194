// Package cli loads bill scenarios from YAML and renders their breakdown for
// the tabsplit command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/tabsplit/internal/ledger"
)

// Scenario is a bill described in a YAML file:
//
//	discount: 10
//	participants: [Alice, Bob]
//	items:
//	  - name: Pizza
//	    price: "100"
//	    consumers: [Alice, Bob]
//	    portions: 4
//	    weights: {Alice: 3}
type Scenario struct {
	Discount     float64        `yaml:"discount"`
	Participants []string       `yaml:"participants"`
	Items        []ScenarioItem `yaml:"items"`
}

// ScenarioItem is one line of a Scenario. Price is text so that typos
// normalize to 0 the same way the interactive editor does.
type ScenarioItem struct {
	Name      string         `yaml:"name"`
	Price     string         `yaml:"price"`
	Consumers []string       `yaml:"consumers"`
	Portions  int            `yaml:"portions"`
	Weights   map[string]int `yaml:"weights"`
	Exempt    bool           `yaml:"exempt"`
}

var ErrInvalidScenario = errors.New("invalid scenario")

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeScenario(f)
}

// DecodeScenario parses a scenario, rejecting unknown fields.
func DecodeScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return &sc, nil
}

// Apply replays the scenario against a fresh bill. For each item the total
// portions are set first, then consumers are toggled on, then explicit
// weights are applied in consumer order.
func (sc *Scenario) Apply(logger *slog.Logger) (*ledger.Store, error) {
	store := ledger.NewStore(ledger.NewState())
	if logger != nil {
		store = store.WithLogger(logger)
	}

	ids := make(map[string]int, len(sc.Participants))
	for _, name := range sc.Participants {
		key := strings.TrimSpace(name)
		if key == "" {
			return nil, fmt.Errorf("%w: blank participant name", ErrInvalidScenario)
		}
		if _, dup := ids[key]; dup {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidScenario, key)
		}
		snap := store.AddParticipant(key)
		ids[key] = snap.Participants[len(snap.Participants)-1].ID
	}

	for i, item := range sc.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrInvalidScenario, i+1)
		}
		snap := store.AddItem(item.Name)
		itemID := snap.Items[len(snap.Items)-1].ID

		store.SetPrice(itemID, ledger.ParsePrice(item.Price))
		if item.Portions > 0 {
			store.SetTotalPortions(itemID, item.Portions)
		}

		consumers := make([]int, 0, len(item.Consumers))
		for _, name := range item.Consumers {
			id, ok := ids[strings.TrimSpace(name)]
			if !ok {
				return nil, fmt.Errorf("%w: item %q: unknown consumer %q", ErrInvalidScenario, item.Name, name)
			}
			store.ToggleConsumer(itemID, id)
			consumers = append(consumers, id)
		}

		weights, err := normalizeWeights(item)
		if err != nil {
			return nil, err
		}
		for j, name := range item.Consumers {
			weight, ok := weights[strings.TrimSpace(name)]
			if !ok {
				continue
			}
			if _, err := store.SetMemberPortion(itemID, consumers[j], weight); err != nil {
				return nil, fmt.Errorf("item %q: %s: %w", item.Name, name, err)
			}
		}

		if item.Exempt {
			store.SetDiscountExempt(itemID, true)
		}
	}

	store.SetDiscountPercent(sc.Discount)
	return store, nil
}

// normalizeWeights trims the weight keys and checks each names a consumer.
func normalizeWeights(item ScenarioItem) (map[string]int, error) {
	consumers := make(map[string]bool, len(item.Consumers))
	for _, name := range item.Consumers {
		consumers[strings.TrimSpace(name)] = true
	}

	weights := make(map[string]int, len(item.Weights))
	for name, weight := range item.Weights {
		key := strings.TrimSpace(name)
		if !consumers[key] {
			return nil, fmt.Errorf("%w: item %q: weight for %q who is not a consumer", ErrInvalidScenario, item.Name, name)
		}
		if _, dup := weights[key]; dup {
			return nil, fmt.Errorf("%w: item %q: duplicate weight for %q", ErrInvalidScenario, item.Name, key)
		}
		weights[key] = weight
	}
	return weights, nil
}
