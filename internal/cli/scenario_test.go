package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabsplit/internal/ledger"
	"github.com/mmynk/tabsplit/internal/models"
)

const dinner = `
discount: 10
participants: [Alice, Bob, Carol]
items:
  - name: Pizza
    price: "100"
    consumers: [Alice, Bob]
    portions: 4
    weights: {Alice: 3}
  - name: Wine
    price: "60"
    consumers: [Alice, Bob, Carol]
    exempt: true
  - name: Dessert
    price: "abc"
    consumers: [Carol]
`

func TestScenarioApply(t *testing.T) {
	sc, err := DecodeScenario(strings.NewReader(dinner))
	require.NoError(t, err)

	store, err := sc.Apply(nil)
	require.NoError(t, err)
	snap := store.Snapshot()

	require.Len(t, snap.Items, 3)
	pizza := snap.Items[0]
	assert.Equal(t, models.WeightedSplit{Total: 4, Weights: models.Portions{1: 3, 2: 1}}, pizza.Split)
	assert.True(t, snap.Items[1].DiscountExempt)
	assert.Equal(t, 0.0, snap.Items[2].Price)

	// Pizza: 90 after discount, 3/4 and 1/4. Wine: 60 exempt, 20 each.
	assert.InDelta(t, 87.5, snap.MemberTotals[1], 1e-9)
	assert.InDelta(t, 42.5, snap.MemberTotals[2], 1e-9)
	assert.InDelta(t, 20.0, snap.MemberTotals[3], 1e-9)
	assert.InDelta(t, 150.0, snap.TotalBill, 1e-9)
	assert.InDelta(t, 10.0, snap.TotalDiscount, 1e-9)
	assert.Empty(t, snap.Warnings)
}

func TestScenarioErrors(t *testing.T) {
	tests := map[string]string{
		"unknown field":       "participants: [A]\ntip: 5\n",
		"duplicate name":      "participants: [A, A]\n",
		"unknown consumer":    "participants: [A]\nitems:\n  - name: X\n    consumers: [B]\n",
		"weight non-consumer": "participants: [A, B]\nitems:\n  - name: X\n    portions: 2\n    consumers: [A]\n    weights: {B: 1}\n",
		"unnamed item":        "participants: [A]\nitems:\n  - price: \"3\"\n",
		"duplicate weight":    "participants: [A]\nitems:\n  - name: X\n    portions: 2\n    consumers: [A]\n    weights: {A: 1, \" A\": 1}\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			sc, err := DecodeScenario(strings.NewReader(doc))
			if err == nil {
				_, err = sc.Apply(nil)
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestScenarioUnsatisfiableWeight(t *testing.T) {
	doc := `
participants: [A, B]
items:
  - name: Cake
    price: "8"
    portions: 2
    consumers: [A, B]
    weights: {A: 2}
`
	sc, err := DecodeScenario(strings.NewReader(doc))
	require.NoError(t, err)

	_, err = sc.Apply(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrUnsatisfiablePortions)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dinner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dinner), 0o600))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, sc.Participants)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBreakdown(t *testing.T) {
	sc, err := DecodeScenario(strings.NewReader(dinner))
	require.NoError(t, err)
	store, err := sc.Apply(nil)
	require.NoError(t, err)

	b := NewBreakdown(store.Snapshot(), "₹")
	require.Len(t, b.Participants, 3)
	assert.Equal(t, "Alice", b.Participants[0].Name)
	assert.Equal(t, 87.5, b.Participants[0].Total)
	require.Len(t, b.Participants[0].Shares, 2)
	assert.Equal(t, ShareLine{Item: "Pizza", Amount: 67.5, Portions: 3, Discounted: true}, b.Participants[0].Shares[0])

	out := b.Render()
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "₹87.50")
	assert.Contains(t, out, "₹150.00")

	var buf bytes.Buffer
	require.NoError(t, b.WriteJSON(&buf))
	var decoded Breakdown
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, b, decoded)
}

func TestBreakdownRoundsAndWarns(t *testing.T) {
	store := ledger.NewStore(ledger.NewState())
	store.AddParticipant("A")
	store.AddParticipant("B")
	store.AddParticipant("C")
	store.AddItem("Tea")
	store.SetPrice(1, 10)
	store.ToggleConsumer(1, 1)
	store.ToggleConsumer(1, 2)
	store.ToggleConsumer(1, 3)
	store.SetTotalPortions(1, 3)
	store.RemoveParticipant(3)

	b := NewBreakdown(store.Snapshot(), "$")
	assert.Equal(t, 3.33, b.Participants[0].Total)
	require.Len(t, b.Warnings, 1)
	assert.Contains(t, b.Warnings[0], "not all portions allocated")
	assert.Contains(t, b.Render(), "$3.33")
}

func TestScenarioWeightKeysAreTrimmed(t *testing.T) {
	doc := `
participants: [Alice, Bob]
items:
  - name: Pizza
    price: "100"
    portions: 4
    consumers: [Alice, Bob]
    weights: {" Alice ": 3}
`
	sc, err := DecodeScenario(strings.NewReader(doc))
	require.NoError(t, err)

	store, err := sc.Apply(nil)
	require.NoError(t, err)
	assert.Equal(t, models.WeightedSplit{Total: 4, Weights: models.Portions{1: 3, 2: 1}}, store.Snapshot().Items[0].Split)
}
