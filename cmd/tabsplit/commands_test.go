package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabsplit/internal/cli"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

const lunch = `
participants: [Alice, Bob]
items:
  - name: Noodles
    price: "30"
    consumers: [Alice, Bob]
`

func TestSplitCommandJSON(t *testing.T) {
	out, err := runCmd(t, "split", writeScenario(t, lunch), "--json", "--currency", "$")
	require.NoError(t, err)

	var b cli.Breakdown
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, "$", b.Currency)
	assert.Equal(t, 30.0, b.TotalBill)
	require.Len(t, b.Participants, 2)
	assert.Equal(t, 15.0, b.Participants[0].Total)
	assert.Equal(t, 15.0, b.Participants[1].Total)
}

func TestSplitCommandText(t *testing.T) {
	out, err := runCmd(t, "split", writeScenario(t, lunch))
	require.NoError(t, err)
	assert.Contains(t, out, "Noodles")
	assert.Contains(t, out, "₹15.00")
}

func TestSplitCommandErrors(t *testing.T) {
	_, err := runCmd(t, "split")
	assert.Error(t, err)

	_, err = runCmd(t, "split", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = runCmd(t, "split", writeScenario(t, "participants: [A]\nitems:\n  - name: X\n    consumers: [Z]\n"))
	assert.ErrorIs(t, err, cli.ErrInvalidScenario)
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tabsplit dev\n", out)
}
