package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/classifier"
	"github.com/roach88/tally/internal/testutil"
)

const (
	textExpense  = "paid 1200 for the electricity bill"
	textSale     = "sold 5 rice at 30"
	textQuestion = "how much rice do I have?"
)

func scripted(t *testing.T) *classifier.Scripted {
	t.Helper()
	cls, err := classifier.NewScripted()
	require.NoError(t, err)
	cls.Reply(textExpense, `{"is_action": true, "kind": "add_expense", "confidence": 0.93,
		"payload": {"amount": 1200, "description": "electricity bill", "category": "Electricity"}}`)
	cls.Reply(textSale, `{"is_action": true, "kind": "add_sale",
		"payload": {"items": [{"name": "Rice", "quantity": 5, "price": 30}]}}`)
	cls.Reply(textQuestion, `{"is_action": false, "reason": "question"}`)
	return cls
}

// writeConfig writes a config with a fresh SQLite ledger. A non-empty
// redisAddr selects the redis pending backend.
func writeConfig(t *testing.T, redisAddr string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf("database:\n  driver: sqlite3\n  dsn: %s\n", filepath.Join(dir, "ledger.db"))
	if redisAddr != "" {
		content += fmt.Sprintf("pending:\n  backend: redis\n  redis:\n    addr: %s\n    prefix: cli-test\n", redisAddr)
	}
	path := filepath.Join(dir, "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestOptions(t *testing.T) *RootOptions {
	t.Helper()
	return &RootOptions{
		Classifier: scripted(t),
		IDs:        testutil.NewSequenceGenerator(""),
	}
}

// execute runs the CLI once with opts and returns stdout, stderr and the error.
func execute(t *testing.T, opts *RootOptions, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommandWith(opts)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse parses a single JSON response, decoding Data into data.
func decodeResponse(t *testing.T, raw string, data any) Response {
	t.Helper()
	var env struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *ErrorBody      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &env), "output: %s", raw)
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return Response{Status: env.Status, Error: env.Error}
}
