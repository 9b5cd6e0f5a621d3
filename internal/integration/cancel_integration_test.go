// internal/integration/cancel_integration_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"covest/internal/app"
)

func TestCtrlC_MidEstimate_Exit130(t *testing.T) {
	// A wide spectrum so grid refinement has real work to interrupt.
	var sb strings.Builder
	for j := 1; j <= 400; j++ {
		sb.WriteString(strconv.Itoa(j))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(1000 / j))
		sb.WriteByte('\n')
	}
	fn := filepath.Join(t.TempDir(), "cancel.hist")
	if err := os.WriteFile(fn, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write hist: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // simulate Ctrl-C before optimization starts

	var out, errBuf bytes.Buffer
	code := app.RunContext(ctx, []string{"-grid", "pre", fn}, &out, &errBuf)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d (stderr: %s)", code, errBuf.String())
	}
	// The best-so-far report is still emitted.
	var rep map[string]any
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("cancelled run must still print a report: %v\n%s", err, out.String())
	}
}
