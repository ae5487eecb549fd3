package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

func TestLedgerRecord(t *testing.T) {
	l := NewLedger()
	if !l.Empty() {
		t.Fatal("new ledger should be empty")
	}

	ref := types.ContentRef{ContestID: "omc249", ItemID: "11404"}
	l.Record(StageRender, ref, "en", types.NewAppError(types.ErrRender, "typeset failed", nil))

	failures := l.Failures()
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	f := failures[0]
	if f.Stage != StageRender || f.Ref != "omc249/11404" || f.Language != "en" {
		t.Errorf("failure = %+v", f)
	}
	if f.Code != types.ErrRender {
		t.Errorf("code = %q", f.Code)
	}
	if l.Empty() {
		t.Error("ledger should not be empty after a record")
	}
}

func TestLedgerConcurrentRecords(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordStage(StageSite, errors.New("boom"))
		}()
	}
	wg.Wait()
	if got := len(l.Failures()); got != 20 {
		t.Errorf("failures = %d, want 20", got)
	}
}

func TestLedgerDump(t *testing.T) {
	l := NewLedger()
	l.Record(StageTranslate, types.ContentRef{ContestID: "c", ItemID: "1"}, "fr",
		types.NewAppError(types.ErrTranslation, "lost placeholders", nil))

	path := filepath.Join(t.TempDir(), "failures.json")
	if err := l.Dump(path); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []Failure
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Language != "fr" {
		t.Errorf("decoded = %+v", decoded)
	}
}
