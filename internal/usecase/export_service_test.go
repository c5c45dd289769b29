package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"invoice-reconciliation-service/internal/domain/entity"

	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	repo := &fakeReconciliationRepo{records: sampleTable()}
	svc := NewExportService(repo, 2, newTestLogger())

	var buf bytes.Buffer
	n, err := svc.WriteXLSX(context.Background(), &buf, entity.QueryParams{Filter: "matched", Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("WriteXLSX returned error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 exported rows, got %d", n)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(ExportSheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	if rows[0][0] != entity.ReconciliationColumns[0] {
		t.Errorf("unexpected header %v", rows[0])
	}

	seqCol := -1
	for i, col := range rows[0] {
		if col == "Seq" {
			seqCol = i
		}
	}
	if seqCol < 0 {
		t.Fatal("Seq column missing")
	}
	for i, want := range []string{"0", "1", "2"} {
		if rows[i+1][seqCol] != want {
			t.Errorf("row %d: expected seq %s, got %s", i+1, want, rows[i+1][seqCol])
		}
	}
}

func TestWriteXLSXRepositoryError(t *testing.T) {
	repo := &fakeReconciliationRepo{err: errors.New("timeout")}
	svc := NewExportService(repo, 10, newTestLogger())

	var buf bytes.Buffer
	if _, err := svc.WriteXLSX(context.Background(), &buf, entity.QueryParams{}); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written on failure")
	}
}

func TestWriteXLSXReadsOneSnapshot(t *testing.T) {
	repo := &fakeReconciliationRepo{records: sampleTable()}
	repo.onSnapshot = func() {
		// a rebuild lands while the export is paging
		_ = repo.ReplaceAll(context.Background(), nil)
	}
	svc := NewExportService(repo, 1, newTestLogger())

	var buf bytes.Buffer
	n, err := svc.WriteXLSX(context.Background(), &buf, entity.QueryParams{Filter: "matched"})
	if err != nil {
		t.Fatalf("WriteXLSX returned error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows from the snapshot, got %d", n)
	}
	if repo.snapshots != 1 {
		t.Errorf("expected one consistent read, got %d", repo.snapshots)
	}
}
