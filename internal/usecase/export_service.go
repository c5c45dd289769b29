package usecase

import (
	"context"
	"fmt"
	"io"

	"invoice-reconciliation-service/internal/domain/entity"
	"invoice-reconciliation-service/internal/domain/repository"
	"invoice-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet holding exported rows
const ExportSheetName = "Reconciliation"

// ExportService writes filtered reconciliation rows to a spreadsheet
type ExportService struct {
	reconciliationRepo repository.ReconciliationRepository
	batchSize          int
	logger             logger.Logger
}

// NewExportService creates a new export service
func NewExportService(reconciliationRepo repository.ReconciliationRepository, batchSize int, logger logger.Logger) *ExportService {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &ExportService{
		reconciliationRepo: reconciliationRepo,
		batchSize:          batchSize,
		logger:             logger,
	}
}

// WriteXLSX writes a header row and every row matching params to w.
// All batches are read from one snapshot of the table. Nothing is written
// to w before every row has been read. Limit and Offset of params are
// ignored. Returns the number of data rows.
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer, params entity.QueryParams) (int, error) {
	predicates := BuildPredicates(params)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return 0, fmt.Errorf("failed to prepare sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(ExportSheetName)
	if err != nil {
		return 0, fmt.Errorf("failed to open stream writer: %w", err)
	}

	header := make([]interface{}, len(entity.ReconciliationColumns))
	for i, col := range entity.ReconciliationColumns {
		header[i] = col
	}
	if err := writeRow(sw, 1, header); err != nil {
		return 0, err
	}

	written := 0
	err = s.reconciliationRepo.ReadConsistent(ctx, func(repo repository.ReconciliationRepository) error {
		for offset := 0; ; offset += s.batchSize {
			records, err := repo.FindPaged(ctx, predicates, s.batchSize, offset)
			if err != nil {
				return fmt.Errorf("failed to load export batch at offset %d: %w", offset, err)
			}
			for _, r := range records {
				serialized := r.Serialize()
				values := make([]interface{}, len(entity.ReconciliationColumns))
				for i, col := range entity.ReconciliationColumns {
					values[i] = serialized[col]
				}
				if err := writeRow(sw, written+2, values); err != nil {
					return err
				}
				written++
			}
			if len(records) < s.batchSize {
				return nil
			}
		}
	})
	if err != nil {
		return written, err
	}

	if err := sw.Flush(); err != nil {
		return written, fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return written, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Reconciliation export written", "rows", written, "predicates", len(predicates))
	return written, nil
}

func writeRow(sw *excelize.StreamWriter, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid export row %d: %w", row, err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("failed to write export row %d: %w", row, err)
	}
	return nil
}
