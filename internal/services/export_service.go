package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const GradesSheetName = "Grades"

var gradesHeader = []string{"Student", "Assignment", "Score", "Percentage", "Submitted"}

type exportService struct {
	analytics AnalyticsService
	logger    *slog.Logger
}

func NewExportService(analytics AnalyticsService, logger *slog.Logger) ExportService {
	return &exportService{
		analytics: analytics,
		logger:    logger,
	}
}

func (s *exportService) ExportGrades(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.analytics.Grades(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", GradesSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(GradesSheetName, "A1", &gradesHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(GradesSheetName, "A1", "E1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{
			row.StudentName,
			row.AssignmentTitle,
			row.ScoreLabel,
			row.PercentageLabel,
			row.SubmittedAt.Format("2006-01-02"),
		}
		if err := f.SetSheetRow(GradesSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(GradesSheetName, "A", "B", 28); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.logger.Info("Grades exported", "user_id", userID, "rows", len(rows))
	return buf.Bytes(), nil
}
