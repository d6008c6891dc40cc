package excel

import (
	"fmt"

	"github.com/example/deutschbot/pkg/models"
	"github.com/xuri/excelize/v2"
)

// exportSheet is the default sheet of a new workbook.
const exportSheet = "Sheet1"

var exportHeader = []interface{}{
	"Word", "Article", "Type", "Translation", "Correct", "Incorrect", "Reviews", "Success rate %",
}

// Export writes the entries to an xlsx workbook and returns its bytes.
// Pending translations are written as empty cells.
func Export(entries []models.VocabularyEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %v", err)
	}

	for i := range entries {
		e := &entries[i]
		translation := e.Translation
		if e.IsPending() {
			translation = ""
		}
		row := []interface{}{
			e.Word,
			e.ArticleText(),
			string(e.WordType),
			translation,
			e.CorrectCount,
			e.IncorrectCount,
			e.TotalReviews,
			fmt.Sprintf("%.0f", e.SuccessRate()),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %v", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "A", 24); err != nil {
		return nil, fmt.Errorf("failed to set column width: %v", err)
	}
	if err := f.SetColWidth(exportSheet, "D", "D", 30); err != nil {
		return nil, fmt.Errorf("failed to set column width: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %v", err)
	}
	return buf.Bytes(), nil
}
