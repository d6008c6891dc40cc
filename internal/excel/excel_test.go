package excel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/deutschbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadTokens_XLSX(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Wort", "Übersetzung"},
		{"der Hund", "dog"},
		{"", "ignored"},
		{"gehen (ging, gegangen)", "to go"},
		{"  sich   freuen ", "to be glad"},
	})

	tokens, err := ReadTokens("list.XLSX", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"der Hund", "gehen", "sich freuen"}, tokens)
}

func TestReadTokens_CSV(t *testing.T) {
	input := "\ufeffword,translation\nKatze,cat\n\"das Haus\",house\nlaufen\n"

	tokens, err := ReadTokens("words.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Katze", "das Haus", "laufen"}, tokens)
}

func TestReadTokens_FirstRowWordIsKept(t *testing.T) {
	tokens, err := ReadTokens("words.csv", strings.NewReader("Hund\nKatze\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund", "Katze"}, tokens)
}

func TestReadTokens_RowLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < MaxRows+20; i++ {
		sb.WriteString("Wort\n")
	}
	tokens, err := ReadTokens("many.csv", strings.NewReader(sb.String()))
	require.NoError(t, err)
	// the first "Wort" is taken as a header
	assert.Len(t, tokens, MaxRows-1)
}

func TestReadTokens_Unsupported(t *testing.T) {
	_, err := ReadTokens("notes.docx", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadTokens("broken.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	der := "der"
	entries := []models.VocabularyEntry{
		{Word: "Hund", WordType: models.WordTypeNoun, Article: &der, Translation: "dog",
			CorrectCount: 3, IncorrectCount: 1, TotalReviews: 4},
		{Word: "laufen", WordType: models.WordTypeVerb, Translation: models.PendingTranslation},
	}

	data, err := Export(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Word", rows[0][0])
	assert.Equal(t, []string{"Hund", "der", "noun", "dog", "3", "1", "4", "75"}, rows[1])
	assert.Equal(t, "laufen", rows[2][0])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "0", rows[2][7])

	// the export can be read back as an import
	tokens, err := ReadTokens("export.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund", "laufen"}, tokens)
}
