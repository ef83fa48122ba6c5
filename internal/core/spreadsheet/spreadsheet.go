// internal/core/spreadsheet/spreadsheet.go
package spreadsheet

import (
	"bytes"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// ConvertXLSX lê a primeira planilha de um export .xlsx e devolve as linhas no
// mesmo formato do tokenizador de CSV.
func ConvertXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return dropBlank(rows), nil
}

// ConvertXLS cobre o formato binário antigo. Alguns exports chegam com
// extensão .xls mas conteúdo xlsx; nesse caso o parser moderno assume.
func ConvertXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		if _, errX := excelize.OpenReader(bytes.NewReader(data)); errX == nil {
			return ConvertXLSX(data)
		}
		return nil, err
	}

	var rows [][]string
	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, nil
	}
	for _, row := range sheets[0].GetRows() {
		var fields []string
		for _, cell := range row.GetCols() {
			fields = append(fields, cell.GetString())
		}
		rows = append(rows, fields)
	}
	return dropBlank(rows), nil
}

func dropBlank(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		blank := true
		for _, field := range row {
			if field != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}
