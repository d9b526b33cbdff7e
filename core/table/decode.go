package table

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-insights/core"
)

// oleMagic starts every legacy (BIFF, OLE2 compound document) .xls workbook.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Decode reads r as a spreadsheet, choosing the decoder by the (case-insensitive) extension of filename:
// .csv, .xls or .xlsx. The first row is the header.
func Decode(filename string, r io.Reader) (Table, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	switch ext {
	case ".csv", ".xls", ".xlsx":
	default:
		return Table{}, &core.UnsupportedFormatError{Filename: filename}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, &core.DecodeError{Filename: filename, Err: errors.Wrap(err, "reading upload")}
	}

	var records [][]string
	switch ext {
	case ".csv":
		records, err = decodeCSV(data)
	default:
		records, err = decodeWorkbook(data)
	}
	if err != nil {
		return Table{}, &core.DecodeError{Filename: filename, Err: err}
	}
	if len(records) == 0 {
		return Table{}, &core.DecodeError{Filename: filename, Err: errors.New("no header row")}
	}
	return New(records[0], records[1:]), nil
}

func decodeCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")) // UTF-8 BOM
	rd := csv.NewReader(bytes.NewReader(data))
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing csv")
	}
	return records, nil
}

// decodeWorkbook reads the first sheet of an Office Open XML workbook.
// Legacy binary workbooks are rejected with an explicit message.
func decodeWorkbook(data []byte) ([][]string, error) {
	if bytes.HasPrefix(data, oleMagic) {
		return nil, errors.New("legacy binary (BIFF) .xls workbooks are not supported, save the file as .xlsx or .csv")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheets[0])
	}
	return rows, nil
}
