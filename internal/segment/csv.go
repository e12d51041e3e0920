package segment

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// The segmenter exports tab-separated records with a "labels start stop"
// header row.

// ReadFile loads a segmentation export from disk.
func ReadFile(path string) (List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segmentation: %w", err)
	}
	defer file.Close()
	list, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read segmentation %s: %w", path, err)
	}
	return list, nil
}

// ReadCSV parses tab-separated segmentation records from r. The first row is
// treated as a header when it does not parse as data.
func ReadCSV(r io.Reader) (List, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var list List
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		row++
		seg, ok, err := parseRecord(record)
		if err != nil {
			if row == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ok {
			list = append(list, seg)
		}
	}
	return list, nil
}

// WriteFile writes the list to path in the segmenter's tab-separated export
// format.
func WriteFile(path string, list List) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create segmentation: %w", err)
	}
	if err := WriteCSV(file, list); err != nil {
		file.Close()
		return fmt.Errorf("write segmentation %s: %w", path, err)
	}
	return file.Close()
}

// WriteCSV writes the list in the segmenter's tab-separated export format.
func WriteCSV(w io.Writer, list List) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"labels", "start", "stop"}); err != nil {
		return err
	}
	for _, seg := range list {
		record := []string{
			string(seg.Label),
			strconv.FormatFloat(seg.Start, 'f', -1, 64),
			strconv.FormatFloat(seg.Stop, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseRecord(record []string) (Segment, bool, error) {
	if len(record) == 0 || (len(record) == 1 && record[0] == "") {
		return Segment{}, false, nil
	}
	if len(record) < 3 {
		return Segment{}, false, fmt.Errorf("expected 3 fields, got %d", len(record))
	}
	start, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return Segment{}, false, fmt.Errorf("parse start %q: %w", record[1], err)
	}
	stop, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return Segment{}, false, fmt.Errorf("parse stop %q: %w", record[2], err)
	}
	return Segment{Label: ParseLabel(record[0]), Start: start, Stop: stop}, true, nil
}
