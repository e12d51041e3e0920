package segment

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type jsonSegment struct {
	Label string  `json:"label"`
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// WriteJSON writes the list to w as a JSON array of labeled intervals, the
// structured form kept alongside run artifacts.
func WriteJSON(w io.Writer, list List) error {
	records := make([]jsonSegment, 0, len(list))
	for _, seg := range list {
		records = append(records, jsonSegment{
			Label: string(seg.Label),
			Start: seg.Start,
			Stop:  seg.Stop,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// WriteJSONFile writes the list to path in the JSON form.
func WriteJSONFile(path string, list List) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create segmentation json: %w", err)
	}
	if err := WriteJSON(file, list); err != nil {
		file.Close()
		return fmt.Errorf("write segmentation json %s: %w", path, err)
	}
	return file.Close()
}

// ReadJSONFile loads a JSON-form segmentation export from disk.
func ReadJSONFile(path string) (List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segmentation json: %w", err)
	}
	defer file.Close()
	list, err := ReadJSON(file)
	if err != nil {
		return nil, fmt.Errorf("read segmentation %s: %w", path, err)
	}
	return list, nil
}

// ReadJSON parses the JSON form back into a list.
func ReadJSON(r io.Reader) (List, error) {
	var records []jsonSegment
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse segmentation json: %w", err)
	}
	list := make(List, 0, len(records))
	for _, rec := range records {
		list = append(list, Segment{
			Label: ParseLabel(rec.Label),
			Start: rec.Start,
			Stop:  rec.Stop,
		})
	}
	return list, nil
}
