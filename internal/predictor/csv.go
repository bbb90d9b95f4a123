package predictor

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// labelColumn is the CSV column holding the binary appeal outcome.
const labelColumn = "outcome"

// LoadCSV reads historical training data. The header selects columns by
// name; feature columns absent from the file are filled with 0, matching
// the best-effort contract for supplied data. The label column is required.
func LoadCSV(path string) ([]Example, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening training data: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading training data: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("training data has no rows")
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}

	labelIdx, ok := colIndex[labelColumn]
	if !ok {
		return nil, fmt.Errorf("training data is missing the %q column", labelColumn)
	}

	featureIdx := [NumFeatures]int{}
	for j, name := range featureColumns {
		if i, ok := colIndex[name]; ok {
			featureIdx[j] = i
		} else {
			featureIdx[j] = -1 // absent column, filled with 0
		}
	}

	examples := make([]Example, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		var ex Example
		for j, i := range featureIdx {
			if i < 0 || i >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(row[i], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", lineNo+2, featureColumns[j], err)
			}
			ex.Features[j] = v
		}
		if labelIdx >= len(row) {
			return nil, fmt.Errorf("row %d is missing the label column", lineNo+2)
		}
		label, err := strconv.ParseFloat(row[labelIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %q: %w", lineNo+2, labelColumn, err)
		}
		if label == 1 {
			ex.Label = 1
		}
		examples = append(examples, ex)
	}
	return examples, nil
}
