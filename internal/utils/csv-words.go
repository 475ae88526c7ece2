package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ReadCsvFile loads a word list from a CSV file. See ReadCsv for the format.
func ReadCsvFile(filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to read input file %s: %w", filePath, err)
	}
	defer f.Close()

	words, err := ReadCsv(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse file as CSV for %s: %w", filePath, err)
	}
	return words, nil
}

// ReadCsv reads one word per record from the first column. Extra columns are
// ignored, blank records and lines starting with '#' are skipped.
func ReadCsv(r io.Reader) ([]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	csvReader.Comment = '#'
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	words := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		word := strings.TrimSpace(record[0])
		if word == "" {
			log.Debug().Strs("record", record).Msg("[ReadCsv] skipping empty record")
			continue
		}
		words = append(words, word)
	}

	return words, nil
}
