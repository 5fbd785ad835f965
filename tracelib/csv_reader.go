package tracelib

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// csvRecordMaker converts parsed CSV row into something meaningful. If
// it returns an error, row is skipped.
type csvRecordMaker func([]string) error

type csvReader struct {
	reader      *csv.Reader
	makeRecord  csvRecordMaker
	fieldsCount int
	skipped     int
}

func (c *csvReader) ReadAll() error {
	for {
		data, err := c.reader.Read()

		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return errors.Annotate(err, "Cannot read new record")
		case len(data) == 0:
			continue
		case len(data) != c.fieldsCount:
			c.skipped++

			continue
		}

		if err := c.makeRecord(data); err != nil {
			c.skipped++
		}
	}
}

func newCSVReader(r io.Reader, fieldsCount int, makeRecord csvRecordMaker) *csvReader {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	return &csvReader{
		reader:      reader,
		makeRecord:  makeRecord,
		fieldsCount: fieldsCount,
	}
}

func csvFloat(value string) (float64, error) {
	rv, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Annotatef(err, "Incorrect float %s", value)
	}

	if math.IsNaN(rv) || math.IsInf(rv, 0) {
		return 0, errors.Errorf("Float %s is not finite", value)
	}

	return rv, nil
}
