package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// ReadCSV decodes a baseline exported as CSV.
//
// Leading rows starting with '#' carry metadata:
//
//	#id,boiler-2023
//	#driver,X1,HDD,degC.day
//
// followed by a header naming the period, monitored and driver columns, in any
// order and with any subset of X1..X5:
//
//	period,monitored,X1,X2
//	2023-01,1250.5,412,
//
// Empty, "-" and unused-caption cells are absent values. A driver column without
// a #driver row is marked used and captioned by its slot name. fallbackID is
// used when no #id row is present.
func ReadCSV(r io.Reader, fallbackID string, opts ...baseline.Option) (*baseline.Baseline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	id := fallbackID
	var drivers baseline.Drivers
	declared := make(map[baseline.Slot]bool)

	var (
		header  map[string]int
		columns map[baseline.Slot]int
		points  []baseline.DataPoint
	)

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read csv: %v", errs.ErrInvalidFormat, err)
		}
		if blank(record) {
			continue
		}

		if header == nil {
			first := strings.TrimSpace(record[0])
			if strings.HasPrefix(first, "#") {
				if err := readMeta(record, &id, &drivers, declared); err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}

				continue
			}

			header, columns, err = readHeader(record)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			for slot := range columns {
				if !declared[slot] {
					setDriver(&drivers, slot, baseline.ParseDriverSpec(slot.String(), ""))
				}
			}

			continue
		}

		p, err := readRow(record, header, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, p)
	}

	if header == nil {
		return nil, fmt.Errorf("%w: csv has no header row", errs.ErrInvalidFormat)
	}

	return baseline.New(id, drivers, points, opts...)
}

func readMeta(record []string, id *string, drivers *baseline.Drivers, declared map[baseline.Slot]bool) error {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(record[0]), "#"))
	switch key {
	case "id":
		if len(record) < 2 {
			return fmt.Errorf("%w: #id row without value", errs.ErrInvalidFormat)
		}
		*id = strings.TrimSpace(record[1])
	case "driver":
		if len(record) < 3 {
			return fmt.Errorf("%w: #driver row needs slot and label", errs.ErrInvalidFormat)
		}
		slot, err := baseline.ParseSlot(record[1])
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrInvalidFormat, err)
		}
		unit := ""
		if len(record) > 3 {
			unit = record[3]
		}
		setDriver(drivers, slot, baseline.ParseDriverSpec(record[2], unit))
		declared[slot] = true
	}

	return nil
}

func readHeader(record []string) (map[string]int, map[baseline.Slot]int, error) {
	header := make(map[string]int, len(record))
	columns := make(map[baseline.Slot]int)
	for i, name := range record {
		key := strings.ToLower(strings.TrimSpace(name))
		if slot, err := baseline.ParseSlot(key); err == nil && strings.HasPrefix(key, "x") {
			if _, dup := columns[slot]; dup {
				return nil, nil, fmt.Errorf("%w: duplicate column %s", errs.ErrInvalidFormat, slot)
			}
			columns[slot] = i

			continue
		}
		header[key] = i
	}

	for _, required := range []string{"period", "monitored"} {
		if _, ok := header[required]; !ok {
			return nil, nil, fmt.Errorf("%w: missing %q column", errs.ErrInvalidFormat, required)
		}
	}

	return header, columns, nil
}

func readRow(record []string, header map[string]int, columns map[baseline.Slot]int) (baseline.DataPoint, error) {
	var p baseline.DataPoint

	period, err := ParsePeriod(cell(record, header["period"]))
	if err != nil {
		return p, err
	}
	monitored, err := parseMonitored(cell(record, header["monitored"]))
	if err != nil {
		return p, err
	}
	p = baseline.NewDataPoint(period, monitored)

	for slot, idx := range columns {
		v, err := parseDriverCell(cell(record, idx))
		if err != nil {
			return p, fmt.Errorf("column %s: %w", slot, err)
		}
		p.Drivers[int(slot)-1] = v
	}

	return p, nil
}

func cell(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}

	return ""
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}
