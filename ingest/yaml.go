package ingest

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

type yamlDriver struct {
	Slot  string `yaml:"slot"`
	Label string `yaml:"label"`
	Unit  string `yaml:"unit"`
}

type yamlPoint struct {
	Period    string     `yaml:"period"`
	Monitored float64    `yaml:"monitored"`
	Drivers   []*float64 `yaml:"drivers"`
}

type yamlBaseline struct {
	ID      string       `yaml:"id"`
	Drivers []yamlDriver `yaml:"drivers"`
	Points  []yamlPoint  `yaml:"points"`
}

// ReadYAML decodes a baseline document:
//
//	id: boiler-2023
//	drivers:
//	  - {slot: X1, label: HDD, unit: degC.day}
//	points:
//	  - {period: 2023-01, monitored: 1250.5, drivers: [412]}
//
// The drivers list of a point is positional (X1 first); a null entry is an
// absent value.
func ReadYAML(r io.Reader, opts ...baseline.Option) (*baseline.Baseline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml: %w", err)
	}

	var doc yamlBaseline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: unmarshal yaml: %v", errs.ErrInvalidFormat, err)
	}

	var drivers baseline.Drivers
	for _, d := range doc.Drivers {
		slot, err := baseline.ParseSlot(d.Slot)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrInvalidFormat, err)
		}
		setDriver(&drivers, slot, baseline.ParseDriverSpec(d.Label, d.Unit))
	}

	points := make([]baseline.DataPoint, 0, len(doc.Points))
	for i, p := range doc.Points {
		period, err := ParsePeriod(p.Period)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if len(p.Drivers) > baseline.MaxDrivers {
			return nil, fmt.Errorf("%w: point %d has %d drivers, at most %d",
				errs.ErrInvalidFormat, i, len(p.Drivers), baseline.MaxDrivers)
		}

		values := make([]baseline.Optional, len(p.Drivers))
		for j, v := range p.Drivers {
			if v != nil {
				values[j] = baseline.Some(*v)
			}
		}
		points = append(points, baseline.NewDataPoint(period, p.Monitored, values...))
	}

	return baseline.New(doc.ID, drivers, points, opts...)
}

// setDriver stores spec at slot. Slot must be valid.
func setDriver(d *baseline.Drivers, slot baseline.Slot, spec baseline.DriverSpec) {
	d[int(slot)-1] = spec
}
