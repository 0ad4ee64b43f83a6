package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/orrery/config"
	"github.com/pthm-cable/orrery/physics"
)

// BodyRecord is one body's state at a sampled tick, as written to bodies.csv.
type BodyRecord struct {
	Tick    int64   `csv:"tick"`
	SimTime float64 `csv:"sim_time"`
	Handle  uint32  `csv:"handle"`
	Name    string  `csv:"name"`
	X       float64 `csv:"x"`
	Y       float64 `csv:"y"`
	Z       float64 `csv:"z"`
	VX      float64 `csv:"vx"`
	VY      float64 `csv:"vy"`
	VZ      float64 `csv:"vz"`
	Mass    float64 `csv:"mass"`
	Radius  float64 `csv:"radius"`
	Emitter bool    `csv:"emitter"`
}

// BodyRecords converts a registry snapshot into CSV rows.
func BodyRecords(tick int64, simTime float64, states []physics.BodyState) []BodyRecord {
	records := make([]BodyRecord, len(states))
	for i, s := range states {
		records[i] = BodyRecord{
			Tick:    tick,
			SimTime: simTime,
			Handle:  uint32(s.Handle),
			Name:    s.Name,
			X:       s.Position.X,
			Y:       s.Position.Y,
			Z:       s.Position.Z,
			VX:      s.Velocity.X,
			VY:      s.Velocity.Y,
			VZ:      s.Velocity.Z,
			Mass:    s.Mass,
			Radius:  s.Radius,
			Emitter: s.Emitter,
		}
	}
	return records
}

// csvFile is an output file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

// write marshals records (a slice of csv-tagged structs).
func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	perf      *csvFile
	bodies    *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = createCSV(dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createCSV(dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bodies, err = createCSV(dir, "bodies.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64, bodies int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd, bodies)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBodies appends body state rows to bodies.csv.
func (om *OutputManager) WriteBodies(records []BodyRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.bodies.write(records); err != nil {
		return fmt.Errorf("writing bodies: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.telemetry, om.perf, om.bodies} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
