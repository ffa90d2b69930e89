package integration

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/miretskiy/ossim/simulator"
	"github.com/rs/zerolog"
)

// RunRecord is what an analytics or history service receives after a run
type RunRecord struct {
	ID              string          `json:"id"`
	AlgorithmType   string          `json:"algorithmType"` // Generator family: cpu, paging or disk
	AlgorithmName   string          `json:"algorithmName"`
	InputData       json.RawMessage `json:"inputData"`
	OutputData      json.RawMessage `json:"outputData"`
	ExecutionTimeMs float64         `json:"executionTimeMs"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// recordInput is the serialized shape of InputData
type recordInput struct {
	Input  interface{}         `json:"input"`
	Config simulator.RunConfig `json:"config"`
}

// NewRunRecord captures a finished run and the request that produced it
func NewRunRecord(req simulator.Request, run *simulator.Run) (RunRecord, error) {
	if run == nil {
		return RunRecord{}, fmt.Errorf("nil run")
	}

	input, err := json.Marshal(recordInput{Input: req.Input(), Config: run.Config})
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal input: %w", err)
	}

	var result interface{}
	switch run.Family {
	case simulator.FamilyCPU:
		result = run.CPU
	case simulator.FamilyPaging:
		result = run.Paging
	case simulator.FamilyDisk:
		result = run.Disk
	}
	output, err := json.Marshal(result)
	if err != nil {
		return RunRecord{}, fmt.Errorf("marshal output: %w", err)
	}

	return RunRecord{
		ID:              uuid.NewString(),
		AlgorithmType:   run.Family.String(),
		AlgorithmName:   run.Algorithm,
		InputData:       input,
		OutputData:      output,
		ExecutionTimeMs: run.ExecutionTimeMs,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// Recorder stores run records. The simulator core never depends on it.
type Recorder interface {
	Record(ctx context.Context, rec RunRecord) error
	Close() error
}

// NopRecorder drops every record
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, RunRecord) error { return nil }
func (NopRecorder) Close() error                            { return nil }

// MemoryRecorder keeps records in memory, newest last
type MemoryRecorder struct {
	mu      sync.Mutex
	records []RunRecord
	limit   int
}

// NewMemoryRecorder keeps at most limit records (0 = unbounded)
func NewMemoryRecorder(limit int) *MemoryRecorder {
	return &MemoryRecorder{limit: limit}
}

func (m *MemoryRecorder) Record(ctx context.Context, rec RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if m.limit > 0 && len(m.records) > m.limit {
		m.records = m.records[len(m.records)-m.limit:]
	}
	return nil
}

// Records returns a copy of the stored records
func (m *MemoryRecorder) Records() ([]RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RunRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryRecorder) Close() error { return nil }

// FileRecorder appends one JSON document per line
type FileRecorder struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	enc    *json.Encoder
	logger zerolog.Logger
}

// NewFileRecorder opens (or creates) path for appending
func NewFileRecorder(path string, logger zerolog.Logger) (*FileRecorder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	return &FileRecorder{
		path:   path,
		file:   file,
		enc:    json.NewEncoder(file),
		logger: logger.With().Str("component", "recorder").Str("path", path).Logger(),
	}, nil
}

func (f *FileRecorder) Record(ctx context.Context, rec RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return fmt.Errorf("recorder closed")
	}
	if err := f.enc.Encode(rec); err != nil {
		f.logger.Error().Err(err).Str("id", rec.ID).Msg("failed to write run record")
		return fmt.Errorf("write record %s: %w", rec.ID, err)
	}
	f.logger.Debug().Str("id", rec.ID).Str("algorithm", rec.AlgorithmType+"/"+rec.AlgorithmName).Msg("run recorded")
	return nil
}

func (f *FileRecorder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Records reads back everything in the record file, including records
// written before this recorder was opened.
func (f *FileRecorder) Records() ([]RunRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := LoadRecords(f.path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	if records == nil {
		records = []RunRecord{}
	}
	return records, nil
}

// LoadRecords reads every record written by a FileRecorder
func LoadRecords(path string) ([]RunRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []RunRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
