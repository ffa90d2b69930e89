package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/miretskiy/ossim/simulator"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagingRun(t *testing.T) (simulator.Request, *simulator.Run) {
	t.Helper()
	req := simulator.DefaultRequest()
	req.Family = simulator.FamilyPaging
	req.Algorithm = "optimal"
	req.References = []int{7, 0, 1, 2, 0, 3, 0, 4}
	run, err := simulator.Execute(req)
	require.NoError(t, err)
	return req, run
}

func TestNewRunRecord(t *testing.T) {
	req, run := pagingRun(t)

	rec, err := NewRunRecord(req, run)
	require.NoError(t, err)
	require.Len(t, rec.ID, 36)
	require.Equal(t, "paging", rec.AlgorithmType)
	require.Equal(t, "optimal", rec.AlgorithmName)
	require.False(t, rec.CreatedAt.IsZero())

	var input struct {
		Input  []int               `json:"input"`
		Config simulator.RunConfig `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rec.InputData, &input))
	require.Equal(t, req.References, input.Input)
	require.Equal(t, 3, input.Config.FrameCount)

	var output simulator.PageResult
	require.NoError(t, json.Unmarshal(rec.OutputData, &output))
	require.Equal(t, run.Paging.Summary, output.Summary)

	other, err := NewRunRecord(req, run)
	require.NoError(t, err)
	require.NotEqual(t, rec.ID, other.ID)

	_, err = NewRunRecord(req, nil)
	require.Error(t, err)
}

func TestMemoryRecorder_Limit(t *testing.T) {
	req, run := pagingRun(t)
	m := NewMemoryRecorder(2)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := NewRunRecord(req, run)
		require.NoError(t, err)
		require.NoError(t, m.Record(context.Background(), rec))
		ids = append(ids, rec.ID)
	}

	records, err := m.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, ids[1], records[0].ID)
	require.Equal(t, ids[2], records[1].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Record(ctx, records[0]), context.Canceled)
	require.NoError(t, m.Close())
}

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	req, run := pagingRun(t)
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	var logs bytes.Buffer
	f, err := NewFileRecorder(path, zerolog.New(&logs).Level(zerolog.DebugLevel))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := NewRunRecord(req, run)
			if assert.NoError(t, err) {
				assert.NoError(t, f.Record(context.Background(), rec))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, f.Close())
	require.NoError(t, f.Close(), "closing twice is harmless")

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 8)
	for _, rec := range records {
		require.Equal(t, "paging", rec.AlgorithmType)
	}
	require.Contains(t, logs.String(), "run recorded")

	rec, err := NewRunRecord(req, run)
	require.NoError(t, err)
	require.Error(t, f.Record(context.Background(), rec), "recording after close must fail")
}

func TestFileRecorder_Records(t *testing.T) {
	req, run := pagingRun(t)
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	first, err := NewFileRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	records, err := first.Records()
	require.NoError(t, err)
	require.Empty(t, records)
	require.NotNil(t, records)

	earlier, err := NewRunRecord(req, run)
	require.NoError(t, err)
	require.NoError(t, first.Record(context.Background(), earlier))
	require.NoError(t, first.Close())

	// A reopened recorder serves history written by the previous one
	second, err := NewFileRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer second.Close()
	later, err := NewRunRecord(req, run)
	require.NoError(t, err)
	require.NoError(t, second.Record(context.Background(), later))

	records, err = second.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, earlier.ID, records[0].ID)
	require.Equal(t, later.ID, records[1].ID)
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	require.NoError(t, r.Record(context.Background(), RunRecord{}))
	require.NoError(t, r.Close())
}
