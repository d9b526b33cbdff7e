package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-insights/core"
	"github.com/trezcool/masomo-insights/core/table"
)

type memRepo struct {
	sync.Mutex
	snapshots map[string][]Record
	loadErr   error
	saveErr   error
	saves     int
}

func newMemRepo() *memRepo {
	return &memRepo{snapshots: make(map[string][]Record)}
}

func (repo *memRepo) LoadLedger(_ context.Context, key string) ([]Record, error) {
	repo.Lock()
	defer repo.Unlock()
	if repo.loadErr != nil {
		return nil, repo.loadErr
	}
	records, ok := repo.snapshots[key]
	if !ok {
		return nil, nil
	}
	return append([]Record{}, records...), nil
}

func (repo *memRepo) SaveLedger(_ context.Context, key string, records []Record) error {
	repo.Lock()
	defer repo.Unlock()
	if repo.saveErr != nil {
		return repo.saveErr
	}
	repo.saves++
	repo.snapshots[key] = append([]Record{}, records...)
	return nil
}

func newTestService(repo Repository) *Service {
	conf := &core.Config{Ledger: core.LedgerConfig{RiskThreshold: 55}}
	return NewService(repo, core.NewValidator(), conf)
}

func ledgerTable(rows ...[]string) table.Table {
	return table.New([]string{"Full Name", "Module Name", "Type", "Number", "Score"}, rows)
}

func TestService_Import(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	// end-to-end: two quizzes for S1
	got, err := svc.Import(ctx, "S1", ledgerTable(
		[]string{"Jane Doe", "Math", "Quiz", "1", "80"},
		[]string{"Jane Doe", "Math", "Quiz", "2", "60"},
	))
	require.NoError(t, err)
	assert.Equal(t, []float64{80, 70}, avgs(got))
	assert.Equal(t, []Feedback{NotAtRisk, NotAtRisk}, feedbacks(got))

	stored, err := svc.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
	for _, r := range stored {
		assert.Equal(t, "S1", r.StudentNumber)
	}

	// re-uploading the same rows changes nothing
	again, err := svc.Import(ctx, " S1 ", ledgerTable(
		[]string{"Jane Doe", "Math", "Quiz", "1", "80"},
		[]string{"Jane Doe", "Math", "Quiz", "2", "60"},
	))
	require.NoError(t, err)
	assert.Equal(t, stored, again)

	// late insertion
	got, err = svc.Import(ctx, "S1", ledgerTable([]string{"Jane Doe", "Math", "Quiz", "0", "40"}))
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 60, 60}, avgs(got))
	assert.Equal(t, []Feedback{AtRisk, NotAtRisk, NotAtRisk}, feedbacks(got))
}

func TestService_Import_invalid(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		student    string
		tbl        table.Table
		wantKind   string
		wantFields []string
	}{
		{
			name:       "no student number",
			student:    "  ",
			tbl:        ledgerTable([]string{"Jane Doe", "Math", "Quiz", "1", "80"}),
			wantKind:   core.KindValidation,
			wantFields: []string{"student_number"},
		},
		{
			name:     "missing column",
			student:  "S1",
			tbl:      table.New([]string{"Full Name", "Module Name", "Type", "Number"}, [][]string{{"Jane", "Math", "Quiz", "1"}}),
			wantKind: core.KindSchema,
		},
		{
			name:     "header only",
			student:  "S9",
			tbl:      ledgerTable(),
			wantKind: core.KindValidation,
		},
		{
			name:    "number out of range",
			student: "S1",
			tbl: ledgerTable(
				[]string{"Jane Doe", "Math", "Quiz", "1", "90"},
				[]string{"Jane Doe", "Math", "Quiz", "1e20", "50"},
			),
			wantKind:   core.KindValidation,
			wantFields: []string{"row 3: Number"},
		},
		{
			name:    "bad rows",
			student: "S1",
			tbl: ledgerTable(
				[]string{"Jane Doe", "Math", "Quiz", "1", "80"},
				[]string{"Jane Doe", "", "Quiz", "1.5", "high"},
			),
			wantKind:   core.KindValidation,
			wantFields: []string{"row 3: Module Name", "row 3: Number", "row 3: Score"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			svc := newTestService(repo)

			_, err := svc.Import(ctx, tt.student, tt.tbl)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, core.ErrorKind(err))
			assert.Zero(t, repo.saves)
			assert.Empty(t, repo.snapshots)

			if tt.wantFields != nil {
				var vErr *core.ValidationError
				require.ErrorAs(t, err, &vErr)
				var flds []string
				for _, f := range vErr.Fields {
					flds = append(flds, f.Field)
				}
				assert.ElementsMatch(t, tt.wantFields, flds)
			}
		})
	}
}

func TestService_Merge_storageErrors(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	prior, err := svc.Merge(ctx, "S1", []Record{rec("Math", "Test", 1, 70)})
	require.NoError(t, err)

	t.Run("failed save keeps prior snapshot", func(t *testing.T) {
		repo.saveErr = errors.New("disk full")
		defer func() { repo.saveErr = nil }()

		_, err := svc.Merge(ctx, "S1", []Record{rec("Math", "Test", 2, 10)})
		var sErr *core.StorageError
		require.ErrorAs(t, err, &sErr)
		assert.Equal(t, "save", sErr.Op)
		assert.Equal(t, "S1", sErr.Key)

		stored, err := svc.Get(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, prior, stored)
	})

	t.Run("unreadable snapshot", func(t *testing.T) {
		repo.loadErr = errors.New("unexpected end of JSON input")
		defer func() { repo.loadErr = nil }()

		_, err := svc.Merge(ctx, "S1", []Record{rec("Math", "Test", 2, 10)})
		assert.Equal(t, core.KindStorage, core.ErrorKind(err))
		_, err = svc.Get(ctx, "S1")
		assert.Equal(t, core.KindStorage, core.ErrorKind(err))
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Merge(cctx, "S1", []Record{rec("Math", "Test", 2, 10)})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, repo.saves)
	})
}

func TestService_Get_empty(t *testing.T) {
	svc := newTestService(newMemRepo())
	got, err := svc.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_Merge_concurrent(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	const n = 50
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Merge(ctx, "S1", []Record{rec("Math", "Quiz", i, float64(i))})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := svc.Get(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, stored, n)
	for i, r := range stored {
		assert.Equal(t, i+1, r.Number, fmt.Sprintf("record %d", i))
	}
	assert.Zero(t, svc.locks.len())
}

func TestService_sharedSnapshotKey(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)
	require.Equal(t, SnapshotKey("S/1"), SnapshotKey("S_1"))

	_, err := svc.Merge(ctx, "S/1", []Record{rec("Math", "Test", 1, 40)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "S_1")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Merge(ctx, "S_1", []Record{rec("Math", "Test", 1, 90)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "S_1", got[0].StudentNumber)
	assert.Equal(t, 90.0, got[0].AVG)

	got, err = svc.Get(ctx, "S/1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "S/1", got[0].StudentNumber)
	assert.Equal(t, 40.0, got[0].AVG)
	assert.Equal(t, AtRisk, got[0].Feedback)
}
