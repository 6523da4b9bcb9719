package slot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/db"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu    sync.Mutex
	slots map[string]*Slot
	seq   int
	// bookedSlots marks slot IDs that carry booking history.
	bookedSlots map[string]bool
	// confirmedToday marks faculty IDs with a confirmed booking today.
	confirmedToday map[string]int
	// lastFacultyFilter records the filter of the latest ListByFaculty call.
	lastFacultyFilter FacultyFilter
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		slots:          make(map[string]*Slot),
		bookedSlots:    make(map[string]bool),
		confirmedToday: make(map[string]int),
	}
}

func (r *fakeRepo) Create(ctx context.Context, s *Slot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("slot-%d", r.seq)
	copied := *s
	r.slots[s.ID] = &copied
	return nil
}

func (r *fakeRepo) CreateBatch(ctx context.Context, slots []*Slot) error {
	for _, s := range slots {
		if err := r.Create(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*Slot, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) ListByFaculty(ctx context.Context, facultyID string, f FacultyFilter) ([]*Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFacultyFilter = f
	var out []*Slot
	for _, s := range r.slots {
		if s.FacultyID != facultyID {
			continue
		}
		if f.Date != nil && !sameDay(s.StartTime, *f.Date) {
			continue
		}
		if f.FutureOnly && !s.StartTime.After(f.Now) {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) FacultySubjects(ctx context.Context, facultyID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, s := range r.slots {
		if s.FacultyID == facultyID && !seen[s.Subject] {
			seen[s.Subject] = true
			out = append(out, s.Subject)
		}
	}
	return out, nil
}

func (r *fakeRepo) HasOverlap(ctx context.Context, facultyID string, start, end time.Time, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.FacultyID != facultyID || s.ID == excludeID {
			continue
		}
		if start.Before(s.EndTime) && s.StartTime.Before(end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return ErrNotFound
	}
	s.IsAvailable = available
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[id]; !ok {
		return ErrNotFound
	}
	delete(r.slots, id)
	return nil
}

func (r *fakeRepo) HasBookingHistory(ctx context.Context, slotID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookedSlots[slotID], nil
}

func (r *fakeRepo) CountConfirmedInRange(ctx context.Context, facultyID string, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmedToday[facultyID], nil
}

func (r *fakeRepo) DeleteOpenInRange(ctx context.Context, facultyID string, from, to time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, s := range r.slots {
		if s.FacultyID != facultyID || r.bookedSlots[id] {
			continue
		}
		if !s.StartTime.Before(from) && s.StartTime.Before(to) {
			delete(r.slots, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeRepo) ListBookable(ctx context.Context, f BookableFilter) ([]*Slot, error) {
	return nil, nil
}

func (r *fakeRepo) SubjectsWithBookable(ctx context.Context, now time.Time) ([]string, error) {
	return nil, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func newTestService(t *testing.T) (*service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	subjects := subject.NewSet([]string{"Web Development", "Compiler Design"})
	svc := NewService(repo, subjects, zap.NewNop()).(*service)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func TestCreateSlot(t *testing.T) {
	ctx := context.Background()

	valid := CreateRequest{
		FacultyID: "faculty-1",
		Subject:   "Web Development",
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(24*time.Hour + 15*time.Minute),
	}

	t.Run("creates a slot with defaults", func(t *testing.T) {
		svc, _ := newTestService(t)

		sl, err := svc.Create(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "Web Development", sl.Subject)
		assert.Equal(t, DefaultCapacity, sl.Capacity)
		assert.True(t, sl.IsAvailable)
	})

	t.Run("normalizes subject aliases", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := valid
		req.Subject = "fswd"
		sl, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Web Development", sl.Subject)
	})

	t.Run("rejects inverted time range", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := valid
		req.EndTime = req.StartTime.Add(-time.Minute)
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("rejects past start", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := valid
		req.StartTime = testNow.Add(-time.Hour)
		req.EndTime = testNow.Add(-45 * time.Minute)
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrStartTimePast)
	})

	t.Run("rejects unknown subject", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := valid
		req.Subject = "Astrology"
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidSubject)
	})

	t.Run("requires a subject for the first slot", func(t *testing.T) {
		svc, _ := newTestService(t)

		req := valid
		req.Subject = ""
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSubjectRequired)
	})

	t.Run("inherits the faculty's fixed subject", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, valid)
		require.NoError(t, err)

		req := valid
		req.Subject = ""
		req.StartTime = valid.EndTime.Add(time.Hour)
		req.EndTime = req.StartTime.Add(15 * time.Minute)
		sl, err := svc.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Web Development", sl.Subject)
	})

	t.Run("rejects changing the fixed subject", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, valid)
		require.NoError(t, err)

		req := valid
		req.Subject = "Compiler Design"
		req.StartTime = valid.EndTime.Add(time.Hour)
		req.EndTime = req.StartTime.Add(15 * time.Minute)
		_, err = svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrSubjectFixed)
	})

	t.Run("rejects overlapping slots", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, valid)
		require.NoError(t, err)

		req := valid
		req.StartTime = valid.StartTime.Add(5 * time.Minute)
		req.EndTime = req.StartTime.Add(15 * time.Minute)
		_, err = svc.Create(ctx, req)
		assert.ErrorIs(t, err, ErrOverlap)
	})
}

func TestGenerateWindows(t *testing.T) {
	start := testNow
	tests := []struct {
		name     string
		span     time.Duration
		slotMin  int
		breakMin int
		want     int
	}{
		{"hour of 15 with no breaks", time.Hour, 15, 0, 4},
		{"hour of 15 with 5 minute breaks", time.Hour, 15, 5, 3},
		{"hour of 10 with 10 minute breaks", time.Hour, 10, 10, 3},
		{"span shorter than one slot", 4 * time.Minute, 5, 0, 0},
		{"exact single slot", 15 * time.Minute, 15, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := GenerateWindows(start, start.Add(tt.span), tt.slotMin, tt.breakMin)
			require.Len(t, windows, tt.want)

			for i, w := range windows {
				assert.Equal(t, time.Duration(tt.slotMin)*time.Minute, w.End.Sub(w.Start))
				if i > 0 {
					gap := w.Start.Sub(windows[i-1].End)
					assert.Equal(t, time.Duration(tt.breakMin)*time.Minute, gap)
				}
			}
		})
	}
}

func TestBulkCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates back to back slots", func(t *testing.T) {
		svc, _ := newTestService(t)

		slots, err := svc.BulkCreate(ctx, BulkCreateRequest{
			FacultyID:    "faculty-1",
			Subject:      "Compiler Design",
			StartTime:    testNow.Add(24 * time.Hour),
			EndTime:      testNow.Add(25 * time.Hour),
			SlotDuration: 15,
		})
		require.NoError(t, err)
		require.Len(t, slots, 4)

		for _, sl := range slots {
			assert.Equal(t, "Compiler Design", sl.Subject)
			assert.NotEmpty(t, sl.ID)
		}
	})

	t.Run("skips windows that overlap existing slots", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Create(ctx, CreateRequest{
			FacultyID: "faculty-1",
			Subject:   "Web Development",
			StartTime: testNow.Add(24 * time.Hour),
			EndTime:   testNow.Add(24*time.Hour + 15*time.Minute),
		})
		require.NoError(t, err)

		slots, err := svc.BulkCreate(ctx, BulkCreateRequest{
			FacultyID:    "faculty-1",
			StartTime:    testNow.Add(24 * time.Hour),
			EndTime:      testNow.Add(25 * time.Hour),
			SlotDuration: 15,
		})
		require.NoError(t, err)
		assert.Len(t, slots, 3)
	})

	t.Run("rejects unsupported durations", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.BulkCreate(ctx, BulkCreateRequest{
			FacultyID:    "faculty-1",
			Subject:      "Web Development",
			StartTime:    testNow.Add(24 * time.Hour),
			EndTime:      testNow.Add(25 * time.Hour),
			SlotDuration: 20,
		})
		assert.ErrorIs(t, err, ErrNoSlotsGenerated)
	})

	t.Run("rejects a span too short for any slot", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.BulkCreate(ctx, BulkCreateRequest{
			FacultyID:    "faculty-1",
			Subject:      "Web Development",
			StartTime:    testNow.Add(24 * time.Hour),
			EndTime:      testNow.Add(24*time.Hour + 4*time.Minute),
			SlotDuration: 5,
		})
		assert.ErrorIs(t, err, ErrNoSlotsGenerated)
	})
}

func TestSetAvailability(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*service, *Slot) {
		svc, _ := newTestService(t)
		sl, err := svc.Create(ctx, CreateRequest{
			FacultyID: "faculty-1",
			Subject:   "Web Development",
			StartTime: testNow.Add(24 * time.Hour),
			EndTime:   testNow.Add(24*time.Hour + 15*time.Minute),
		})
		require.NoError(t, err)
		return svc, sl
	}

	t.Run("hides and restores an owned slot", func(t *testing.T) {
		svc, sl := seed(t)

		updated, err := svc.SetAvailability(ctx, "faculty-1", sl.ID, false)
		require.NoError(t, err)
		assert.False(t, updated.IsAvailable)

		updated, err = svc.SetAvailability(ctx, "faculty-1", sl.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsAvailable)
	})

	t.Run("rejects another faculty", func(t *testing.T) {
		svc, sl := seed(t)

		_, err := svc.SetAvailability(ctx, "faculty-2", sl.ID, false)
		assert.ErrorIs(t, err, ErrPermissionDenied)

		got, err := svc.GetByID(ctx, sl.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAvailable)
	})

	t.Run("rejects an unknown slot", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.SetAvailability(ctx, "faculty-1", "slot-404", false)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListByFaculty(t *testing.T) {
	ctx := context.Background()

	t.Run("future only uses the service clock", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.slots["slot-past"] = &Slot{
			ID:        "slot-past",
			FacultyID: "faculty-1",
			Subject:   "Web Development",
			StartTime: testNow.Add(-time.Hour),
			EndTime:   testNow.Add(-45 * time.Minute),
		}
		repo.slots["slot-future"] = &Slot{
			ID:        "slot-future",
			FacultyID: "faculty-1",
			Subject:   "Web Development",
			StartTime: testNow.Add(time.Hour),
			EndTime:   testNow.Add(time.Hour + 15*time.Minute),
		}

		got, err := svc.ListByFaculty(ctx, "faculty-1", FacultyFilter{FutureOnly: true})
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, "slot-future", got[0].ID)
		assert.Equal(t, testNow, repo.lastFacultyFilter.Now)
	})

	t.Run("plain listing leaves the clock unset", func(t *testing.T) {
		svc, repo := newTestService(t)

		_, err := svc.ListByFaculty(ctx, "faculty-1", FacultyFilter{})
		require.NoError(t, err)
		assert.True(t, repo.lastFacultyFilter.Now.IsZero())
	})
}

func TestDeleteSlot(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*service, *fakeRepo, *Slot) {
		svc, repo := newTestService(t)
		sl, err := svc.Create(ctx, CreateRequest{
			FacultyID: "faculty-1",
			Subject:   "Web Development",
			StartTime: testNow.Add(24 * time.Hour),
			EndTime:   testNow.Add(24*time.Hour + 15*time.Minute),
		})
		require.NoError(t, err)
		return svc, repo, sl
	}

	t.Run("deletes an open slot", func(t *testing.T) {
		svc, _, sl := seed(t)
		require.NoError(t, svc.Delete(ctx, "faculty-1", sl.ID))

		_, err := svc.GetByID(ctx, sl.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects another faculty", func(t *testing.T) {
		svc, _, sl := seed(t)
		err := svc.Delete(ctx, "faculty-2", sl.ID)
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("protects booking history", func(t *testing.T) {
		svc, repo, sl := seed(t)
		repo.bookedSlots[sl.ID] = true

		err := svc.Delete(ctx, "faculty-1", sl.ID)
		assert.ErrorIs(t, err, ErrHasHistory)
	})
}

func TestDeleteToday(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes today's open slots", func(t *testing.T) {
		svc, repo := newTestService(t)

		// Two slots later today, one tomorrow.
		today := &Slot{FacultyID: "faculty-1", Subject: "Web Development",
			StartTime: testNow.Add(2 * time.Hour), EndTime: testNow.Add(2*time.Hour + 15*time.Minute)}
		today2 := &Slot{FacultyID: "faculty-1", Subject: "Web Development",
			StartTime: testNow.Add(3 * time.Hour), EndTime: testNow.Add(3*time.Hour + 15*time.Minute)}
		tomorrow := &Slot{FacultyID: "faculty-1", Subject: "Web Development",
			StartTime: testNow.Add(26 * time.Hour), EndTime: testNow.Add(26*time.Hour + 15*time.Minute)}
		require.NoError(t, repo.Create(ctx, today))
		require.NoError(t, repo.Create(ctx, today2))
		require.NoError(t, repo.Create(ctx, tomorrow))

		res, err := svc.DeleteToday(ctx, "faculty-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Deleted)
		assert.Equal(t, int64(0), res.Skipped)

		_, err = svc.GetByID(ctx, tomorrow.ID)
		require.NoError(t, err)
	})

	t.Run("refuses while confirmed bookings exist", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.confirmedToday["faculty-1"] = 1

		_, err := svc.DeleteToday(ctx, "faculty-1")
		assert.ErrorIs(t, err, ErrConfirmedToday)
	})
}
