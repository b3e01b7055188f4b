// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package staff

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadrio/kadrio/internal/identity/sequence"
	"github.com/kadrio/kadrio/internal/platform/apperr"
	"github.com/kadrio/kadrio/pkg/pagination"
	"github.com/kadrio/kadrio/pkg/pointer"
)

// fakeRepository is an in-memory Repository with transactional semantics:
// nothing is committed when compose fails.
type fakeRepository struct {
	mu          sync.Mutex
	staff       map[string]*Staff
	assignments map[string]*Assignment
	unitFor     func(*Assignment) UnitContext
}

func newFakeRepository(unitFor func(*Assignment) UnitContext) *fakeRepository {
	return &fakeRepository{
		staff:       make(map[string]*Staff),
		assignments: make(map[string]*Assignment),
		unitFor:     unitFor,
	}
}

func (f *fakeRepository) Create(_ context.Context, member *Staff, assignment *Assignment, compose ComposeFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, err := compose(f.unitFor(assignment), assignment)
	if err != nil {
		return err
	}

	member.CompositeCode = code
	f.staff[member.ID] = member
	copied := *assignment
	f.assignments[assignment.ID] = &copied
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	member, ok := f.staff[id]
	if !ok || member.IsDeleted {
		return nil, apperr.NotFound("Staff member")
	}
	copied := *member
	return &copied, nil
}

func (f *fakeRepository) FindByCompositeCode(_ context.Context, code string) (*Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, member := range f.staff {
		if member.CompositeCode == code && !member.IsDeleted {
			copied := *member
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Staff member")
}

func (f *fakeRepository) List(_ context.Context, _ pagination.Params, _ string) ([]*Staff, int, error) {
	return nil, 0, nil
}

func (f *fakeRepository) SavePrimaryAssignment(_ context.Context, assignment *Assignment, compose ComposeFunc) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	member, ok := f.staff[assignment.StaffID]
	if !ok {
		return "", "", apperr.NotFound("Staff member")
	}

	// Compose first so a configuration error leaves state untouched,
	// mirroring the transaction rollback in the Postgres repository.
	assignment.IsPrimary = true
	newCode, err := compose(f.unitFor(assignment), assignment)
	if err != nil {
		return "", "", err
	}

	for _, other := range f.assignments {
		if other.StaffID == assignment.StaffID && other.ID != assignment.ID {
			other.IsPrimary = false
		}
	}
	copied := *assignment
	f.assignments[assignment.ID] = &copied

	oldCode := member.CompositeCode
	if newCode != oldCode {
		member.CompositeCode = newCode
	}
	return oldCode, newCode, nil
}

func (f *fakeRepository) ListAssignments(_ context.Context, staffID string) ([]*Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*Assignment
	for _, a := range f.assignments {
		if a.StaffID == staffID && !a.IsDeleted {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeRepository) SoftDelete(_ context.Context, id string, _ RequestContext) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	member, ok := f.staff[id]
	if !ok || member.IsDeleted {
		return apperr.NotFound("Staff member")
	}
	member.IsDeleted = true
	member.IsActive = false
	return nil
}

// fakeNotifier records delivered events and signals each delivery.
type fakeNotifier struct {
	mu     sync.Mutex
	events []CodeChangedEvent
	seen   chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{seen: make(chan struct{}, 16)}
}

func (f *fakeNotifier) NotifyCodeChanged(_ context.Context, event CodeChangedEvent) error {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
	f.seen <- struct{}{}
	return nil
}

func (f *fakeNotifier) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for code change notification")
	}
}

func (f *fakeNotifier) snapshot() []CodeChangedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CodeChangedEvent(nil), f.events...)
}

// fakeSequenceStore backs the allocator with an in-memory counter.
type fakeSequenceStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func (f *fakeSequenceStore) Increment(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[name]; !ok {
		return 0, sequence.ErrNoCounter
	}
	f.counters[name]++
	return f.counters[name], nil
}

func (f *fakeSequenceStore) InitAndIncrement(_ context.Context, name string, seed int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.counters[name]; !ok {
		f.counters[name] = seed
	}
	f.counters[name]++
	return f.counters[name], nil
}

func (f *fakeSequenceStore) LastIssued(_ context.Context, _ string, _ string) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T, unitFor func(*Assignment) UnitContext) (*Service, *fakeRepository, *fakeNotifier) {
	t.Helper()
	repo := newFakeRepository(unitFor)
	notifier := newFakeNotifier()
	allocator := sequence.NewAllocator(&fakeSequenceStore{counters: make(map[string]int64)})
	service := NewService(repo, allocator, "ORG", notifier, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	return service, repo, notifier
}

func branchUnit(code string) func(*Assignment) UnitContext {
	return func(a *Assignment) UnitContext {
		unit := UnitContext{DesignationCode: "T"}
		if a.BranchID != nil {
			unit.BranchCode = pointer.To(code)
		}
		return unit
	}
}

const departmentID = "01920000-0000-7000-8000-000000000d01"
const designationID = "01920000-0000-7000-8000-000000000e01"

func validCreateInput() CreateStaffInput {
	return CreateStaffInput{
		FullName:      "Amina Rahman",
		Email:         "amina@kadrio.io",
		JoiningDate:   "2025-03-01",
		DepartmentID:  departmentID,
		DesignationID: designationID,
		BranchID:      pointer.To("01920000-0000-7000-8000-000000000b01"),
		Shift:         ShiftGeneral,
	}
}

func TestCreateStaffAllocatesCodes(t *testing.T) {
	service, _, _ := newTestService(t, branchUnit("C01"))

	member, err := service.CreateStaff(context.Background(), validCreateInput())
	require.NoError(t, err)

	assert.Equal(t, "ORG-0001", member.SequenceCode)
	assert.Equal(t, "C01-G-25-T-0001", member.CompositeCode)
	assert.True(t, member.IsActive)

	second, err := service.CreateStaff(context.Background(), validCreateInput())
	require.NoError(t, err)
	assert.Equal(t, "ORG-0002", second.SequenceCode)
	assert.Equal(t, "C01-G-25-T-0002", second.CompositeCode)
}

func TestCreateStaffValidation(t *testing.T) {
	service, _, _ := newTestService(t, branchUnit("C01"))

	input := validCreateInput()
	input.Email = "not-an-email"
	input.FullName = ""

	_, err := service.CreateStaff(context.Background(), input)
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 2)
}

func TestCreateStaffUnresolvablePrefixFailsSave(t *testing.T) {
	// Scoped department with no branch/institution/organization reference.
	service, repo, _ := newTestService(t, func(*Assignment) UnitContext {
		return UnitContext{DepartmentCode: "SCI", DesignationCode: "T"}
	})

	input := validCreateInput()
	input.BranchID = nil

	_, err := service.CreateStaff(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "CONFIGURATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, repo.staff)
}

func TestSavePrimaryAssignmentRegeneratesCode(t *testing.T) {
	// Unit resolution keyed by branch reference, so a reassignment from
	// C01 to C02 changes the composite prefix.
	branchC01 := "01920000-0000-7000-8000-000000000b01"
	branchC02 := "01920000-0000-7000-8000-000000000b02"
	service, repo, notifier := newTestService(t, func(a *Assignment) UnitContext {
		unit := UnitContext{DesignationCode: "T"}
		switch {
		case a.BranchID != nil && *a.BranchID == branchC01:
			unit.BranchCode = pointer.To("C01")
		case a.BranchID != nil && *a.BranchID == branchC02:
			unit.BranchCode = pointer.To("C02")
		}
		return unit
	})

	input := validCreateInput()
	input.BranchID = &branchC01
	member, err := service.CreateStaff(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, "C01-G-25-T-0001", member.CompositeCode)
	oldCode := member.CompositeCode

	updated, err := service.SavePrimaryAssignment(context.Background(), member.ID, SaveAssignmentInput{
		DepartmentID:  departmentID,
		DesignationID: designationID,
		BranchID:      &branchC02,
		Shift:         ShiftGeneral,
	}, RequestContext{ActorID: "admin", IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "C02-G-25-T-0001", updated.CompositeCode)
	assert.NotEqual(t, oldCode, updated.CompositeCode)

	notifier.wait(t)
	events := notifier.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, oldCode, events[0].OldCode)
	assert.Equal(t, "C02-G-25-T-0001", events[0].NewCode)
	assert.Equal(t, member.ID, events[0].StaffID)

	stored, err := repo.FindByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "C02-G-25-T-0001", stored.CompositeCode)
}

func TestSavePrimaryAssignmentUnchangedEmitsNoEvent(t *testing.T) {
	service, _, notifier := newTestService(t, branchUnit("C01"))

	member, err := service.CreateStaff(context.Background(), validCreateInput())
	require.NoError(t, err)

	// Re-save an identical primary assignment: same unit, same shift, same
	// year. The composed code is unchanged, so no event fires.
	_, err = service.SavePrimaryAssignment(context.Background(), member.ID, SaveAssignmentInput{
		DepartmentID:  departmentID,
		DesignationID: designationID,
		BranchID:      validCreateInput().BranchID,
		Shift:         ShiftGeneral,
	}, RequestContext{})
	require.NoError(t, err)

	select {
	case <-notifier.seen:
		t.Fatal("unexpected code change notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPrimaryAssignmentUniqueness(t *testing.T) {
	service, repo, _ := newTestService(t, branchUnit("C01"))

	member, err := service.CreateStaff(context.Background(), validCreateInput())
	require.NoError(t, err)

	// Save several new primary assignments in sequence; only the last one
	// may remain primary.
	for range 3 {
		_, err := service.SavePrimaryAssignment(context.Background(), member.ID, SaveAssignmentInput{
			DepartmentID:  departmentID,
			DesignationID: designationID,
			BranchID:      validCreateInput().BranchID,
			Shift:         ShiftMorning,
		}, RequestContext{})
		require.NoError(t, err)
	}

	assignments, err := repo.ListAssignments(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 4)

	primaries := 0
	for _, a := range assignments {
		if a.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestDeleteStaff(t *testing.T) {
	service, _, _ := newTestService(t, branchUnit("C01"))

	member, err := service.CreateStaff(context.Background(), validCreateInput())
	require.NoError(t, err)

	err = service.DeleteStaff(context.Background(), member.ID, RequestContext{ActorID: "admin"})
	require.NoError(t, err)

	_, err = service.GetStaff(context.Background(), member.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
