package booking

import (
	"context"
	"testing"
)

func TestServiceRecordsCreateEntry(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	recorder := &recorderSink{}
	service := mustNewService(test, store, WithActivityRecorder(recorder))

	room := mustCreateRoom(test, service, "Suite 1", 20000)

	if len(recorder.entries) != 1 {
		test.Fatalf("expected one entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Action != ActionCreate || entry.RoomID != room.ID || entry.RoomName != room.Name || entry.Price != room.Price {
		test.Fatalf("unexpected create entry: %+v", entry)
	}
	if entry.RecordedUnixUTC != 1700000000 {
		test.Fatalf("expected clock timestamp, got %d", entry.RecordedUnixUTC)
	}
}

func TestServiceRecordsReserveEntry(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	recorder := &recorderSink{}
	service := mustNewService(test, store, WithActivityRecorder(recorder))
	room := mustCreateRoom(test, service, "Suite 1", 20000)
	recorder.entries = nil

	if _, err := service.Reserve(context.Background(), room.ID, mustGuestName(test, "Alice")); err != nil {
		test.Fatalf("reserve: %v", err)
	}

	if len(recorder.entries) != 1 {
		test.Fatalf("expected exactly one reserve entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Action != ActionReserve || entry.RoomID != room.ID || entry.Guest != "Alice" {
		test.Fatalf("unexpected reserve entry: %+v", entry)
	}
}

func TestServiceRecordsConflictEntry(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	recorder := &recorderSink{}
	service := mustNewService(test, store, WithActivityRecorder(recorder))
	room := mustCreateRoom(test, service, "Suite 1", 20000)
	if _, err := service.Reserve(context.Background(), room.ID, mustGuestName(test, "Bob")); err != nil {
		test.Fatalf("first reserve: %v", err)
	}
	recorder.entries = nil

	if _, err := service.Reserve(context.Background(), room.ID, mustGuestName(test, "Carol")); err == nil {
		test.Fatalf("expected conflict error")
	}

	if len(recorder.entries) != 1 {
		test.Fatalf("expected exactly one conflict entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]
	if entry.Action != ActionConflict || entry.CurrentGuest != "Bob" || entry.AttemptedGuest != "Carol" {
		test.Fatalf("unexpected conflict entry: %+v", entry)
	}
}

func TestServiceWithoutRecorderStillOperates(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	room := mustCreateRoom(test, service, "Suite 1", 20000)
	if _, err := service.Reserve(context.Background(), room.ID, mustGuestName(test, "Alice")); err != nil {
		test.Fatalf("reserve without recorder: %v", err)
	}
	if _, err := service.Cancel(context.Background(), room.ID); err != nil {
		test.Fatalf("cancel without recorder: %v", err)
	}
}

// droppingSink mimics a sink whose appends fail downstream: it accepts the
// callback and records nothing.
type droppingSink struct {
	calls int
}

func (sink *droppingSink) RecordActivity(_ context.Context, _ ActivityEntry) {
	sink.calls++
}

func TestRecorderFailureLeavesPrimaryResultUntouched(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	sink := &droppingSink{}
	service := mustNewService(test, store, WithActivityRecorder(sink))

	room := mustCreateRoom(test, service, "Suite 1", 20000)
	reserved, err := service.Reserve(context.Background(), room.ID, mustGuestName(test, "Alice"))
	if err != nil {
		test.Fatalf("reserve: %v", err)
	}
	if reserved.Occupancy.Guest() != "Alice" {
		test.Fatalf("expected reservation to stand, got %+v", reserved.Occupancy)
	}
	if sink.calls != 2 {
		test.Fatalf("expected 2 recorder callbacks, got %d", sink.calls)
	}
}
