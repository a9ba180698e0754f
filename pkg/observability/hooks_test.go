package observability

import "testing"

type recordingLayoutHooks struct {
	NoopLayoutHooks
	starts  []string
	cancels []string
	seeds   int
}

func (r *recordingLayoutHooks) OnRunStart(runID string, elements int, animate bool) {
	r.starts = append(r.starts, runID)
}
func (r *recordingLayoutHooks) OnRunCancel(runID string) { r.cancels = append(r.cancels, runID) }
func (r *recordingLayoutHooks) OnSeed(count int, grouped bool) { r.seeds += count }

type recordingGraphHooks struct {
	NoopGraphHooks
	created []string
	removed []string
}

func (r *recordingGraphHooks) OnGroupCreated(groupID string, members int) {
	r.created = append(r.created, groupID)
}
func (r *recordingGraphHooks) OnGroupRemoved(groupID string) { r.removed = append(r.removed, groupID) }

type recordingStoreHooks struct {
	NoopStoreHooks
	hits, misses int
}

func (r *recordingStoreHooks) OnHit(string)  { r.hits++ }
func (r *recordingStoreHooks) OnMiss(string) { r.misses++ }

func TestDefaultHooksAreNoop(t *testing.T) {
	Reset()

	// Must not panic.
	Layout().OnRunStart("run-1", 3, true)
	Layout().OnRunStop("run-1")
	Layout().OnRunCancel("run-1")
	Layout().OnSeed(5, false)
	Graph().OnGroupCreated("group#1", 2)
	Graph().OnGroupRemoved("group#1")
	Graph().OnAggregate("group#1", "outgoing", 4)
	Store().OnHit("snapshot")
	Store().OnMiss("snapshot")
	Store().OnSet("snapshot", 128)
}

func TestSetLayoutHooks(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)

	Layout().OnRunStart("run-1", 3, true)
	Layout().OnRunCancel("run-1")
	Layout().OnSeed(7, false)

	if len(rec.starts) != 1 || rec.starts[0] != "run-1" {
		t.Errorf("starts = %v, want [run-1]", rec.starts)
	}
	if len(rec.cancels) != 1 {
		t.Errorf("cancels = %v, want one entry", rec.cancels)
	}
	if rec.seeds != 7 {
		t.Errorf("seeds = %d, want 7", rec.seeds)
	}
}

func TestSetGraphHooks(t *testing.T) {
	defer Reset()

	rec := &recordingGraphHooks{}
	SetGraphHooks(rec)

	Graph().OnGroupCreated("group#1", 2)
	Graph().OnGroupRemoved("group#1")

	if len(rec.created) != 1 || rec.created[0] != "group#1" {
		t.Errorf("created = %v, want [group#1]", rec.created)
	}
	if len(rec.removed) != 1 {
		t.Errorf("removed = %v, want one entry", rec.removed)
	}
}

func TestSetStoreHooks(t *testing.T) {
	defer Reset()

	rec := &recordingStoreHooks{}
	SetStoreHooks(rec)

	Store().OnHit("snapshot")
	Store().OnHit("snapshot")
	Store().OnMiss("options")

	if rec.hits != 2 || rec.misses != 1 {
		t.Errorf("hits = %d, misses = %d, want 2 and 1", rec.hits, rec.misses)
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	SetLayoutHooks(nil)

	Layout().OnRunStart("run-1", 1, false)
	if len(rec.starts) != 1 {
		t.Error("nil registration must not replace the current hooks")
	}
}

func TestResetRestoresNoops(t *testing.T) {
	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	Reset()

	Layout().OnRunStart("run-1", 1, false)
	if len(rec.starts) != 0 {
		t.Error("reset must detach the previously registered hooks")
	}
}
