package handlers

import (
	"context"
	"encoding/json"
	"testing"
)

func TestJobManager_SingleActiveJob(t *testing.T) {
	m := NewJobManager()

	first := m.CreateJob("a")
	if first == nil {
		t.Fatal("expected first job to be created")
	}
	if m.CreateJob("b") != nil {
		t.Error("expected second job to be refused while the first is pending")
	}

	first.update(func(info *ScanJobInfo) { info.Status = JobStatusFailed })
	second := m.CreateJob("b")
	if second == nil {
		t.Fatal("expected a new job once the first finished")
	}
	if m.ActiveJob() != second {
		t.Error("expected the new job to be active")
	}
	if len(m.ListJobs()) != 1 || m.GetJob("a") != nil {
		t.Errorf("expected the finished job to be dropped, got %d jobs", len(m.ListJobs()))
	}

	m.DeleteJob("b")
	if m.ActiveJob() != nil || m.GetJob("b") != nil {
		t.Error("expected deleted job to be gone")
	}
}

func TestJobManager_PrunesFinishedJobs(t *testing.T) {
	m := NewJobManager()

	for i, status := range []JobStatus{JobStatusCompleted, JobStatusCancelled, JobStatusFailed} {
		job := m.CreateJob(string(rune('a' + i)))
		if job == nil {
			t.Fatalf("expected job %d to be created", i)
		}
		job.update(func(info *ScanJobInfo) { info.Status = status })
	}
	if len(m.ListJobs()) != 1 {
		t.Fatalf("expected only the last finished job to be kept, got %d", len(m.ListJobs()))
	}
	if job := m.GetJob("c"); job == nil || job.GetStatus() != JobStatusFailed {
		t.Error("expected the last job to stay readable until the next scan")
	}

	latest := m.CreateJob("d")
	if latest == nil {
		t.Fatal("expected a new job")
	}
	jobs := m.ListJobs()
	if len(jobs) != 1 || jobs[0] != latest {
		t.Errorf("expected only the new job, got %d jobs", len(jobs))
	}
}

func TestJobManager_CancelAll(t *testing.T) {
	m := NewJobManager()
	job := m.CreateJob("a")
	ctx, cancel := context.WithCancel(context.Background())
	job.setCancel(cancel)

	m.CancelAll()

	if ctx.Err() == nil {
		t.Error("expected running job to be cancelled")
	}
}

func TestEventBroadcaster(t *testing.T) {
	var b EventBroadcaster
	ch := b.AddListener()

	b.SendEvent(JobEvent{Type: "progress"})
	if got := <-ch; got.Type != "progress" {
		t.Errorf("expected 'progress' event, got '%s'", got.Type)
	}

	b.RemoveListener(ch)
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after removal")
	}
	// sending without listeners must not block
	b.SendEvent(JobEvent{Type: "completed"})
	// cancel without a context is a no-op
	b.Cancel()
}

func TestScanJob_MarshalJSON(t *testing.T) {
	job := NewJobManager().CreateJob("job-1")
	job.update(func(info *ScanJobInfo) {
		info.Status = JobStatusRunning
		info.Scanned = 10
	})

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var info ScanJobInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if info.ID != "job-1" || info.Status != JobStatusRunning || info.Scanned != 10 {
		t.Errorf("unexpected job JSON %s", data)
	}
}
