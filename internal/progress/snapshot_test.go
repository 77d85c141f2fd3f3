package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leadmate/leadmate/internal/platform"
)

type fakeReaders struct {
	tasks       []platform.TaskRow
	pdis        []platform.PDIRow
	assessments []platform.AssessmentRow

	taskLimit       int
	pdiLimit        int
	assessmentLimit int
}

func (f *fakeReaders) TasksByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]platform.TaskRow, error) {
	f.taskLimit = limit
	return f.tasks, nil
}

func (f *fakeReaders) PlansByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]platform.PDIRow, error) {
	f.pdiLimit = limit
	return f.pdis, nil
}

func (f *fakeReaders) AssessmentsByUsers(ctx context.Context, workspaceID string, userIDs []string, limit int) ([]platform.AssessmentRow, error) {
	f.assessmentLimit = limit
	return f.assessments, nil
}

func newTestBuilder(f *fakeReaders, now time.Time) *Builder {
	b := NewBuilder(platform.Readers{Tasks: f, PDIs: f, Assessments: f})
	b.now = func() time.Time { return now }
	return b
}

var testTeam = []platform.User{
	{ID: "u1", Name: "Maria Silva", JobTitle: "Analista"},
	{ID: "u2", Name: "João Souza"},
	{ID: "u3", Name: "Ana Lima"},
}

func TestTeamSnapshotCounts(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	f := &fakeReaders{
		tasks: []platform.TaskRow{
			{ID: "t1", UserID: "u1", Status: "todo"},
			{ID: "t2", UserID: "u1", Status: "todo", DueDate: &past},
			{ID: "t3", UserID: "u3", Status: "todo", DueDate: &future},
			{ID: "t4", UserID: "u1", Status: "in_progress", DueDate: &past},
			{ID: "t5", UserID: "u2", Status: "done", DueDate: &past},
		},
		pdis: []platform.PDIRow{
			{ID: "p1", UserID: "u1", Status: "active"},
			{ID: "p2", UserID: "u2", Status: "completed"},
			{ID: "p3", UserID: "u2", Status: "draft"},
		},
		assessments: []platform.AssessmentRow{
			{ID: "a1", UserID: "u3", Status: "completed"},
			{ID: "a2", UserID: "u3", Status: "draft"},
		},
	}

	snap, err := newTestBuilder(f, now).TeamSnapshot(context.Background(), "ws1", testTeam)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.Users != 3 {
		t.Fatalf("users = %d", snap.Users)
	}
	if snap.Tasks.Total != 5 || snap.Tasks.Todo != 3 || snap.Tasks.InProgress != 1 || snap.Tasks.Done != 1 {
		t.Fatalf("task totals mismatch: %+v", snap.Tasks)
	}
	// A done task past its due date is not overdue.
	if snap.Tasks.Overdue != 2 {
		t.Fatalf("overdue = %d", snap.Tasks.Overdue)
	}
	if snap.PDIs.Active != 1 || snap.PDIs.Completed != 1 || snap.PDIs.Draft != 1 {
		t.Fatalf("pdi totals mismatch: %+v", snap.PDIs)
	}
	if snap.Assessments.Completed != 1 || snap.Assessments.Draft != 1 {
		t.Fatalf("assessment totals mismatch: %+v", snap.Assessments)
	}

	if len(snap.Members) != 3 {
		t.Fatalf("members = %d", len(snap.Members))
	}
	maria := snap.Members[0]
	if maria.UserID != "u1" || maria.Tasks.Total != 3 || maria.Tasks.Overdue != 2 {
		t.Fatalf("member counts mismatch: %+v", maria)
	}
}

func TestTeamSnapshotIgnoresRowsOutsideScope(t *testing.T) {
	now := time.Now()
	f := &fakeReaders{
		tasks: []platform.TaskRow{{ID: "t1", UserID: "intruder", Status: "todo"}},
	}
	snap, err := newTestBuilder(f, now).TeamSnapshot(context.Background(), "ws1", testTeam)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Tasks.Total != 0 {
		t.Fatalf("rows for unknown users must be dropped, got %+v", snap.Tasks)
	}
}

func TestSummaryIsDeterministic(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	f := &fakeReaders{
		tasks: []platform.TaskRow{
			{ID: "t1", UserID: "u1", Status: "todo", DueDate: &past},
			{ID: "t2", UserID: "u2", Status: "done"},
		},
		pdis: []platform.PDIRow{{ID: "p1", UserID: "u1", Status: "active"}},
	}

	b := newTestBuilder(f, now)
	snap, err := b.TeamSnapshot(context.Background(), "ws1", testTeam)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	got := snap.Summary()
	for _, want := range []string{
		"Resumo do time (3 pessoas):",
		"- Tarefas: 2 no total (1 a fazer, 0 em andamento, 1 concluídas, 1 atrasadas)",
		"- Maria Silva: 1 tarefa (1 atrasada), 1 PDI ativo",
		"- João Souza: 1 tarefa",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}

	again, _ := b.TeamSnapshot(context.Background(), "ws1", testTeam)
	if again.Summary() != got {
		t.Fatal("summary must be deterministic for equal inputs")
	}
}

func TestMemberStatusLookback(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	f := &fakeReaders{
		tasks: []platform.TaskRow{
			{ID: "t1", UserID: "u1", Title: "Ligar para o cliente", Status: "in_progress", DueDate: &past},
		},
		pdis:        []platform.PDIRow{{ID: "p1", UserID: "u1", Status: "active"}},
		assessments: []platform.AssessmentRow{{ID: "a1", UserID: "u1", Status: "draft"}},
	}

	st, err := newTestBuilder(f, now).MemberStatus(context.Background(), "ws1", testTeam[0])
	if err != nil {
		t.Fatalf("member status: %v", err)
	}

	if f.taskLimit != 20 || f.pdiLimit != 10 || f.assessmentLimit != 10 {
		t.Fatalf("lookback limits = %d/%d/%d", f.taskLimit, f.pdiLimit, f.assessmentLimit)
	}
	if st.Progress.Tasks.InProgress != 1 || st.Progress.Tasks.Overdue != 1 {
		t.Fatalf("progress mismatch: %+v", st.Progress.Tasks)
	}

	summary := st.Summary()
	for _, want := range []string{"Status de Maria Silva (Analista):", "Ligar para o cliente", "prazo 2026-08-01"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}
