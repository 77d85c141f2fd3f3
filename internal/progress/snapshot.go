// Package progress builds read-only aggregation snapshots over the
// tasks, development plans, and assessments of a set of scoped users.
package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leadmate/leadmate/internal/platform"
)

// Lookback bounds for a single member's recent activity.
const (
	memberTaskLookback       = 20
	memberPDILookback        = 10
	memberAssessmentLookback = 10
)

// TaskCounts aggregates task rows by status.
type TaskCounts struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

// PDICounts aggregates development plan rows by status.
type PDICounts struct {
	Draft     int `json:"draft"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Archived  int `json:"archived"`
}

// AssessmentCounts aggregates assessment rows by status.
type AssessmentCounts struct {
	Draft     int `json:"draft"`
	Completed int `json:"completed"`
}

// MemberProgress holds one scoped user's aggregated counts.
type MemberProgress struct {
	UserID      string           `json:"user_id"`
	Name        string           `json:"name"`
	JobTitle    string           `json:"job_title,omitempty"`
	Tasks       TaskCounts       `json:"tasks"`
	PDIs        PDICounts        `json:"pdis"`
	Assessments AssessmentCounts `json:"assessments"`
}

// Snapshot is the team-wide aggregation for one scope at one instant.
type Snapshot struct {
	Users       int              `json:"users"`
	Members     []MemberProgress `json:"members"`
	Tasks       TaskCounts       `json:"tasks"`
	PDIs        PDICounts        `json:"pdis"`
	Assessments AssessmentCounts `json:"assessments"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// MemberStatus holds one user's recent raw rows plus their counts.
type MemberStatus struct {
	User        platform.User            `json:"user"`
	Tasks       []platform.TaskRow       `json:"tasks"`
	PDIs        []platform.PDIRow        `json:"pdis"`
	Assessments []platform.AssessmentRow `json:"assessments"`
	Progress    MemberProgress           `json:"progress"`
}

// Builder computes snapshots from the platform read APIs.
type Builder struct {
	readers platform.Readers
	now     func() time.Time
}

// NewBuilder creates a snapshot builder over the given readers.
func NewBuilder(readers platform.Readers) *Builder {
	return &Builder{readers: readers, now: time.Now}
}

// TeamSnapshot aggregates tasks, plans, and assessments for every given
// user. The user list is the already-resolved scope; the builder never
// widens it.
func (b *Builder) TeamSnapshot(ctx context.Context, workspaceID string, users []platform.User) (*Snapshot, error) {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	tasks, err := b.readers.Tasks.TasksByUsers(ctx, workspaceID, ids, 0)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	pdis, err := b.readers.PDIs.PlansByUsers(ctx, workspaceID, ids, 0)
	if err != nil {
		return nil, fmt.Errorf("load pdis: %w", err)
	}
	assessments, err := b.readers.Assessments.AssessmentsByUsers(ctx, workspaceID, ids, 0)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	now := b.now()
	byUser := make(map[string]*MemberProgress, len(users))
	snap := &Snapshot{Users: len(users), GeneratedAt: now.UTC()}
	for _, u := range users {
		byUser[u.ID] = &MemberProgress{UserID: u.ID, Name: u.Name, JobTitle: u.JobTitle}
	}

	for _, t := range tasks {
		m := byUser[t.UserID]
		if m == nil {
			continue
		}
		countTask(&m.Tasks, t, now)
		countTask(&snap.Tasks, t, now)
	}
	for _, p := range pdis {
		m := byUser[p.UserID]
		if m == nil {
			continue
		}
		countPDI(&m.PDIs, p)
		countPDI(&snap.PDIs, p)
	}
	for _, a := range assessments {
		m := byUser[a.UserID]
		if m == nil {
			continue
		}
		countAssessment(&m.Assessments, a)
		countAssessment(&snap.Assessments, a)
	}

	snap.Members = make([]MemberProgress, 0, len(users))
	for _, u := range users {
		snap.Members = append(snap.Members, *byUser[u.ID])
	}
	return snap, nil
}

// MemberStatus returns one user's recent activity, bounded to the last
// 20 tasks, 10 plans, and 10 assessments.
func (b *Builder) MemberStatus(ctx context.Context, workspaceID string, user platform.User) (*MemberStatus, error) {
	ids := []string{user.ID}

	tasks, err := b.readers.Tasks.TasksByUsers(ctx, workspaceID, ids, memberTaskLookback)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	pdis, err := b.readers.PDIs.PlansByUsers(ctx, workspaceID, ids, memberPDILookback)
	if err != nil {
		return nil, fmt.Errorf("load pdis: %w", err)
	}
	assessments, err := b.readers.Assessments.AssessmentsByUsers(ctx, workspaceID, ids, memberAssessmentLookback)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	now := b.now()
	st := &MemberStatus{
		User:        user,
		Tasks:       tasks,
		PDIs:        pdis,
		Assessments: assessments,
		Progress:    MemberProgress{UserID: user.ID, Name: user.Name, JobTitle: user.JobTitle},
	}
	for _, t := range tasks {
		countTask(&st.Progress.Tasks, t, now)
	}
	for _, p := range pdis {
		countPDI(&st.Progress.PDIs, p)
	}
	for _, a := range assessments {
		countAssessment(&st.Progress.Assessments, a)
	}
	return st, nil
}

func countTask(c *TaskCounts, t platform.TaskRow, now time.Time) {
	c.Total++
	switch t.Status {
	case "todo":
		c.Todo++
	case "in_progress":
		c.InProgress++
	case "done":
		c.Done++
	}
	if t.Status != "done" && t.DueDate != nil && t.DueDate.Before(now) {
		c.Overdue++
	}
}

func countPDI(c *PDICounts, p platform.PDIRow) {
	switch p.Status {
	case "draft":
		c.Draft++
	case "active":
		c.Active++
	case "completed":
		c.Completed++
	case "archived":
		c.Archived++
	}
}

func countAssessment(c *AssessmentCounts, a platform.AssessmentRow) {
	switch a.Status {
	case "draft":
		c.Draft++
	case "completed":
		c.Completed++
	}
}

// Summary renders the snapshot as a deterministic text block. The same
// text is fed back to the model as tool output and returned directly by
// the status-query fallback, so its shape must not depend on anything
// but the snapshot itself.
func (s *Snapshot) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resumo do time (%d %s):\n", s.Users, plural(s.Users, "pessoa", "pessoas"))
	fmt.Fprintf(&b, "- Tarefas: %d no total (%d a fazer, %d em andamento, %d concluídas, %d atrasadas)\n",
		s.Tasks.Total, s.Tasks.Todo, s.Tasks.InProgress, s.Tasks.Done, s.Tasks.Overdue)
	fmt.Fprintf(&b, "- PDIs: %d ativos, %d concluídos, %d em rascunho\n",
		s.PDIs.Active, s.PDIs.Completed, s.PDIs.Draft)
	fmt.Fprintf(&b, "- Avaliações: %d concluídas, %d em rascunho\n",
		s.Assessments.Completed, s.Assessments.Draft)
	b.WriteString("\nPor pessoa:\n")
	for _, m := range s.Members {
		fmt.Fprintf(&b, "- %s: %d %s", m.Name, m.Tasks.Total, plural(m.Tasks.Total, "tarefa", "tarefas"))
		if m.Tasks.Overdue > 0 {
			fmt.Fprintf(&b, " (%d %s)", m.Tasks.Overdue, plural(m.Tasks.Overdue, "atrasada", "atrasadas"))
		}
		if m.PDIs.Active > 0 {
			fmt.Fprintf(&b, ", %d %s", m.PDIs.Active, plural(m.PDIs.Active, "PDI ativo", "PDIs ativos"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary renders one member's recent activity as deterministic text.
func (st *MemberStatus) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status de %s", st.User.Name)
	if st.User.JobTitle != "" {
		fmt.Fprintf(&b, " (%s)", st.User.JobTitle)
	}
	b.WriteString(":\n")
	p := st.Progress
	fmt.Fprintf(&b, "- Tarefas recentes: %d (%d a fazer, %d em andamento, %d concluídas, %d atrasadas)\n",
		p.Tasks.Total, p.Tasks.Todo, p.Tasks.InProgress, p.Tasks.Done, p.Tasks.Overdue)
	fmt.Fprintf(&b, "- PDIs: %d ativos, %d concluídos\n", p.PDIs.Active, p.PDIs.Completed)
	fmt.Fprintf(&b, "- Avaliações: %d concluídas, %d em rascunho", p.Assessments.Completed, p.Assessments.Draft)
	for _, t := range st.Tasks {
		fmt.Fprintf(&b, "\n  - [%s] %s", t.Status, t.Title)
		if t.DueDate != nil {
			fmt.Fprintf(&b, " (prazo %s)", t.DueDate.Format("2006-01-02"))
		}
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
