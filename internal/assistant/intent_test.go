package assistant

import (
	"strings"
	"testing"

	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/scope"
)

func testScope() *scope.Scope {
	return &scope.Scope{
		WorkspaceID: "ws1",
		ActorID:     "mgr1",
		Users: []platform.User{
			{ID: "u1", Name: "Maria Silva", Email: "maria@acme.com"},
			{ID: "u2", Name: "João Souza", Email: "joao@acme.com"},
			{ID: "u3", Name: "Ana Lima", Email: "ana@acme.com"},
		},
	}
}

func TestParseDirectIntentQuotedTitle(t *testing.T) {
	res := parseDirectIntent(`Cria uma tarefa "Ligar para o cliente X" para Maria`, testScope())
	if !res.matched || res.question != "" {
		t.Fatalf("expected resolved intent, got %+v", res)
	}
	if res.targetID != "u1" {
		t.Fatalf("target = %q", res.targetID)
	}
	if res.title != "Ligar para o cliente X" {
		t.Fatalf("title = %q", res.title)
	}
}

func TestParseDirectIntentSingleQuotesAndFullName(t *testing.T) {
	res := parseDirectIntent("Crie uma tarefa 'Revisar metas' para João Souza", testScope())
	if !res.matched || res.question != "" {
		t.Fatalf("expected resolved intent, got %+v", res)
	}
	if res.targetID != "u2" || res.title != "Revisar metas" {
		t.Fatalf("got target=%q title=%q", res.targetID, res.title)
	}
}

func TestParseDirectIntentForMe(t *testing.T) {
	res := parseDirectIntent(`Cria uma tarefa "Preparar 1:1s" para mim`, testScope())
	if !res.matched || res.question != "" {
		t.Fatalf("expected resolved intent, got %+v", res)
	}
	if res.targetID != "mgr1" {
		t.Fatalf("target = %q, want actor", res.targetID)
	}
}

func TestParseDirectIntentTitleLabel(t *testing.T) {
	res := parseDirectIntent("Crie uma tarefa para Ana, título: Atualizar o onboarding", testScope())
	if !res.matched || res.question != "" {
		t.Fatalf("expected resolved intent, got %+v", res)
	}
	if res.targetID != "u3" || res.title != "Atualizar o onboarding" {
		t.Fatalf("got target=%q title=%q", res.targetID, res.title)
	}
}

func TestParseDirectIntentMissingTitle(t *testing.T) {
	res := parseDirectIntent("Cria uma tarefa para Maria", testScope())
	if !res.matched {
		t.Fatal("expected match")
	}
	if !strings.Contains(res.question, "título") {
		t.Fatalf("expected title question, got %q", res.question)
	}
}

func TestParseDirectIntentMissingTarget(t *testing.T) {
	res := parseDirectIntent(`Cria uma tarefa "Fechar o relatório"`, testScope())
	if !res.matched {
		t.Fatal("expected match")
	}
	if !strings.Contains(res.question, "Para quem") {
		t.Fatalf("expected target question, got %q", res.question)
	}
}

func TestParseDirectIntentUnknownTarget(t *testing.T) {
	res := parseDirectIntent(`Cria uma tarefa "X" para Carlos`, testScope())
	if !res.matched {
		t.Fatal("expected match")
	}
	if !strings.Contains(res.question, "Não encontrei") {
		t.Fatalf("expected unknown-target question, got %q", res.question)
	}
}

func TestParseDirectIntentAmbiguousTarget(t *testing.T) {
	sc := testScope()
	sc.Users = append(sc.Users, platform.User{ID: "u4", Name: "Maria Santos"})

	res := parseDirectIntent(`Cria uma tarefa "X" para Maria`, sc)
	if !res.matched {
		t.Fatal("expected match")
	}
	if !strings.Contains(res.question, "mais de uma pessoa") {
		t.Fatalf("expected ambiguity question, got %q", res.question)
	}

	// The full name stays unambiguous.
	res = parseDirectIntent(`Cria uma tarefa "X" para Maria Santos`, sc)
	if res.question != "" || res.targetID != "u4" {
		t.Fatalf("full name should disambiguate, got %+v", res)
	}
}

func TestParseDirectIntentIgnoresDiacritics(t *testing.T) {
	res := parseDirectIntent(`Criá uma tarefa "X" para Joao`, testScope())
	if res.question != "" || res.targetID != "u2" {
		t.Fatalf("expected diacritic-insensitive match, got %+v", res)
	}
}

// TestParseDirectIntentUpdateWithoutTaskID: changing a task without
// naming which one must be asked back, never left to the model to
// invent an id.
func TestParseDirectIntentUpdateWithoutTaskID(t *testing.T) {
	for _, msg := range []string{
		"Atualiza a tarefa da Maria para concluída",
		"Edita a tarefa do João, por favor",
		"Muda a tarefa da Ana pra prioridade alta",
		"Update the task for Maria",
	} {
		res := parseDirectIntent(msg, testScope())
		if !res.matched {
			t.Fatalf("expected match for %q, got %+v", msg, res)
		}
		if !strings.Contains(res.question, "Qual tarefa") {
			t.Fatalf("expected task-id question for %q, got %q", msg, res.question)
		}
	}
}

func TestParseDirectIntentUpdateWithTaskID(t *testing.T) {
	for _, msg := range []string{
		"Atualiza a tarefa t-123 da Maria para concluída",
		"Muda a tarefa 42 pra prioridade alta",
	} {
		res := parseDirectIntent(msg, testScope())
		if res.matched || res.question != "" {
			t.Fatalf("explicit id must fall through to the model for %q, got %+v", msg, res)
		}
	}
}

func TestParseDirectIntentUpdateDoesNotShadowCreate(t *testing.T) {
	res := parseDirectIntent(`Cria uma tarefa "Atualizar as metas" para Maria`, testScope())
	if !res.matched || res.question != "" {
		t.Fatalf("expected resolved create intent, got %+v", res)
	}
	if res.targetID != "u1" || res.title != "Atualizar as metas" {
		t.Fatalf("got target=%q title=%q", res.targetID, res.title)
	}
}

func TestParseDirectIntentNoMatch(t *testing.T) {
	for _, msg := range []string{
		"Como está o progresso do time?",
		"Bom dia!",
		"O que a Maria está fazendo?",
	} {
		if res := parseDirectIntent(msg, testScope()); res.matched {
			t.Fatalf("unexpected match for %q: %+v", msg, res)
		}
	}
}

func TestLooksLikeStatusQuery(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"Como está o progresso do time?", true},
		{"Qual o status da equipe?", true},
		{"Quantas tarefas estão atrasadas?", true},
		{"Me dá um resumo do andamento", true},
		{"Team progress overview please", true},
		{"Atualiza o status da tarefa t1 para done", false},
		{"Cria uma tarefa para Maria", false},
		{"Envia uma notificação para o João", false},
		{"Bom dia!", false},
	}
	for _, c := range cases {
		if got := looksLikeStatusQuery(c.msg); got != c.want {
			t.Errorf("looksLikeStatusQuery(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
}
