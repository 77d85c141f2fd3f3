package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/leadmate/leadmate/internal/scope"
)

// BuildSystemPrompt assembles the system prompt for one turn: the
// assistant's operating rules plus the serialized scope, so the model
// only ever sees the users the actor is allowed to act on.
func BuildSystemPrompt(sc *scope.Scope, now time.Time) string {
	var b strings.Builder

	b.WriteString(`Você é o assistente de gestão de uma plataforma de desenvolvimento de pessoas.
Você ajuda gestores a acompanhar o progresso do time (tarefas, PDIs e avaliações) e a propor ações.

Regras:
- Você só pode consultar e propor ações para as pessoas listadas abaixo. Nunca invente outros usuários.
- Você NUNCA executa escritas diretamente. As ferramentas *_proposal apenas criam propostas que o gestor precisa confirmar.
- Use get_team_progress e get_member_status para responder perguntas sobre andamento; não estime números de cabeça.
- Quando faltar informação para uma ação (alvo, título), pergunte em vez de adivinhar.
- Responda no idioma da mensagem do gestor (português por padrão), de forma curta e objetiva.

`)

	fmt.Fprintf(&b, "Data e hora atual: %s\n", now.Format("2006-01-02 15:04 (Monday)"))
	fmt.Fprintf(&b, "Workspace: %s\n", sc.WorkspaceID)
	fmt.Fprintf(&b, "Gestor (actor): %s\n\n", sc.ActorID)

	b.WriteString("Time do gestor:\n")
	for _, u := range sc.Users {
		fmt.Fprintf(&b, "- %s — %s", u.ID, u.Name)
		if u.JobTitle != "" {
			fmt.Fprintf(&b, " (%s)", u.JobTitle)
		}
		b.WriteString("\n")
	}

	return b.String()
}
