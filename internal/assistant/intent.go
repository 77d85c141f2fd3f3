package assistant

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/leadmate/leadmate/internal/platform"
	"github.com/leadmate/leadmate/internal/scope"
)

// intentResult is the outcome of the direct-intent fast path.
// Exactly one of the three shapes holds: no match (matched == false),
// a clarifying question (question != ""), or a resolved create-task
// instruction (target + title set).
type intentResult struct {
	matched  bool
	question string
	targetID string
	target   platform.User
	title    string
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases and strips diacritics so "Crie" and "crié"
// compare equal. Portuguese-first users type both.
func normalizeText(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

var createTaskVerbs = []string{
	"cria uma tarefa", "criar uma tarefa", "crie uma tarefa",
	"cria tarefa", "criar tarefa", "crie tarefa",
	"adiciona uma tarefa", "adicionar uma tarefa", "adicione uma tarefa",
	"nova tarefa",
	"create a task", "create task", "add a task", "add task",
}

var updateTaskVerbs = []string{
	"atualiza", "atualizar", "atualize",
	"edita", "editar", "edite",
	"muda", "mudar", "mude",
	"altera", "alterar", "altere",
	"update", "edit", "change", "modify",
}

var (
	doubleQuoted = regexp.MustCompile(`"([^"]+)"`)
	singleQuoted = regexp.MustCompile(`'([^']+)'`)
	curlyQuoted  = regexp.MustCompile(`[“”]([^“”]+)[“”]`)
	titleLabel   = regexp.MustCompile(`(?i)t[íi]tulo:\s*(.+)$|title:\s*(.+)$`)
	targetClause = regexp.MustCompile(`(?i)\b(?:para|pra|for)\s+(?:o\s+|a\s+)?([^,.;]+)`)
	taskIDRef    = regexp.MustCompile(`(?:tarefa|task)\s+#?([a-z0-9_-]*\d[a-z0-9_-]*)`)
)

// parseDirectIntent handles the two lexical fast paths. An unambiguous
// "create task" instruction resolves its target and title without a
// model round-trip; any missing or ambiguous signal turns into a
// clarifying question rather than a guess. An "update task" instruction
// that names no task id also asks instead of letting the model invent
// one; with an explicit id in the text it falls through to the
// orchestrator. Everything else falls through untouched.
func parseDirectIntent(message string, sc *scope.Scope) intentResult {
	normalized := normalizeText(message)

	hasVerb := false
	for _, v := range createTaskVerbs {
		if strings.Contains(normalized, v) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		if isUpdateTaskIntent(normalized) {
			if !taskIDRef.MatchString(stripQuotedSpans(normalized)) {
				return intentResult{matched: true, question: "Qual tarefa você quer atualizar? Me informe o id da tarefa."}
			}
		}
		return intentResult{}
	}

	title := extractTitle(message)
	targetID, target, question := resolveTarget(message, sc)
	if question != "" {
		return intentResult{matched: true, question: question}
	}
	if targetID == "" {
		return intentResult{matched: true, question: "Para quem devo criar a tarefa?"}
	}
	if title == "" {
		return intentResult{matched: true, question: "Qual deve ser o título da tarefa?"}
	}

	return intentResult{matched: true, targetID: targetID, target: target, title: title}
}

// isUpdateTaskIntent reports whether the normalized message reads as an
// instruction to change an existing task: an update verb as a whole word
// plus a mention of a task.
func isUpdateTaskIntent(normalized string) bool {
	if !containsWord(normalized, "tarefa") && !containsWord(normalized, "task") {
		return false
	}
	for _, v := range updateTaskVerbs {
		if containsWord(normalized, v) {
			return true
		}
	}
	return false
}

// extractTitle pulls the task title out of the message: quoted text
// first, then an explicit "título:" label. Quotes inside the title are
// not supported; the first quoted span wins.
func extractTitle(message string) string {
	for _, re := range []*regexp.Regexp{doubleQuoted, curlyQuoted, singleQuoted} {
		if m := re.FindStringSubmatch(message); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	if m := titleLabel.FindStringSubmatch(message); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				return strings.Trim(strings.TrimSpace(g), `"'`)
			}
		}
	}
	return ""
}

// resolveTarget finds the target user from a "para <nome>" clause.
// "para mim" resolves to the actor. Returns a clarifying question when
// more than one scoped user matches the given name.
func resolveTarget(message string, sc *scope.Scope) (string, platform.User, string) {
	m := targetClause.FindStringSubmatch(stripQuotedSpans(message))
	if m == nil {
		return "", platform.User{}, ""
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", platform.User{}, ""
	}

	normalized := normalizeText(name)
	if normalized == "mim" || normalized == "me" || strings.HasPrefix(normalized, "mim ") || strings.HasPrefix(normalized, "me ") {
		if u, ok := sc.Lookup(sc.ActorID); ok {
			return sc.ActorID, u, ""
		}
		return sc.ActorID, platform.User{ID: sc.ActorID, Name: "você"}, ""
	}

	matches := matchScopedUsers(normalized, sc)
	switch len(matches) {
	case 0:
		return "", platform.User{}, "Não encontrei \"" + name + "\" no seu time. Para quem devo criar a tarefa?"
	case 1:
		return matches[0].ID, matches[0], ""
	default:
		return "", platform.User{}, "Encontrei mais de uma pessoa chamada \"" + name + "\" no seu time. Pode usar o nome completo?"
	}
}

// matchScopedUsers matches a normalized name fragment against the scope,
// preferring exact full-name and email matches over first-name matches.
func matchScopedUsers(normalized string, sc *scope.Scope) []platform.User {
	var exact []platform.User
	for _, u := range sc.Users {
		if normalizeText(u.Name) == normalized || normalizeText(u.Email) == normalized {
			exact = append(exact, u)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	var prefix []platform.User
	for _, u := range sc.Users {
		full := normalizeText(u.Name)
		first, _, _ := strings.Cut(full, " ")
		if first == normalized || strings.HasPrefix(full, normalized+" ") {
			prefix = append(prefix, u)
		}
	}
	return prefix
}

// stripQuotedSpans blanks out quoted text so a "para" inside a task
// title never shadows the real target clause.
func stripQuotedSpans(message string) string {
	for _, re := range []*regexp.Regexp{doubleQuoted, curlyQuoted, singleQuoted} {
		message = re.ReplaceAllString(message, " ")
	}
	return message
}

var statusVocabulary = []string{
	"progresso", "progress", "status", "andamento", "resumo", "overview",
	"como esta", "como estao", "como vai", "quantas", "quantos", "atrasad",
}

var actionVocabulary = []string{
	"cria", "criar", "crie", "adiciona", "adicionar", "adicione",
	"atualiza", "atualizar", "atualize", "muda", "mudar", "mude",
	"envia", "enviar", "envie", "notifica", "notificar", "notifique",
	"create", "add", "update", "change", "send", "notify",
}

// looksLikeStatusQuery reports whether a message reads as a progress or
// status question rather than an action request. Used as the lexical
// fallback when the model answers a likely status query without calling
// any tool.
func looksLikeStatusQuery(message string) bool {
	normalized := normalizeText(message)
	hasStatus := false
	for _, w := range statusVocabulary {
		if strings.Contains(normalized, w) {
			hasStatus = true
			break
		}
	}
	if !hasStatus {
		return false
	}
	for _, w := range actionVocabulary {
		if containsWord(normalized, w) {
			return false
		}
	}
	return true
}

func containsWord(s, w string) bool {
	idx := strings.Index(s, w)
	for idx >= 0 {
		before := idx == 0 || !isWordRune(rune(s[idx-1]))
		after := idx+len(w) >= len(s) || !isWordRune(rune(s[idx+len(w)]))
		if before && after {
			return true
		}
		next := strings.Index(s[idx+1:], w)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
