package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	TemplateDeadline = "deadline_reminder"
	TemplateMatch    = "new_match"
)

type DeadlineData struct {
	Nome         string
	Titolo       string
	Ente         string
	DaysLeft     int
	DataChiusura string
	URL          string
}

type MatchData struct {
	Nome    string
	Titolo  string
	Ente    string
	Score   int
	Reasons []string
	URL     string
}

var templates = template.Must(template.New("email").Funcs(template.FuncMap{
	"daysLabel": daysLabel,
}).Parse(`
{{define "layout_start"}}<!doctype html><html lang="it"><body style="font-family:Arial,sans-serif;color:#1f2937;max-width:600px;margin:0 auto;padding:24px">{{end}}
{{define "layout_end"}}<p style="font-size:12px;color:#6b7280;margin-top:32px">Ricevi questa email perché hai attivato le notifiche su Concoro. Puoi modificarle dal tuo profilo.</p></body></html>{{end}}

{{define "deadline_reminder"}}{{template "layout_start"}}
<p>Ciao{{if .Nome}} {{.Nome}}{{end}},</p>
<p>il concorso che hai salvato <strong>{{.Titolo}}</strong>{{if .Ente}} ({{.Ente}}){{end}} {{daysLabel .DaysLeft}}{{if .DataChiusura}}: la scadenza è il {{.DataChiusura}}{{end}}.</p>
<p><a href="{{.URL}}" style="background:#2563eb;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none">Vedi il concorso</a></p>
{{template "layout_end"}}{{end}}

{{define "new_match"}}{{template "layout_start"}}
<p>Ciao{{if .Nome}} {{.Nome}}{{end}},</p>
<p>abbiamo trovato un nuovo concorso in linea con il tuo profilo: <strong>{{.Titolo}}</strong>{{if .Ente}} ({{.Ente}}){{end}}.</p>
{{if .Reasons}}<ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p><a href="{{.URL}}" style="background:#2563eb;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none">Vedi il concorso</a></p>
{{template "layout_end"}}{{end}}
`))

func daysLabel(days int) string {
	switch {
	case days <= 0:
		return "scade oggi"
	case days == 1:
		return "scade domani"
	default:
		return fmt.Sprintf("scade tra %d giorni", days)
	}
}

// DeadlineSubject is also used as the in-app notification title.
func DeadlineSubject(titolo string, days int) string {
	switch {
	case days <= 0:
		return "Scade oggi: " + titolo
	case days == 1:
		return "Scade domani: " + titolo
	default:
		return fmt.Sprintf("Scade tra %d giorni: %s", days, titolo)
	}
}

func MatchSubject(titolo string) string {
	return "Nuovo concorso per te: " + titolo
}

func RenderDeadline(d DeadlineData) (string, error) {
	return render(TemplateDeadline, d)
}

func RenderMatch(d MatchData) (string, error) {
	return render(TemplateMatch, d)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
