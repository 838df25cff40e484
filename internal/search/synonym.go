package search

// Synonyms maps common Italian public-sector job queries to the wordings
// used in bandi.
var Synonyms = map[string][]string{
	"oss":                {"operatore socio sanitario", "operatori socio sanitari"},
	"infermiere":         {"infermieri", "collaboratore professionale sanitario infermiere"},
	"vigile":             {"agente di polizia locale", "polizia locale", "polizia municipale"},
	"vigile urbano":      {"agente di polizia locale", "polizia locale"},
	"impiegato":          {"istruttore amministrativo", "collaboratore amministrativo"},
	"amministrativo":     {"istruttore amministrativo", "funzionario amministrativo"},
	"insegnante":         {"docente", "docenti"},
	"maestro":            {"docente scuola primaria", "insegnante scuola primaria"},
	"medico":             {"dirigente medico"},
	"ingegnere":          {"istruttore direttivo tecnico", "funzionario tecnico"},
	"geometra":           {"istruttore tecnico"},
	"autista":            {"conducente", "autista scuolabus"},
	"assistente sociale": {"assistenti sociali", "funzionario socio assistenziale"},
	"bibliotecario":      {"istruttore bibliotecario"},
}

func GetSynonyms(query string) []string {
	if query == "" {
		return []string{}
	}
	if v, ok := Synonyms[query]; ok {
		out := make([]string, 0, len(v))
		out = append(out, v...)
		return out
	}
	return []string{}
}
