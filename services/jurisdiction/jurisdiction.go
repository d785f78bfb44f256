// Package jurisdiction tells a worker whether their dispute is federal or local and where to file it.
package jurisdiction

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	//go:embed data/competences.json
	competencesJSON []byte
	//go:embed data/states.json
	statesJSON []byte
)

const (
	tokenScore  = 10
	phraseScore = 50
	minTokenLen = 3
)

var generalCompetence = models.IndustryCompetence{
	Sector:       "Clasificación General / No Especificada",
	Competence:   models.CompetenceLocal,
	BaseInstance: "Procuraduría Estatal de la Defensa del Trabajo",
}

type JurisdictionService interface {
	Resolve(in models.JurisdictionRequest) (*models.JurisdictionResult, error)
}

type DefaultJurisdictionService struct {
	Competences []models.IndustryCompetence
	States      []models.StateOffice
}

// NewDefaultJurisdictionService loads the bundled competence matrix and state directory.
func NewDefaultJurisdictionService() (*DefaultJurisdictionService, error) {
	s := &DefaultJurisdictionService{}
	if err := json.Unmarshal(competencesJSON, &s.Competences); err != nil {
		return nil, fmt.Errorf("failed to load competences: %w", err)
	}
	if err := json.Unmarshal(statesJSON, &s.States); err != nil {
		return nil, fmt.Errorf("failed to load state directory: %w", err)
	}
	return s, nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// normalize lowercases s and strips accents and symbols.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(nonAlnum.ReplaceAllString(out, ""))
}

// match scores every competence against the sector the worker typed and returns the best one.
func (s *DefaultJurisdictionService) match(sector string) (models.IndustryCompetence, int) {
	phrase := normalize(sector)
	tokens := strings.Fields(phrase)
	best, bestScore := generalCompetence, 0
	for _, c := range s.Competences {
		keywords := make([]string, len(c.Keywords))
		for i, k := range c.Keywords {
			keywords[i] = normalize(k)
		}
		sectorTokens := strings.Fields(normalize(c.Sector))

		score := 0
		for _, word := range tokens {
			if len(word) < minTokenLen {
				continue
			}
			if containsPart(keywords, word) || containsPart(sectorTokens, word) {
				score += tokenScore
			}
			if containsExact(keywords, phrase) {
				score += phraseScore
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

func containsPart(list []string, word string) bool {
	for _, v := range list {
		if strings.Contains(v, word) {
			return true
		}
	}
	return false
}

func containsExact(list []string, word string) bool {
	for _, v := range list {
		if v == word {
			return true
		}
	}
	return false
}

func (s *DefaultJurisdictionService) findState(name string) *models.StateOffice {
	want := normalize(name)
	if want == "" {
		return nil
	}
	var best *models.StateOffice
	for i := range s.States {
		got := normalize(s.States[i].StateName)
		if got == want {
			return &s.States[i]
		}
		if strings.Contains(got, want) || strings.Contains(want, got) {
			if best == nil || len(got) > len(normalize(best.StateName)) {
				best = &s.States[i]
			}
		}
	}
	return best
}

func (s *DefaultJurisdictionService) Resolve(in models.JurisdictionRequest) (*models.JurisdictionResult, error) {
	if strings.TrimSpace(in.Sector) == "" || strings.TrimSpace(in.State) == "" {
		return nil, utils.BadRequest("Se requiere 'sector_usuario' y 'estado_usuario'.")
	}
	comp, score := s.match(in.Sector)
	state := s.findState(in.State)
	if state == nil {
		return nil, utils.NotFound("Estado no encontrado en el directorio.").
			WithExtra("details", "Asegúrate de escribir el nombre del estado completo (ej. 'Ciudad de México', 'Jalisco').")
	}

	res := &models.JurisdictionResult{MatchFound: score > 0}
	res.Analysis.SearchedWord = in.Sector
	res.Analysis.Sector = comp.Sector
	res.Analysis.Competence = comp.Competence

	if comp.Competence == models.CompetenceFederal {
		res.Recommendation.Instance = orDefault(comp.BaseInstance, "PROFEDET (Federal)")
		res.Recommendation.Address = orDefault(state.ProfedetAddress, "Dirección no registrada. Consulta en línea para PROFEDET de tu estado.")
		res.Recommendation.Instructions = "Dirígete a la instancia Federal (PROFEDET). Dado el sector en el que trabajas, tu asunto es de jurisdicción federal."
	} else {
		res.Recommendation.Instance = orDefault(comp.BaseInstance, "Procuraduría de la Defensa del Trabajo (Local)")
		res.Recommendation.Address = orDefault(state.LocalProcuraduriaAddress, "Dirección no registrada. Consulta la Procuraduría Local de tu estado.")
		res.Recommendation.Instructions = "Dirígete a la instancia Local. Tu asunto se resuelve en el fuero común del Estado correspondiente."
	}
	return res, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
