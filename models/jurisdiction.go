package models

// IndustryCompetence says whether disputes in a sector are federal or local.
type IndustryCompetence struct {
	Sector       string   `json:"sector"`
	Competence   string   `json:"competence"`
	BaseInstance string   `json:"baseInstance"`
	Keywords     []string `json:"keywords"`
}

// StateOffice holds the labor defense offices of a state.
type StateOffice struct {
	StateName                string `json:"stateName"`
	ProfedetAddress          string `json:"profedetAddress"`
	LocalProcuraduriaAddress string `json:"localProcuraduriaAddress"`
}

const (
	CompetenceFederal = "FEDERAL"
	CompetenceLocal   = "LOCAL"
)

// JurisdictionRequest is the sector and state a worker types in.
type JurisdictionRequest struct {
	Sector string `json:"sector_usuario"`
	State  string `json:"estado_usuario"`
}

// JurisdictionResult tells the worker where to file.
type JurisdictionResult struct {
	MatchFound bool `json:"matchEncontrado"`
	Analysis   struct {
		SearchedWord string `json:"palabraBuscada"`
		Sector       string `json:"sectorIdentificado"`
		Competence   string `json:"competencia"`
	} `json:"analisis"`
	Recommendation struct {
		Instance     string `json:"instancia"`
		Address      string `json:"direccionOficial"`
		Instructions string `json:"indicaciones"`
	} `json:"recomendacion"`
}
