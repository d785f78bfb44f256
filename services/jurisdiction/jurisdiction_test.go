package jurisdiction

import (
	"errors"
	"net/http"
	"testing"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *DefaultJurisdictionService {
	t.Helper()
	s, err := NewDefaultJurisdictionService()
	require.NoError(t, err)
	return s
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "fabrica de telas", normalize("  Fábrica de TELAS!! "))
	assert.Equal(t, "nuevo leon", normalize("Nuevo León"))
}

func TestResolveFederalSector(t *testing.T) {
	s := newService(t)
	res, err := s.Resolve(models.JurisdictionRequest{Sector: "Maquila textil", State: "jalisco"})
	require.NoError(t, err)
	assert.True(t, res.MatchFound)
	assert.Equal(t, "Industria Textil", res.Analysis.Sector)
	assert.Equal(t, models.CompetenceFederal, res.Analysis.Competence)
	assert.Equal(t, "PROFEDET", res.Recommendation.Instance)
	assert.Equal(t, "Palacio Federal, Av. Alcalde 500, Guadalajara", res.Recommendation.Address)
}

func TestResolveLocalSector(t *testing.T) {
	s := newService(t)
	res, err := s.Resolve(models.JurisdictionRequest{Sector: "mesero en restaurante", State: "Ciudad de Mexico"})
	require.NoError(t, err)
	assert.Equal(t, models.CompetenceLocal, res.Analysis.Competence)
	assert.Equal(t, "San Antonio Abad 122, Tránsito, CDMX", res.Recommendation.Address)
}

func TestResolveFallsBackToLocal(t *testing.T) {
	s := newService(t)
	res, err := s.Resolve(models.JurisdictionRequest{Sector: "xy", State: "Sonora"})
	require.NoError(t, err)
	assert.False(t, res.MatchFound)
	assert.Equal(t, "Clasificación General / No Especificada", res.Analysis.Sector)
	assert.Contains(t, res.Recommendation.Address, "Dirección no registrada")
}

func TestResolvePrefersLongestStateName(t *testing.T) {
	s := newService(t)
	st := s.findState("Baja California Sur")
	require.NotNil(t, st)
	assert.Equal(t, "Baja California Sur", st.StateName)
}

func TestResolveValidation(t *testing.T) {
	s := newService(t)
	var appErr *utils.AppError

	_, err := s.Resolve(models.JurisdictionRequest{Sector: "textil"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)

	_, err = s.Resolve(models.JurisdictionRequest{Sector: "textil", State: "Atlantis"})
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
