package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"largest wins", "Pago parcial $5,000.00 y total $125,300.50 en convenio", 125300.50},
		{"no separator", "cantidad de $ 950", 950},
		{"none", "sin montos", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAmount(tt.text))
		})
	}
}

func TestExtractDate(t *testing.T) {
	assert.Equal(t, "12/03/2024", ExtractDate("firmado el 12/03/2024 ante la junta"))
	assert.Equal(t, "1-2-24", ExtractDate("fecha 1-2-24"))
	assert.Empty(t, ExtractDate("sin fecha"))
}

func TestMatchesCedula(t *testing.T) {
	text := "CEDULA PROFESIONAL 12345678 LICENCIATURA EN DERECHO"
	assert.True(t, MatchesCedula(text, "12345678"))
	assert.False(t, MatchesCedula(text, "1234567"))
	assert.False(t, MatchesCedula(text, ""))
}

func TestCommissionRate(t *testing.T) {
	assert.Equal(t, 0.07, CommissionRate(true, "CONCILIACION"))
	assert.Equal(t, 0.05, CommissionRate(true, "JUICIO"))
	assert.Equal(t, 0.10, CommissionRate(false, "CONCILIACION"))
	assert.Equal(t, 0.08, CommissionRate(false, "juicio"))
	assert.Equal(t, 0.10, CommissionRate(false, ""))
}

func TestCommissionAndSavings(t *testing.T) {
	assert.Equal(t, 7000.0, Commission(100000, 0.07))
	assert.Equal(t, 3000.0, ProSavings(100000, "CONCILIACION"))
	assert.Equal(t, 3000.0, ProSavings(100000, "JUICIO"))
}

type fakeReader struct {
	text  string
	err   error
	calls int
}

func (f *fakeReader) ReadImage(ctx context.Context, mimeType string, data []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestGeminiProviderSkipsNonImages(t *testing.T) {
	r := &fakeReader{text: "$1,000.00"}
	p := NewGeminiProvider(r)

	text, err := p.ExtractText(context.Background(), "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, 0, r.calls)

	text, err = p.ExtractText(context.Background(), "image/jpeg", []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, "$1,000.00", text)
}

func TestGeminiProviderWrapsErrors(t *testing.T) {
	p := NewGeminiProvider(&fakeReader{err: errors.New("quota")})
	_, err := p.ExtractText(context.Background(), "image/png", nil)
	assert.ErrorContains(t, err, "quota")
}
