package handlers

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ai "aliadolaboral/services/intelligence"
	"aliadolaboral/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var voiceExtensions = map[string]bool{".wav": true, ".m4a": true, ".mp3": true, ".ogg": true, ".webm": true, ".aac": true}

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	if err := binary.Read(bytes.NewReader(data[:44]), binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a WAV file")
	}
	return &header, nil
}

// waveSeconds is the playback length of a PCM WAV.
func waveSeconds(h *waveHeader) float64 {
	if h.ByteRate == 0 {
		return 0
	}
	return float64(h.DataSize) / float64(h.ByteRate)
}

// convertAudio resamples any input to 16kHz mono LINEAR16 with ffmpeg.
func convertAudio(inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}
	cmd := exec.Command("ffmpeg", "-y", "-i", inputPath, "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", outputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}

// TranscribeHandler turns a voice note ("audio" multipart field) into text for the assistant.
func (h *AIHandler) TranscribeHandler(c *gin.Context) {
	logger := getLogger(c)
	if h.Transcriber == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Transcripción no disponible", "")
		return
	}
	language := c.DefaultPostForm("language", "es-MX")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Se requiere el archivo de audio", err.Error())
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !voiceExtensions[ext] {
		utils.JSONError(c, http.StatusBadRequest, "Formato de audio no soportado", ext)
		return
	}
	if header.Size > ai.MaxVoiceNoteBytes {
		utils.JSONError(c, http.StatusBadRequest, "La nota de voz es demasiado grande", "")
		return
	}

	tempInput, err := os.CreateTemp("", "voice-*"+ext)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()
	if _, err := io.Copy(tempInput, io.LimitReader(file, ai.MaxVoiceNoteBytes)); err != nil {
		utils.RespondError(c, err)
		return
	}

	tempOutput, err := os.CreateTemp("", "voice-16k-*.wav")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer os.Remove(tempOutput.Name())
	defer tempOutput.Close()

	if err := convertAudio(tempInput.Name(), tempOutput.Name()); err != nil {
		logger.Warn("voice note conversion failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "No se pudo procesar el audio", err.Error())
		return
	}
	audio, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if wh, err := parseWaveHeader(audio); err == nil && waveSeconds(wh) > ai.MaxVoiceNoteSeconds {
		utils.JSONError(c, http.StatusBadRequest, "La nota de voz no puede durar más de 1 minuto", "")
		return
	}

	text, err := h.Transcriber.Transcribe(c.Request.Context(), audio, language)
	if err != nil {
		logger.Error("voice note transcription failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error al transcribir la nota de voz", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transcription": text})
}
