package contact

import (
	"bytes"
	"context"
	"fmt"

	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/jung-kurt/gofpdf"
)

// CaseFile renders the request, its documents and the chat transcript as a PDF.
func (s *DefaultContactService) CaseFile(ctx context.Context, userID, role, requestID string) ([]byte, error) {
	var req *models.ContactRequest
	var err error
	if role == utils.RoleAdmin {
		req, err = s.getRequest(ctx, requestID)
	} else {
		var lc *lawyerContext
		lc, err = s.loadLawyer(ctx, userID)
		if err != nil {
			return nil, err
		}
		req, err = s.ownedRequest(ctx, lc, requestID)
	}
	if err != nil {
		return nil, err
	}

	worker, err := s.Users.GetByID(ctx, req.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load worker: %w", err)
	}
	messages, err := s.Chats.ListByRequest(ctx, req.ID, 500)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}
	return renderCaseFile(req, worker, messages)
}

func renderCaseFile(req *models.ContactRequest, worker *models.User, messages []models.ChatMessage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Expediente "+req.ID), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Expediente Digital - Aliado Laboral"))
	pdf.Ln(12)

	section := func(title string) {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
	}
	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
	}

	section("Datos del caso")
	row("Folio", req.ID)
	row("Tipo de caso", req.CaseType)
	row("Clasificación", req.Classification)
	row("Estado", req.Status+" / "+req.CRMStatus)
	row("Empresa", req.EmployerName)
	row("Antigüedad (años)", fmt.Sprintf("%.1f", req.YearsOfService))
	row("Finiquito estimado", fmt.Sprintf("$%.2f MXN", req.EstimatedSeverance))
	row("Fecha de creación", req.CreatedAt.Format("02/01/2006 15:04"))
	if req.SettlementAmount > 0 {
		row("Monto del convenio", fmt.Sprintf("$%.2f MXN", req.SettlementAmount))
	}

	if worker != nil {
		section("Trabajador")
		row("Nombre", worker.FullName)
		if req.BothPaymentsSucceeded && req.DataStatus != models.DataPurged {
			row("Correo", worker.Email)
			row("Teléfono", worker.Phone)
		}
	}

	section("Relato")
	pdf.MultiCell(0, 5, tr(req.Description), "", "L", false)
	if req.AISummary != "" {
		section("Análisis preliminar")
		pdf.MultiCell(0, 5, tr(req.AISummary), "", "L", false)
	}

	if len(req.Documents) > 0 {
		section("Documentos")
		for _, d := range req.Documents {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("- %s (%s)", d.Name, d.UploadedAt.Format("02/01/2006"))), "", "L", false)
		}
	}

	if len(messages) > 0 {
		section("Conversación")
		for _, m := range messages {
			pdf.SetFont("Arial", "B", 9)
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s", m.CreatedAt.Format("02/01/2006 15:04"), m.SenderRole)), "", "L", false)
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 5, tr(m.Content), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render case file: %w", err)
	}
	return buf.Bytes(), nil
}
