package admin

import (
	"aliadolaboral/models"
	"aliadolaboral/utils"
)

const legalUpdated = "2026-01-15"

// GetLegalSections returns all legal documents.
func (s *DefaultAdminService) GetLegalSections() []models.LegalSection {
	return []models.LegalSection{
		{
			ID:       "terms",
			Title:    "Términos y Condiciones",
			Summary:  "Reglas de uso de Aliado Laboral para trabajadores, abogados y empresas.",
			Content:  termsOfService,
			Audience: models.AudienceAll,
			Version:  "v1.2",
			Updated:  legalUpdated,
		},
		{
			ID:       "privacy",
			Title:    "Aviso de Privacidad",
			Summary:  "Qué datos personales recabamos, para qué y cómo ejercer tus derechos ARCO.",
			Content:  privacyNotice,
			Audience: models.AudienceAll,
			Version:  "v1.1",
			Updated:  legalUpdated,
		},
		{
			ID:       "forum",
			Title:    "Reglas del Foro",
			Summary:  "Conducta esperada en el foro público de preguntas laborales.",
			Content:  forumRules,
			Audience: models.AudienceAll,
			Version:  "v1.0",
			Updated:  legalUpdated,
		},
		{
			ID:       "lawyer-payments",
			Title:    "Política de Cobros y Comisiones para Abogados",
			Summary:  "Costo por caso, comisión por éxito y consecuencias de los strikes.",
			Content:  lawyerPaymentPolicy,
			Audience: utils.RoleLawyer,
			Version:  "v1.3",
			Updated:  legalUpdated,
		},
		{
			ID:       "worker-payments",
			Title:    "Política de Pagos y Reembolsos para Trabajadores",
			Summary:  "Cuota de apertura, membresía mensual y cuándo procede un reembolso.",
			Content:  workerPaymentPolicy,
			Audience: utils.RoleWorker,
			Version:  "v1.1",
			Updated:  legalUpdated,
		},
	}
}

// GetLegalSectionsFor returns legal documents relevant to the specified role.
func (s *DefaultAdminService) GetLegalSectionsFor(role string) []models.LegalSection {
	var filtered []models.LegalSection
	for _, section := range s.GetLegalSections() {
		if section.Audience == models.AudienceAll || section.Audience == role {
			filtered = append(filtered, section)
		}
	}
	return filtered
}

const termsOfService = `Al usar Aliado Laboral aceptas estos Términos y Condiciones.

1. Objeto: Aliado Laboral conecta a personas trabajadoras con abogados laborales independientes y ofrece herramientas de cumplimiento a pequeñas empresas.
2. Naturaleza del servicio: Aliado Laboral no presta servicios jurídicos; la relación profesional es entre el trabajador y el abogado.
3. Orientación automatizada: las respuestas del asistente son informativas y no sustituyen la asesoría de un abogado.
4. Cuentas: cada persona es responsable de la veracidad de sus datos. Los abogados deben acreditar su cédula profesional.
5. Suspensión: podemos bloquear cuentas por fraude, datos falsos o incumplimiento reiterado.
6. Jurisdicción: estos términos se rigen por las leyes de los Estados Unidos Mexicanos.`

const privacyNotice = `Aliado Laboral es responsable del tratamiento de tus datos personales.

1. Datos que recabamos: nombre, correo, teléfono, datos de tu empleo y documentos que subas a tu bóveda.
2. Finalidades: vincularte con un abogado, procesar pagos, enviar notificaciones y mejorar el servicio.
3. Transferencias: tus datos de contacto sólo se comparten con el abogado que acepte tu caso y después de tu consentimiento.
4. Derechos ARCO: puedes solicitar acceso, rectificación, cancelación u oposición escribiendo a privacidad@aliadolaboral.mx.
5. Conservación: al cerrar un caso pagado podemos purgar la información del expediente.`

const forumRules = `El foro es un espacio público.

- No publiques números de teléfono ni datos que te identifiquen.
- Evita lenguaje ofensivo; las groserías se ocultan automáticamente.
- Las respuestas de abogados son orientativas y no constituyen una relación profesional.
- Los administradores pueden ocultar o borrar publicaciones que incumplan estas reglas.`

const lawyerPaymentPolicy = `1. Costo por caso: al aceptar una solicitud se cobra el costo del caso (150 MXN normal, 300 MXN caso caliente).
2. Si el cobro falla, la cuota de apertura del trabajador se reembolsa y el caso queda disponible.
3. Comisión por éxito: al cerrar un caso ganado se factura 10% (conciliación) u 8% (juicio); con plan PRO 7% y 5%.
4. Las facturas de comisión vencen a los 5 días; con comisiones vencidas no podrás aceptar nuevos casos.
5. Strikes: no responder en 24 horas genera un strike; al tercero la cuenta se suspende.`

const workerPaymentPolicy = `1. Cuota de apertura: enviar una solicitud a un abogado cuesta 50 MXN.
2. Si el abogado rechaza tu caso o no se le puede cobrar, la cuota se reembolsa por el mismo medio de pago.
3. Membresía mensual: 29 MXN, se puede cancelar en cualquier momento y conserva el acceso hasta su vencimiento.
4. Los pagos se procesan con Stripe o MercadoPago; Aliado Laboral no almacena datos de tarjetas.`
