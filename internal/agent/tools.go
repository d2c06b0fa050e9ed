package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/concesa/salesagent/internal/catalog"
	"github.com/concesa/salesagent/internal/models"
	"github.com/concesa/salesagent/internal/providers/llm"
	"github.com/concesa/salesagent/internal/services"
	"github.com/concesa/salesagent/internal/utils"
)

// Tool names form a closed set. The dispatcher switches on these constants;
// adding a tool means adding a constant, a spec and a dispatch case.
const (
	ToolSearchCatalog     = "search_catalog"
	ToolQuoteRental       = "quote_rental"
	ToolCheckAvailability = "check_availability"
	ToolDeliveryDate      = "delivery_date"
	ToolSaveCustomerName  = "save_customer_name"
	ToolRecordInterest    = "record_interest"
)

// toolRank orders execution within one planning step: retrieval first, then
// calculators, then CRM effects, so later tools can build on earlier results.
func toolRank(name string) int {
	switch name {
	case ToolSearchCatalog:
		return 0
	case ToolQuoteRental, ToolCheckAvailability, ToolDeliveryDate:
		return 1
	case ToolSaveCustomerName, ToolRecordInterest:
		return 2
	default:
		return 3
	}
}

// orderCalls sorts a planning step's calls by rank, preserving the model's
// order within the same rank.
func orderCalls(calls []llm.ToolCall) []llm.ToolCall {
	ordered := make([]llm.ToolCall, len(calls))
	copy(ordered, calls)
	sort.SliceStable(ordered, func(i, j int) bool {
		return toolRank(ordered[i].Name) < toolRank(ordered[j].Name)
	})
	return ordered
}

// ToolSpecs declares the tool surface advertised to the model.
func ToolSpecs() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        ToolSearchCatalog,
			Description: "Busca información de equipos, precios y condiciones en el catálogo de CONCESA. Úsala antes de responder cualquier pregunta sobre equipos.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"query": {Type: "string", Description: "Qué buscar en el catálogo, por ejemplo el nombre de un equipo."},
					"top_k": {Type: "integer", Description: "Cuántos fragmentos devolver. Opcional."},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        ToolQuoteRental,
			Description: "Cotiza el alquiler de un equipo aplicando los descuentos por volumen vigentes.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"daily_rate": {Type: "number", Description: "Tarifa diaria del equipo en Lempiras, tomada del catálogo."},
					"days":       {Type: "integer", Description: "Días de alquiler."},
				},
				Required: []string{"daily_rate", "days"},
			},
		},
		{
			Name:        ToolCheckAvailability,
			Description: "Verifica cuántas unidades de un equipo hay disponibles y, si no hay, cuándo vuelve a estar disponible.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"product":    {Type: "string", Description: "Nombre del equipo a verificar."},
					"start_date": {Type: "string", Description: "Fecha de inicio del alquiler en formato YYYY-MM-DD. Opcional, por defecto hoy."},
				},
				Required: []string{"product"},
			},
		},
		{
			Name:        ToolDeliveryDate,
			Description: "Calcula la fecha de entrega de un equipo a partir del tiempo de preparación.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"lead_time_days":     {Type: "integer", Description: "Días de preparación antes de entregar."},
					"order_date":         {Type: "string", Description: "Fecha del pedido en formato YYYY-MM-DD. Opcional, por defecto hoy."},
					"business_days_only": {Type: "boolean", Description: "Si true cuenta solo días hábiles. Opcional, por defecto true."},
				},
				Required: []string{"lead_time_days"},
			},
		},
		{
			Name:        ToolSaveCustomerName,
			Description: "Guarda el nombre del cliente en el CRM. Úsala en cuanto el cliente diga su nombre.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"name": {Type: "string", Description: "Nombre del cliente tal como lo dijo."},
				},
				Required: []string{"name"},
			},
		},
		{
			Name:        ToolRecordInterest,
			Description: "Registra que el cliente está interesado en un equipo para que un asesor le dé seguimiento.",
			Parameters: llm.ObjectSchema{
				Properties: map[string]llm.ParamSchema{
					"product":    {Type: "string", Description: "Equipo que le interesa al cliente."},
					"daily_rate": {Type: "number", Description: "Tarifa diaria cotizada en Lempiras. Opcional."},
					"days":       {Type: "integer", Description: "Días de alquiler que mencionó. Opcional."},
				},
				Required: []string{"product"},
			},
		},
	}
}

// turnStage accumulates the CRM effects of one turn. Nothing here touches the
// database; the orchestrator commits the stage only after the reply exists.
type turnStage struct {
	bound     bool
	name      string
	interests []services.StagedInterest
}

// hasInterest reports whether a product was already staged this turn.
func (s *turnStage) hasInterest(product string) bool {
	for _, it := range s.interests {
		if strings.EqualFold(it.Product, product) {
			return true
		}
	}
	return false
}

// toolOutcome is what a dispatch produces: the JSON payload fed back to the
// model, and whether the call failed argument validation (those count against
// the re-prompt budget).
type toolOutcome struct {
	payload string
	invalid bool
}

type toolError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func errPayload(code, msg string) string {
	return jsonPayload(toolError{Error: code, Message: msg})
}

func jsonPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"INTERNAL","message":"respuesta no serializable"}`
	}
	return string(b)
}

// toolExecutor runs tool calls against the business services. It holds no
// per-turn state; staging lives in the turnStage the orchestrator passes in.
type toolExecutor struct {
	retriever    *catalog.Retriever
	pricing      services.PricingService
	availability services.AvailabilityService
	schedule     services.ScheduleService
	timeout      time.Duration
	now          func() time.Time
}

func (e *toolExecutor) today() models.CivilDate {
	return models.NewCivilDate(e.now())
}

func (e *toolExecutor) dispatch(ctx context.Context, call llm.ToolCall, stage *turnStage) toolOutcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch call.Name {
	case ToolSearchCatalog:
		return e.searchCatalog(ctx, call.Arguments)
	case ToolQuoteRental:
		return e.quoteRental(call.Arguments)
	case ToolCheckAvailability:
		return e.checkAvailability(ctx, call.Arguments)
	case ToolDeliveryDate:
		return e.deliveryDate(call.Arguments)
	case ToolSaveCustomerName:
		return e.saveCustomerName(call.Arguments, stage)
	case ToolRecordInterest:
		return e.recordInterest(call.Arguments, stage)
	default:
		return toolOutcome{
			payload: errPayload("UNKNOWN_TOOL", fmt.Sprintf("la herramienta %q no existe", call.Name)),
			invalid: true,
		}
	}
}

func parseArgs(raw string, out any) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	return json.Unmarshal([]byte(raw), out)
}

// asInt rejects fractional values that models sometimes emit for integer
// fields.
func asInt(v float64, field string) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%s debe ser un número entero", field)
	}
	return int(v), nil
}

func (e *toolExecutor) searchCatalog(ctx context.Context, raw string) toolOutcome {
	var args struct {
		Query string  `json:"query"`
		TopK  float64 `json:"top_k"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para search_catalog"), invalid: true}
	}
	if strings.TrimSpace(args.Query) == "" {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "query es obligatorio"), invalid: true}
	}
	topK, err := asInt(args.TopK, "top_k")
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", err.Error()), invalid: true}
	}

	results, err := e.retriever.Search(ctx, args.Query, topK)
	if err != nil {
		if ctx.Err() != nil {
			return toolOutcome{payload: errPayload("TIMEOUT", "la búsqueda en el catálogo tardó demasiado")}
		}
		return toolOutcome{payload: errPayload("RETRIEVAL_UNAVAILABLE", "la búsqueda en el catálogo no está disponible en este momento")}
	}
	if len(results) == 0 {
		return toolOutcome{payload: jsonPayload(map[string]any{
			"results": []models.SearchResult{},
			"count":   0,
			"message": "No encontré información sobre eso en el catálogo.",
		})}
	}
	return toolOutcome{payload: jsonPayload(map[string]any{
		"results": results,
		"count":   len(results),
	})}
}

func (e *toolExecutor) quoteRental(raw string) toolOutcome {
	var args struct {
		DailyRate float64 `json:"daily_rate"`
		Days      float64 `json:"days"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para quote_rental"), invalid: true}
	}
	days, err := asInt(args.Days, "days")
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", err.Error()), invalid: true}
	}

	quote, err := e.pricing.Quote(models.CentsFromFloat(args.DailyRate), days)
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "daily_rate y days deben ser mayores que cero"), invalid: true}
	}
	return toolOutcome{payload: jsonPayload(quote)}
}

func (e *toolExecutor) checkAvailability(ctx context.Context, raw string) toolOutcome {
	var args struct {
		Product   string `json:"product"`
		StartDate string `json:"start_date"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para check_availability"), invalid: true}
	}
	if strings.TrimSpace(args.Product) == "" {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "product es obligatorio"), invalid: true}
	}

	start := e.today()
	if args.StartDate != "" {
		parsed, err := models.ParseCivilDate(args.StartDate)
		if err != nil {
			return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "start_date debe tener formato YYYY-MM-DD"), invalid: true}
		}
		start = parsed
	}

	avail, err := e.availability.Check(ctx, args.Product, start)
	if err != nil {
		switch {
		case utils.IsCode(err, utils.CodeProductNotFound):
			return toolOutcome{payload: errPayload("PRODUCT_NOT_FOUND", fmt.Sprintf("no encontré el equipo %q en el inventario", args.Product))}
		case ctx.Err() != nil:
			return toolOutcome{payload: errPayload("TIMEOUT", "la consulta de inventario tardó demasiado")}
		default:
			return toolOutcome{payload: errPayload("INVENTORY_UNAVAILABLE", "no pude consultar el inventario en este momento")}
		}
	}
	return toolOutcome{payload: jsonPayload(avail)}
}

func (e *toolExecutor) deliveryDate(raw string) toolOutcome {
	var args struct {
		LeadTimeDays     float64 `json:"lead_time_days"`
		OrderDate        string  `json:"order_date"`
		BusinessDaysOnly *bool   `json:"business_days_only"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para delivery_date"), invalid: true}
	}
	lead, err := asInt(args.LeadTimeDays, "lead_time_days")
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", err.Error()), invalid: true}
	}

	order := e.today()
	if args.OrderDate != "" {
		parsed, err := models.ParseCivilDate(args.OrderDate)
		if err != nil {
			return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "order_date debe tener formato YYYY-MM-DD"), invalid: true}
		}
		order = parsed
	}
	businessOnly := true
	if args.BusinessDaysOnly != nil {
		businessOnly = *args.BusinessDaysOnly
	}

	estimate, err := e.schedule.DeliveryDate(order, lead, businessOnly)
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "lead_time_days no puede ser negativo"), invalid: true}
	}
	return toolOutcome{payload: jsonPayload(estimate)}
}

func (e *toolExecutor) saveCustomerName(raw string, stage *turnStage) toolOutcome {
	var args struct {
		Name string `json:"name"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para save_customer_name"), invalid: true}
	}
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "name es obligatorio"), invalid: true}
	}

	stage.name = name
	return toolOutcome{payload: jsonPayload(map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("Perfecto %s, te damos la bienvenida a CONCESA. ¿En qué te puedo ayudar hoy?", name),
	})}
}

func (e *toolExecutor) recordInterest(raw string, stage *turnStage) toolOutcome {
	var args struct {
		Product   string  `json:"product"`
		DailyRate float64 `json:"daily_rate"`
		Days      float64 `json:"days"`
	}
	if err := parseArgs(raw, &args); err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "argumentos inválidos para record_interest"), invalid: true}
	}
	product := strings.TrimSpace(args.Product)
	if product == "" {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", "product es obligatorio"), invalid: true}
	}
	days, err := asInt(args.Days, "days")
	if err != nil {
		return toolOutcome{payload: errPayload("INVALID_ARGUMENT", err.Error()), invalid: true}
	}

	// Interest needs an identified customer: either one already bound to the
	// session or a name staged earlier in this same turn.
	if !stage.bound && stage.name == "" {
		return toolOutcome{payload: errPayload("CUSTOMER_REQUIRED", "primero necesito el nombre del cliente para registrar su interés")}
	}

	interest := services.StagedInterest{Product: strings.ToLower(product)}
	if args.DailyRate > 0 {
		cents := models.CentsFromFloat(args.DailyRate)
		interest.DailyRateCents = &cents
	}
	if days > 0 {
		interest.RentalDays = &days
	}
	if interest.DailyRateCents != nil && interest.RentalDays != nil {
		if quote, err := e.pricing.Quote(*interest.DailyRateCents, *interest.RentalDays); err == nil {
			interest.Quote = quote
		}
	}
	stage.interests = append(stage.interests, interest)

	return toolOutcome{payload: jsonPayload(map[string]string{
		"status":  "ok",
		"message": fmt.Sprintf("Interés en %s registrado, un asesor dará seguimiento.", product),
	})}
}
