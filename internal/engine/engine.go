// Package engine turns one inbound customer message into one outbound sales
// reply, spending a hosted-model call only when cheaper strategies cannot
// answer.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"sales-engine/internal/assembler"
	"sales-engine/internal/classifier"
	"sales-engine/internal/finance"
	"sales-engine/internal/inventory"
	"sales-engine/internal/llm"
	"sales-engine/internal/logger"
	"sales-engine/internal/patterns"
	"sales-engine/pkg"
)

// SafeDefaultReply masks a failed or empty hosted-model generation. A generic
// deferral beats a stale or wrong answer in a live chat.
const SafeDefaultReply = "Thanks for reaching out - let me check and get back to you shortly."

// DefaultMaxHistoryTurns caps how much conversation history is replayed to
// the hosted model.
const DefaultMaxHistoryTurns = 20

// DealershipProvider supplies store identity and AI personality settings.
// GetAiSettings returns (nil, nil) when no settings are stored.
type DealershipProvider interface {
	GetDealership(ctx context.Context, id int64) (*pkg.Dealership, error)
	GetAiSettings(ctx context.Context, dealershipID int64) (*pkg.AiPersonalitySettings, error)
}

// HistoryProvider loads stored conversation turns, oldest first.
type HistoryProvider interface {
	GetHistory(ctx context.Context, dealershipID int64, conversationID string) ([]pkg.ConversationMessage, error)
}

// Engine is the top-level response pipeline. Stateless per request; safe for
// concurrent use.
type Engine struct {
	classifier      *classifier.Cascade
	resolver        *inventory.Resolver
	calculator      *finance.Calculator
	vehicles        inventory.VehicleProvider
	dealerships     DealershipProvider
	history         HistoryProvider // optional
	hosted          llm.Chat        // optional: nil degrades complex replies to the safe default
	maxHistoryTurns int
	now             func() time.Time
}

// Options carries the engine's collaborators.
type Options struct {
	Classifier      *classifier.Cascade
	Resolver        *inventory.Resolver
	Calculator      *finance.Calculator
	Vehicles        inventory.VehicleProvider
	Dealerships     DealershipProvider
	History         HistoryProvider
	Hosted          llm.Chat
	MaxHistoryTurns int
	Now             func() time.Time
}

func New(opts Options) *Engine {
	if opts.MaxHistoryTurns <= 0 {
		opts.MaxHistoryTurns = DefaultMaxHistoryTurns
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{
		classifier:      opts.Classifier,
		resolver:        opts.Resolver,
		calculator:      opts.Calculator,
		vehicles:        opts.Vehicles,
		dealerships:     opts.Dealerships,
		history:         opts.History,
		hosted:          opts.Hosted,
		maxHistoryTurns: opts.MaxHistoryTurns,
		now:             opts.Now,
	}
}

// GenerateSalesResponse handles one inbound message. A missing dealership is
// the only fatal condition; every other failure degrades to a defined
// fallback.
func (e *Engine) GenerateSalesResponse(ctx context.Context, req pkg.SalesRequest) (*pkg.SalesResponse, error) {
	dealership, err := e.dealerships.GetDealership(ctx, req.DealershipID)
	if err != nil {
		return nil, fmt.Errorf("loading dealership %d: %w", req.DealershipID, err)
	}
	if dealership == nil {
		return nil, fmt.Errorf("dealership %d not found", req.DealershipID)
	}

	stored, err := e.dealerships.GetAiSettings(ctx, req.DealershipID)
	if err != nil {
		logger.Warn().Err(err).Int64("dealership_id", req.DealershipID).Msg("loading ai settings failed, using defaults")
		stored = nil
	}
	settings := assembler.ResolveSettings(stored)

	history := req.MessageHistory
	if len(history) == 0 && req.ConversationID != "" && e.history != nil {
		history, err = e.history.GetHistory(ctx, req.DealershipID, req.ConversationID)
		if err != nil {
			logger.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("loading history failed, continuing without it")
			history = nil
		}
	}

	verdict := e.classifier.Classify(ctx, req.CustomerMessage)
	logger.Debug().
		Str("intent", string(verdict.Intent)).
		Float64("confidence", verdict.Confidence).
		Str("reason", verdict.Reason).
		Msg("message classified")

	switch verdict.Intent {
	case pkg.IntentObjection:
		if resp := e.objectionReply(ctx, req, *dealership, settings); resp != nil {
			return resp, nil
		}
	case pkg.IntentSimpleQuestion:
		if resp := e.questionReply(ctx, req, *dealership, settings); resp != nil {
			return resp, nil
		}
	}
	return e.complexReply(ctx, req, *dealership, settings, history)
}

// objectionReply builds a templated objection response, or nil to fall
// through to the generative branch. The pattern matcher is re-run because a
// model tier may have produced the verdict without recording which key
// matched.
func (e *Engine) objectionReply(ctx context.Context, req pkg.SalesRequest, dealership pkg.Dealership, settings pkg.AiPersonalitySettings) *pkg.SalesResponse {
	key := patterns.Classify(req.CustomerMessage).Objection
	if key == "" {
		return nil
	}

	tmpl, isOverride := settings.ObjectionOverrides[key]
	if !isOverride {
		tmpl = defaultObjectionTemplates[key]
	}
	if tmpl == "" {
		return nil
	}
	if err := ValidateTemplate(tmpl); err != nil {
		logger.Warn().Err(err).Str("objection", key).Msg("rejecting objection template")
		return nil
	}

	vehicle, _ := e.resolveRequestVehicle(ctx, req)

	vars := map[string]string{
		"customerName":   req.CustomerName,
		"dealershipName": dealership.Name,
	}
	if vehicle != nil {
		vars["vehicleModel"] = vehicle.Model
		vars["vehicleYear"] = strconv.Itoa(vehicle.Year)
		vars["vehicleFact"] = vehicleFact(*vehicle)
	}

	resp := &pkg.SalesResponse{Reply: RenderTemplate(tmpl, vars)}
	attachVehicle(resp, vehicle)
	return resp
}

// questionReply answers a matched simple question, or nil to fall through.
func (e *Engine) questionReply(ctx context.Context, req pkg.SalesRequest, dealership pkg.Dealership, settings pkg.AiPersonalitySettings) *pkg.SalesResponse {
	key := patterns.Classify(req.CustomerMessage).Question
	if key == "" {
		return nil
	}

	vehicle, _ := e.resolveRequestVehicle(ctx, req)
	reply := answerQuestion(key, vehicle, dealership, settings.BusinessHours)
	if reply == "" {
		return nil
	}

	resp := &pkg.SalesResponse{Reply: reply}
	attachVehicle(resp, vehicle)
	return resp
}

// complexReply is the full generative pipeline: vehicle and budget context,
// financing estimate, assembled system instruction, one hosted-model call.
func (e *Engine) complexReply(ctx context.Context, req pkg.SalesRequest, dealership pkg.Dealership, settings pkg.AiPersonalitySettings, history []pkg.ConversationMessage) (*pkg.SalesResponse, error) {
	vehicle, resolution := e.resolveRequestVehicle(ctx, req)

	resp := &pkg.SalesResponse{}
	attachVehicle(resp, vehicle)

	var vehicleContext, paymentContext, inventoryContext string

	budget, hasBudget := inventory.ExtractBudget(req.CustomerMessage)

	if vehicle != nil {
		vehicleContext = describeVehicle(*vehicle)

		summary, err := e.calculator.Calculate(ctx, req.DealershipID, vehicle.PriceCents, vehicle.Year, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("financing calculation failed, omitting payment context")
		} else if summary != nil {
			paymentContext = summary.FormatNarrative()
			resp.PaymentSummary = paymentContext
		}

		similar, err := e.resolver.FindSimilar(ctx, *vehicle, budget)
		if err != nil {
			logger.Warn().Err(err).Msg("similar-vehicle search failed")
		} else {
			resp.Alternatives = inventory.Alternatives(similar)
		}
	} else if resolution.SearchedFor != "" {
		inventoryContext = notInStockAdvisory(resolution)
		resp.Alternatives = inventory.Alternatives(resolution.Similar)
	}

	if hasBudget {
		inBudget, err := e.resolver.FindByBudget(ctx, req.DealershipID, budget)
		if err != nil {
			logger.Warn().Err(err).Msg("budget search failed")
		} else if len(inBudget) > 0 {
			inventoryContext += fmt.Sprintf("\nThe customer mentioned a budget around $%.0f. In that range we have:\n%s",
				float64(budget)/100, inventory.DescribeList(inBudget))
		}
	}

	system := assembler.Build(assembler.BuildInput{
		Dealership:       dealership,
		Now:              e.now(),
		Settings:         settings,
		CustomerName:     req.CustomerName,
		VehicleContext:   vehicleContext,
		PaymentContext:   paymentContext,
		InventoryContext: inventoryContext,
		IsFirstMessage:   len(history) == 0,
	})

	resp.Reply = e.generate(ctx, system, llm.FromHistory(history, e.maxHistoryTurns), req.CustomerMessage)
	return resp, nil
}

// generate performs the single hosted-model call. No retries: a failure here
// is masked by the fixed safe default.
func (e *Engine) generate(ctx context.Context, system string, history []*schema.Message, message string) string {
	if e.hosted == nil {
		return SafeDefaultReply
	}
	reply, err := e.hosted.Generate(ctx, system, history, message)
	if err != nil {
		logger.Warn().Err(err).Msg("hosted model call failed, using safe default reply")
		return SafeDefaultReply
	}
	if strings.TrimSpace(reply) == "" {
		return SafeDefaultReply
	}
	return reply
}

// resolveRequestVehicle resolves via explicit id first, then free-text
// matching. Lookup failures resolve to "no vehicle" rather than erroring.
func (e *Engine) resolveRequestVehicle(ctx context.Context, req pkg.SalesRequest) (*pkg.Vehicle, inventory.Resolution) {
	if req.VehicleID != nil {
		vehicle, err := e.vehicles.GetByID(ctx, *req.VehicleID, req.DealershipID)
		if err != nil {
			logger.Warn().Err(err).Int64("vehicle_id", *req.VehicleID).Msg("vehicle lookup failed")
		} else if vehicle != nil {
			return vehicle, inventory.Resolution{Matched: vehicle}
		}
	}
	resolution, err := e.resolver.ResolveVehicle(ctx, req.DealershipID, req.CustomerMessage)
	if err != nil {
		logger.Warn().Err(err).Msg("vehicle resolution failed")
		return nil, inventory.Resolution{}
	}
	return resolution.Matched, resolution
}

func attachVehicle(resp *pkg.SalesResponse, vehicle *pkg.Vehicle) {
	if vehicle == nil {
		return
	}
	id := vehicle.ID
	resp.VehicleID = &id
	resp.VehicleName = vehicle.DisplayName()
}

func describeVehicle(v pkg.Vehicle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, listed at $%.0f", v.DisplayName(), v.PriceDollars())
	if v.Mileage > 0 {
		fmt.Fprintf(&b, ", %s km", groupThousands(v.Mileage))
	}
	if v.ExteriorColor != "" {
		fmt.Fprintf(&b, ", %s", v.ExteriorColor)
	}
	if v.Highlights != "" {
		fmt.Fprintf(&b, ". Highlights: %s", v.Highlights)
	}
	return b.String()
}

// notInStockAdvisory tells the model plainly that the requested vehicle is
// not on the lot, so it cannot pretend otherwise, and lists what is.
func notInStockAdvisory(res inventory.Resolution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The customer asked about a %s, which is NOT currently in stock. Do not claim it is available.\n", res.SearchedFor)
	if len(res.Similar) > 0 {
		b.WriteString("Close alternatives on the lot:\n")
		b.WriteString(inventory.DescribeList(res.Similar))
	}
	return b.String()
}

func vehicleFact(v pkg.Vehicle) string {
	if v.Highlights != "" {
		if i := strings.IndexAny(v.Highlights, ",;"); i > 0 {
			return strings.TrimSpace(v.Highlights[:i])
		}
		return v.Highlights
	}
	if v.Mileage > 0 {
		return fmt.Sprintf("just %s km", groupThousands(v.Mileage))
	}
	return "a full inspection and history report"
}
