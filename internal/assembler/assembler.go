// Package assembler composes the system instruction handed to the hosted
// model. It emits instructions only, never conversation history; history
// windowing is the caller's job.
package assembler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sales-engine/pkg"
)

// Tone and length keys. Unknown configured values resolve to the defaults.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneCasual       = "casual"
	ToneEnthusiastic = "enthusiastic"

	LengthShort    = "short"
	LengthMedium   = "medium"
	LengthDetailed = "detailed"
)

var toneInstructions = map[string]string{
	ToneProfessional: "Keep a professional, courteous tone throughout.",
	ToneFriendly:     "Keep a warm, friendly tone, like a helpful neighbour who knows cars.",
	ToneCasual:       "Keep it casual and conversational, the way you'd text a friend.",
	ToneEnthusiastic: "Be upbeat and enthusiastic about the vehicles without overselling.",
}

var lengthInstructions = map[string]string{
	LengthShort:    "Keep replies to 2-3 sentences. This is a chat, not an email.",
	LengthMedium:   "Keep replies to one short paragraph, 3-5 sentences.",
	LengthDetailed: "You may write up to two short paragraphs when the question warrants it.",
}

// defaultEscalation names the concrete situations that must be handed to a
// human instead of answered.
const defaultEscalation = `Escalate to a human team member instead of answering when the customer:
- asks for a specific trade-in valuation number
- asks about financing through bankruptcy or a consumer proposal
- raises a complaint about the dealership or a past purchase
- requests legal or warranty documents
- explicitly asks to speak with a person`

// ResolveSettings is total: it always returns usable settings, substituting
// built-in defaults field by field so downstream code never branches on
// presence.
func ResolveSettings(stored *pkg.AiPersonalitySettings) pkg.AiPersonalitySettings {
	var s pkg.AiPersonalitySettings
	if stored != nil {
		s = *stored
	}
	if _, ok := toneInstructions[s.Tone]; !ok {
		s.Tone = ToneProfessional
	}
	if _, ok := lengthInstructions[s.ResponseLength]; !ok {
		s.ResponseLength = LengthShort
	}
	if stored == nil {
		s.Enabled = true
	}
	if s.ObjectionOverrides == nil {
		s.ObjectionOverrides = map[string]string{}
	}
	return s
}

// BuildInput carries everything the assembler may mention. Optional context
// strings are included only when non-empty.
type BuildInput struct {
	Dealership       pkg.Dealership
	Now              time.Time
	Settings         pkg.AiPersonalitySettings // must be resolved
	CustomerName     string
	VehicleContext   string
	PaymentContext   string
	InventoryContext string
	IsFirstMessage   bool
}

// Build deterministically composes the system instruction from labeled
// sections.
func Build(in BuildInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a sales assistant for %s", in.Dealership.Name)
	if in.Dealership.City != "" {
		fmt.Fprintf(&b, " in %s", in.Dealership.City)
	}
	b.WriteString(", replying to a customer text message.\n\n")

	// Exact current time, dealership-local, so the model never invents dates.
	loc, err := time.LoadLocation(in.Dealership.Timezone)
	if err != nil {
		loc = time.UTC
	}
	fmt.Fprintf(&b, "Current date and time: %s\n", in.Now.In(loc).Format("Monday, January 2, 2006 at 3:04 PM MST"))

	b.WriteString(toneInstructions[in.Settings.Tone] + "\n")
	b.WriteString(lengthInstructions[in.Settings.ResponseLength] + "\n")

	if in.Settings.Personality != "" {
		b.WriteString("\nPersonality:\n" + in.Settings.Personality + "\n")
	}
	if len(in.Settings.AlwaysInclude) > 0 {
		b.WriteString("\nAlways mention when relevant:\n")
		for _, item := range in.Settings.AlwaysInclude {
			b.WriteString("- " + item + "\n")
		}
	}
	if len(in.Settings.NeverSay) > 0 {
		b.WriteString("\nNever say:\n")
		for _, item := range in.Settings.NeverSay {
			b.WriteString("- " + item + "\n")
		}
	}
	if len(in.Settings.ObjectionOverrides) > 0 {
		b.WriteString("\nIf the customer raises one of these, respond along these lines:\n")
		for _, key := range sortedKeys(in.Settings.ObjectionOverrides) {
			fmt.Fprintf(&b, "- %s -> %s\n", key, in.Settings.ObjectionOverrides[key])
		}
	}
	if in.Settings.BusinessHours != "" {
		b.WriteString("\nBusiness hours:\n" + in.Settings.BusinessHours + "\n")
	}

	b.WriteString("\n")
	if in.Settings.EscalationRules != "" {
		b.WriteString(in.Settings.EscalationRules + "\n")
	} else {
		b.WriteString(defaultEscalation + "\n")
	}

	if len(in.Settings.CustomCallsToAction) > 0 {
		b.WriteString("\nPreferred calls to action:\n")
		for _, cta := range in.Settings.CustomCallsToAction {
			b.WriteString("- " + cta + "\n")
		}
	}
	if in.Settings.SampleConversations != "" {
		b.WriteString("\nExample conversations:\n" + in.Settings.SampleConversations + "\n")
	}

	if in.VehicleContext != "" {
		b.WriteString("\nVehicle under discussion:\n" + in.VehicleContext + "\n")
	}
	if in.PaymentContext != "" {
		b.WriteString("\nFinancing estimate (share on request, always call it an estimate):\n" + in.PaymentContext + "\n")
	}
	if in.InventoryContext != "" {
		b.WriteString("\nInventory notes:\n" + in.InventoryContext + "\n")
	}
	if in.CustomerName != "" {
		fmt.Fprintf(&b, "\nThe customer's name is %s.\n", in.CustomerName)
	}

	b.WriteString("\n")
	if in.IsFirstMessage {
		if in.Settings.GreetingTemplate != "" {
			b.WriteString("This is the first reply in the conversation. Open with this greeting, adapted naturally: " + in.Settings.GreetingTemplate + "\n")
		} else {
			b.WriteString("This is the first reply in the conversation. Greet the customer and reference the specific vehicle they asked about.\n")
		}
	} else {
		b.WriteString("This conversation is already underway. Do not greet again and do not repeat information already given.\n")
	}

	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
