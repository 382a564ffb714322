package engine

import (
	"context"
	"fmt"
	"strings"

	"sales-engine/internal/llm"
	"sales-engine/pkg"
)

// FollowUpOptions configures a cold-conversation nudge.
type FollowUpOptions struct {
	Dealership   pkg.Dealership
	CustomerName string
	Vehicle      *pkg.Vehicle
	DaysSince    int
	History      []pkg.ConversationMessage
}

const followUpSystem = `You write short follow-up text messages for a car dealership.
The customer went quiet mid-conversation. Write one friendly, low-pressure
message (1-2 sentences) nudging them to pick the conversation back up.
Do not apologize, do not sound desperate, and do not invent offers.`

// GenerateFollowUp produces a re-engagement message with a single hosted
// call and no classification cascade. Failures return the safe default.
func (e *Engine) GenerateFollowUp(ctx context.Context, opts FollowUpOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dealership: %s.", opts.Dealership.Name)
	if opts.CustomerName != "" {
		fmt.Fprintf(&b, " Customer: %s.", opts.CustomerName)
	}
	if opts.Vehicle != nil {
		fmt.Fprintf(&b, " They were asking about the %s ($%.0f).", opts.Vehicle.DisplayName(), opts.Vehicle.PriceDollars())
	}
	if opts.DaysSince > 0 {
		fmt.Fprintf(&b, " Their last message was %d days ago.", opts.DaysSince)
	}
	b.WriteString(" Write the follow-up message now.")

	return e.generate(ctx, followUpSystem, llm.FromHistory(opts.History, e.maxHistoryTurns), b.String())
}
