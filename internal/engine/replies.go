package engine

import (
	"fmt"

	"sales-engine/internal/patterns"
	"sales-engine/pkg"
)

// Built-in objection reply templates, used when the dealership has not
// configured an override for the matched key.
var defaultObjectionTemplates = map[string]string{
	patterns.ObjTooExpensive:     "Totally understand, {{customerName}} - price matters. The {{vehicleYear}} {{vehicleModel}} is priced against the market, and we have flexible financing that can bring the monthly number down. Want me to run a quick payment estimate?",
	patterns.ObjNeedToThink:      "Of course, take the time you need. The {{vehicleYear}} {{vehicleModel}} has been getting attention, so I'll let you know if anything changes with it. Is there anything I can clarify to help you decide?",
	patterns.ObjBadCredit:        "No worries - we work with all credit situations at {{dealershipName}}, and approvals happen every day. A quick application tells us exactly what's possible. Want me to send the link?",
	patterns.ObjConsultPartner:   "Makes sense - it's a big decision. Happy to send over the details on the {{vehicleYear}} {{vehicleModel}} so you have everything to share. Would a short visit together work this week?",
	patterns.ObjFoundCheaper:     "Good to know - if you can share the listing, we'll take a look. With {{dealershipName}} you're also getting {{vehicleFact}}, and we'd rather earn your business than lose it over price. Fair?",
	patterns.ObjNotReady:         "No pressure at all - browsing is how every good purchase starts. I'll keep you posted on the {{vehicleYear}} {{vehicleModel}} in the meantime. What would need to be true for the timing to feel right?",
	patterns.ObjSellCurrentFirst: "That's common - and we can usually simplify it. {{dealershipName}} can appraise your current vehicle and factor it in as a trade, so you skip the private-sale hassle. Want a quick trade estimate?",
}

// answerQuestion composes the fixed reply for a matched simple-question key.
// Every key has a vehicle-specific and a vehicle-agnostic phrasing; selection
// depends solely on whether a vehicle was resolved.
func answerQuestion(key string, v *pkg.Vehicle, d pkg.Dealership, businessHours string) string {
	if v != nil {
		switch key {
		case patterns.QPrice:
			return fmt.Sprintf("The %s is listed at $%.0f. Would you like me to put together a financing estimate, or are you thinking about a trade-in as well?", v.DisplayName(), v.PriceDollars())
		case patterns.QColor:
			if v.ExteriorColor != "" {
				return fmt.Sprintf("The %s is %s outside%s. Would you like a few photos?", v.DisplayName(), v.ExteriorColor, interiorClause(v))
			}
			return fmt.Sprintf("Let me confirm the exact colours on the %s and send you photos. Any colour you're hoping for?", v.DisplayName())
		case patterns.QFeatures:
			if v.Highlights != "" {
				return fmt.Sprintf("Highlights on the %s: %s. Anything specific you want me to check?", v.DisplayName(), v.Highlights)
			}
			return fmt.Sprintf("Happy to run through the %s's full equipment list - anything specific you're looking for, like heated seats or navigation?", v.DisplayName())
		case patterns.QHours:
			return hoursReply(d, businessHours)
		case patterns.QTradeIn:
			return fmt.Sprintf("We take trades on the %s, absolutely. If you share the year, make, model and rough mileage of your current vehicle, our team can work up a value.", v.DisplayName())
		case patterns.QWarranty:
			return fmt.Sprintf("The %s may still carry factory coverage, and we offer extended warranty options on it too. Want me to confirm exactly what's left?", v.DisplayName())
		case patterns.QFinancing:
			return fmt.Sprintf("We can definitely finance the %s - rates depend on term and credit profile, and approvals are quick. Want a payment estimate to start?", v.DisplayName())
		case patterns.QMileage:
			return fmt.Sprintf("The %s has %s on the odometer. Anything else you'd like to know about it?", v.DisplayName(), formatMileage(v.Mileage))
		case patterns.QCondition:
			return fmt.Sprintf("The %s has been through our inspection. I can send the full report and history for it - want me to email that over?", v.DisplayName())
		}
	}

	switch key {
	case patterns.QPrice:
		return "Happy to get you pricing right away - which vehicle were you looking at?"
	case patterns.QColor:
		return "I can check colours for you - which vehicle did you have in mind?"
	case patterns.QFeatures:
		return "Glad to go over features and specs - which vehicle are you asking about?"
	case patterns.QHours:
		return hoursReply(d, businessHours)
	case patterns.QTradeIn:
		return "We take trade-ins on every purchase. Share your current vehicle's year, make, model and rough mileage and our team will work up a value."
	case patterns.QWarranty:
		return "Warranty depends on the vehicle - many still carry factory coverage and we offer extended options. Which one are you asking about?"
	case patterns.QFinancing:
		return "We offer financing across all credit situations, with quick approvals. Which vehicle should I run numbers on?"
	case patterns.QMileage:
		return "Happy to check the mileage for you - which vehicle were you asking about?"
	case patterns.QCondition:
		return "Every vehicle on our lot is inspected, and I can share the history report. Which one would you like details on?"
	}
	return ""
}

func hoursReply(d pkg.Dealership, businessHours string) string {
	if businessHours != "" {
		return fmt.Sprintf("%s is open %s. Want me to set up a time to come by?", d.Name, businessHours)
	}
	if d.Phone != "" {
		return fmt.Sprintf("You can find us at %s, and the fastest way to confirm today's hours is a quick call at %s. Want me to have someone ring you instead?", d.Name, d.Phone)
	}
	return fmt.Sprintf("%s is open most days - want me to confirm today's hours and get back to you?", d.Name)
}

func interiorClause(v *pkg.Vehicle) string {
	if v.InteriorColor != "" {
		return fmt.Sprintf(" with a %s interior", v.InteriorColor)
	}
	return ""
}

func formatMileage(mileage int) string {
	if mileage <= 0 {
		return "low kilometres"
	}
	return fmt.Sprintf("%s km", groupThousands(mileage))
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
