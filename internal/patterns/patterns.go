// Package patterns provides deterministic regex classification of customer
// objections and simple questions. No network or storage access.
package patterns

import "regexp"

// Objection keys, in evaluation order.
const (
	ObjTooExpensive     = "too_expensive"
	ObjNeedToThink      = "need_to_think"
	ObjBadCredit        = "bad_credit"
	ObjConsultPartner   = "consult_partner"
	ObjFoundCheaper     = "found_cheaper"
	ObjNotReady         = "not_ready"
	ObjSellCurrentFirst = "sell_current_first"
)

// Question keys, in evaluation order.
const (
	QPrice     = "price"
	QColor     = "color"
	QFeatures  = "features"
	QHours     = "hours"
	QTradeIn   = "trade_in"
	QWarranty  = "warranty"
	QFinancing = "financing"
	QMileage   = "mileage"
	QCondition = "condition"
)

type pattern struct {
	key string
	re  *regexp.Regexp
}

// Objection patterns are evaluated strictly before question patterns:
// expressed hesitation takes precedence over a literal question. Within each
// table the first match wins, so order is load-bearing.
var objectionPatterns = []pattern{
	{ObjTooExpensive, regexp.MustCompile(`(?i)\btoo (expensive|much|pricey|high)\b|can'?t afford|cannot afford|out of (my|our) (price )?range|over (my|our) budget|price is (too )?(high|steep)`)},
	{ObjNeedToThink, regexp.MustCompile(`(?i)think (it|this) over|need (some )?time to think|let me think|have to think|sleep on it`)},
	{ObjBadCredit, regexp.MustCompile(`(?i)\bbad credit\b|poor credit|credit (score )?is (bad|low|poor|terrible)|no credit|credit (isn'?t|is not) (good|great)`)},
	{ObjConsultPartner, regexp.MustCompile(`(?i)(talk|check|discuss|run it) (to|with|by) my (wife|husband|partner|spouse|family|parents)|ask my (wife|husband|partner|spouse)`)},
	{ObjFoundCheaper, regexp.MustCompile(`(?i)(found|saw|seen) (it|one|the same) (cheaper|for less)|cheaper (elsewhere|somewhere else|at another)|better (price|deal) (at|from|elsewhere)`)},
	{ObjNotReady, regexp.MustCompile(`(?i)not ready to (buy|purchase|commit)|just (looking|browsing)|only (looking|browsing)|window shopping`)},
	{ObjSellCurrentFirst, regexp.MustCompile(`(?i)sell (my|our) (car|truck|suv|van|vehicle) first|need to sell (my|our)|have to sell (my|our)`)},
}

var questionPatterns = []pattern{
	{QPrice, regexp.MustCompile(`(?i)how much|what('?s| is) the price|\bprice\b.*\?|asking price|what (does|would) it cost|best price`)},
	{QColor, regexp.MustCompile(`(?i)what colou?rs?\b|colou?rs? (available|do you have|does it come)|come in (black|white|red|blue|grey|gray|silver)`)},
	{QFeatures, regexp.MustCompile(`(?i)\bfeatures?\b|\bspecs?\b|\boptions\b|equipped with|does it (have|come with)|sunroof|leather|navigation|heated seats|apple carplay|android auto`)},
	{QHours, regexp.MustCompile(`(?i)\bhours\b|open (today|tomorrow|late|until)|what time (do you|are you)|when (do you|are you) (open|close)|open on (saturday|sunday|weekend)`)},
	{QTradeIn, regexp.MustCompile(`(?i)trade[- ]?in|trade my|value (of|for) my (car|truck|suv|vehicle)|take my (car|truck) in trade`)},
	{QWarranty, regexp.MustCompile(`(?i)\bwarrant(y|ies|ied)\b|extended coverage|powertrain coverage`)},
	{QFinancing, regexp.MustCompile(`(?i)financ(e|ing)|monthly payments?|\bpayments?\b|interest rate|\bapr\b|down payment|\blease\b|\bloan\b`)},
	{QMileage, regexp.MustCompile(`(?i)\bmileage\b|how many (kms?|kilometers|kilometres|miles)|\bodometer\b|kms? on (it|the)`)},
	{QCondition, regexp.MustCompile(`(?i)\bcondition\b|accidents?\b|\bdamage\b|clean title|carfax|one owner|\brust\b`)},
}

// Match is the result of classifying one message. Empty keys mean no match.
type Match struct {
	Objection string
	Question  string
}

// Classify runs the objection table, then the question table, against the
// message and returns the first matching key from each.
func Classify(message string) Match {
	var m Match
	for _, p := range objectionPatterns {
		if p.re.MatchString(message) {
			m.Objection = p.key
			break
		}
	}
	for _, p := range questionPatterns {
		if p.re.MatchString(message) {
			m.Question = p.key
			break
		}
	}
	return m
}

// ObjectionKeys returns the objection keys in evaluation order.
func ObjectionKeys() []string {
	keys := make([]string, len(objectionPatterns))
	for i, p := range objectionPatterns {
		keys[i] = p.key
	}
	return keys
}

// QuestionKeys returns the question keys in evaluation order.
func QuestionKeys() []string {
	keys := make([]string, len(questionPatterns))
	for i, p := range questionPatterns {
		keys[i] = p.key
	}
	return keys
}
