package pkg

import (
	"fmt"
	"strings"
	"time"
)

// Intent is the verdict category produced by the intent classifier.
type Intent string

const (
	IntentObjection      Intent = "objection"
	IntentSimpleQuestion Intent = "simple_question"
	IntentComplex        Intent = "complex"
)

// ClassificationVerdict is the single result of classifying one inbound
// message. Produced fresh per message, never persisted.
type ClassificationVerdict struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Conversation message roles as stored in history.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
)

// ConversationMessage is one turn of a customer/agent conversation.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SalesRequest is the caller-owned input to the response engine. The engine
// treats it as read-only.
type SalesRequest struct {
	DealershipID   int64                 `json:"dealership_id"`
	VehicleID      *int64                `json:"vehicle_id,omitempty"`
	ConversationID string                `json:"conversation_id,omitempty"`
	CustomerMessage string               `json:"customer_message"`
	CustomerName   string                `json:"customer_name,omitempty"`
	MessageHistory []ConversationMessage `json:"message_history,omitempty"`
}

// AlternativeVehicle is a compact vehicle reference offered alongside a reply.
type AlternativeVehicle struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

// SalesResponse is the structured output of one engine invocation.
type SalesResponse struct {
	Reply          string               `json:"reply"`
	VehicleID      *int64               `json:"vehicle_id,omitempty"`
	VehicleName    string               `json:"vehicle_name,omitempty"`
	PaymentSummary string               `json:"payment_summary,omitempty"`
	Alternatives   []AlternativeVehicle `json:"alternatives,omitempty"`
}

// Vehicle is an inventory record. Owned by inventory storage; the engine only
// reads it. Prices are integer cents.
type Vehicle struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	DealershipID  int64     `gorm:"index" json:"dealership_id"`
	Year          int       `json:"year"`
	Make          string    `json:"make"`
	Model         string    `json:"model"`
	Trim          string    `json:"trim"`
	PriceCents    int64     `json:"price_cents"`
	Mileage       int       `json:"mileage"`
	ExteriorColor string    `json:"exterior_color"`
	InteriorColor string    `json:"interior_color"`
	Highlights    string    `json:"highlights"`
	CreatedAt     time.Time `json:"created_at"`
}

// DisplayName renders the customer-facing name, e.g. "2021 Honda Civic LX".
func (v Vehicle) DisplayName() string {
	parts := []string{fmt.Sprintf("%d", v.Year), v.Make, v.Model}
	if v.Trim != "" {
		parts = append(parts, v.Trim)
	}
	return strings.Join(parts, " ")
}

// PriceDollars returns the listed price in whole dollars for display.
func (v Vehicle) PriceDollars() float64 {
	return float64(v.PriceCents) / 100
}

// Dealership holds the store identity and contact fields the engine needs for
// prompt assembly and template substitution.
type Dealership struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
	Timezone   string `json:"timezone"`
}

// CreditTier maps a credit score band to an annual interest rate in basis
// points. Ranges are expected to be disjoint but the calculator tolerates
// gaps.
type CreditTier struct {
	ID            int64  `gorm:"primaryKey" json:"id"`
	DealershipID  int64  `gorm:"index" json:"dealership_id"`
	Name          string `json:"name"`
	MinScore      int    `json:"min_score"`
	MaxScore      int    `json:"max_score"`
	AnnualRateBps int    `json:"annual_rate_bps"`
	IsActive      bool   `json:"is_active"`
}

// Contains reports whether the score falls inside this tier's band.
func (t CreditTier) Contains(score int) bool {
	return score >= t.MinScore && score <= t.MaxScore
}

// ModelYearTermRule restricts available financing terms by model year. The
// first matching rule wins.
type ModelYearTermRule struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	DealershipID int64  `gorm:"index" json:"dealership_id"`
	MinModelYear int    `json:"min_model_year"`
	MaxModelYear int    `json:"max_model_year"`
	TermsCSV     string `gorm:"column:terms_csv" json:"terms_csv"`
	IsActive     bool   `json:"is_active"`
}

// Terms parses the stored comma-separated term list, preserving order and
// skipping malformed entries.
func (r ModelYearTermRule) Terms() []int {
	var terms []int
	for _, tok := range strings.Split(r.TermsCSV, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(tok, "%d", &n); err == nil && n > 0 {
			terms = append(terms, n)
		}
	}
	return terms
}

// DealershipFee is a configured fee. Percentage fees hold basis points in
// Amount; flat fees hold cents.
type DealershipFee struct {
	ID               int64  `gorm:"primaryKey" json:"id"`
	DealershipID     int64  `gorm:"index" json:"dealership_id"`
	Name             string `json:"name"`
	Amount           int64  `json:"amount"`
	IsPercentage     bool   `json:"is_percentage"`
	IncludeInPayment bool   `json:"include_in_payment"`
	IsActive         bool   `json:"is_active"`
	DisplayOrder     int    `json:"display_order"`
}

// AiPersonalitySettings is the dealership-scoped reply personality. Treated
// as immutable input for the duration of one request; missing stored settings
// are resolved to defaults before use.
type AiPersonalitySettings struct {
	DealershipID        int64             `gorm:"primaryKey" json:"dealership_id"`
	Tone                string            `json:"tone"`
	ResponseLength      string            `json:"response_length"`
	Personality         string            `json:"personality"`
	AlwaysInclude       []string          `gorm:"serializer:json" json:"always_include"`
	NeverSay            []string          `gorm:"serializer:json" json:"never_say"`
	ObjectionOverrides  map[string]string `gorm:"serializer:json" json:"objection_overrides"`
	BusinessHours       string            `json:"business_hours"`
	EscalationRules     string            `json:"escalation_rules"`
	CustomCallsToAction []string          `gorm:"serializer:json" json:"custom_calls_to_action"`
	SampleConversations string            `json:"sample_conversations"`
	GreetingTemplate    string            `json:"greeting_template"`
	Enabled             bool              `json:"enabled"`
}
