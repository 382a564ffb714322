package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-engine/internal/classifier"
	"sales-engine/internal/finance"
	"sales-engine/internal/inventory"
	"sales-engine/internal/llm"
	"sales-engine/pkg"
)

// --- fakes ---------------------------------------------------------------

type fakeStore struct {
	dealership *pkg.Dealership
	settings   *pkg.AiPersonalitySettings
	vehicles   []pkg.Vehicle
	tiers      []pkg.CreditTier
	history    map[string][]pkg.ConversationMessage
}

func (f *fakeStore) GetDealership(_ context.Context, id int64) (*pkg.Dealership, error) {
	if f.dealership != nil && f.dealership.ID == id {
		return f.dealership, nil
	}
	return nil, nil
}

func (f *fakeStore) GetAiSettings(context.Context, int64) (*pkg.AiPersonalitySettings, error) {
	return f.settings, nil
}

func (f *fakeStore) GetHistory(_ context.Context, _ int64, conversationID string) ([]pkg.ConversationMessage, error) {
	return f.history[conversationID], nil
}

func (f *fakeStore) GetByID(_ context.Context, id, dealershipID int64) (*pkg.Vehicle, error) {
	for _, v := range f.vehicles {
		if v.ID == id && v.DealershipID == dealershipID {
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) QueryByMakeYear(_ context.Context, dealershipID int64, mk string, minYear, maxYear, limit int) ([]pkg.Vehicle, error) {
	var out []pkg.Vehicle
	for _, v := range f.vehicles {
		if v.DealershipID != dealershipID {
			continue
		}
		if mk != "" && v.Make != mk {
			continue
		}
		if minYear != 0 && v.Year < minYear {
			continue
		}
		if maxYear != 0 && v.Year > maxYear {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) QueryByPriceRange(_ context.Context, dealershipID int64, minCents, maxCents int64, limit int) ([]pkg.Vehicle, error) {
	var out []pkg.Vehicle
	for _, v := range f.vehicles {
		if v.DealershipID != dealershipID || v.PriceCents < minCents || v.PriceCents > maxCents {
			continue
		}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) CreditTiers(context.Context, int64) ([]pkg.CreditTier, error) { return f.tiers, nil }
func (f *fakeStore) TermRules(context.Context, int64) ([]pkg.ModelYearTermRule, error) {
	return nil, nil
}
func (f *fakeStore) ActiveFees(context.Context, int64) ([]pkg.DealershipFee, error) {
	return nil, nil
}

type fakeChat struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastMsg    string
	lastHist   []*schema.Message
}

func (f *fakeChat) Generate(_ context.Context, system string, history []*schema.Message, msg string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastHist = history
	f.lastMsg = msg
	return f.reply, f.err
}

// --- setup ---------------------------------------------------------------

func testStore() *fakeStore {
	return &fakeStore{
		dealership: &pkg.Dealership{ID: 1, Name: "Northside Auto", City: "Calgary", Phone: "403-555-0100", Timezone: "America/Edmonton"},
		vehicles: []pkg.Vehicle{
			{ID: 10, DealershipID: 1, Year: 2021, Make: "Honda", Model: "Civic", Trim: "EX", PriceCents: 2600000, Mileage: 41250, ExteriorColor: "white", Highlights: "one owner, sunroof, carplay"},
			{ID: 11, DealershipID: 1, Year: 2020, Make: "Honda", Model: "Accord", PriceCents: 2900000, Mileage: 60000},
			{ID: 12, DealershipID: 1, Year: 2019, Make: "Toyota", Model: "Corolla", PriceCents: 1900000, Mileage: 85000},
		},
		tiers: []pkg.CreditTier{
			{Name: "Good", MinScore: 680, MaxScore: 749, AnnualRateBps: 600, IsActive: true},
		},
		history: map[string][]pkg.ConversationMessage{},
	}
}

func testEngine(store *fakeStore, hosted *fakeChat) *Engine {
	return New(Options{
		Classifier:  classifier.New(nil, chatOrNil(hosted), 0),
		Resolver:    inventory.NewResolver(store),
		Calculator:  finance.NewCalculator(store),
		Vehicles:    store,
		Dealerships: store,
		History:     store,
		Hosted:      chatOrNil(hosted),
		Now:         func() time.Time { return time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC) },
	})
}

// chatOrNil avoids the classic non-nil interface wrapping a nil pointer.
func chatOrNil(f *fakeChat) llm.Chat {
	if f == nil {
		return nil
	}
	return f
}

// --- tests ---------------------------------------------------------------

func TestObjectionOverrideSubstitution(t *testing.T) {
	store := testStore()
	store.settings = &pkg.AiPersonalitySettings{
		Enabled: true,
		ObjectionOverrides: map[string]string{
			"too_expensive": "I hear you on price. The {{vehicleYear}} {{vehicleModel}} holds value well, and {{dealershipName}} can flex on terms.",
		},
	}
	vehicleID := int64(10)
	e := testEngine(store, nil)

	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		VehicleID:       &vehicleID,
		CustomerMessage: "it's too expensive for me",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "2021")
	assert.Contains(t, resp.Reply, "Civic")
	assert.Contains(t, resp.Reply, "Northside Auto")
	assert.NotContains(t, resp.Reply, "{{")
	assert.NotContains(t, resp.Reply, "}}")
	require.NotNil(t, resp.VehicleID)
	assert.Equal(t, int64(10), *resp.VehicleID)
}

func TestObjectionDefaultTemplateWithoutVehicle(t *testing.T) {
	e := testEngine(testStore(), nil)
	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "my credit is bad unfortunately",
	})
	require.NoError(t, err)
	assert.NotContains(t, resp.Reply, "{{")
	assert.Contains(t, resp.Reply, "Northside Auto")
}

func TestMileageQuestionWithoutVehicleIsAgnostic(t *testing.T) {
	e := testEngine(testStore(), nil)
	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "what's the mileage",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "which vehicle")
	assert.Nil(t, resp.VehicleID)
}

func TestMileageQuestionWithVehicle(t *testing.T) {
	store := testStore()
	vehicleID := int64(10)
	e := testEngine(store, nil)
	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		VehicleID:       &vehicleID,
		CustomerMessage: "what's the mileage",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "41,250 km")
	assert.Contains(t, resp.Reply, "2021 Honda Civic EX")
}

func TestPriceQuestionResolvesVehicleFromText(t *testing.T) {
	e := testEngine(testStore(), nil)
	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "how much is the 2021 honda?",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Reply, "$26000")
	require.NotNil(t, resp.VehicleID)
}

func TestComplexBranchCallsHostedModel(t *testing.T) {
	hosted := &fakeChat{reply: "Great question! The Civic's hybrid trim arrives next month."}
	store := testStore()
	e := testEngine(store, hosted)

	vehicleID := int64(10)
	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		VehicleID:       &vehicleID,
		CustomerMessage: "can you compare this against the hybrid version coming out",
		CustomerName:    "Dana",
	})
	require.NoError(t, err)
	assert.Equal(t, hosted.reply, resp.Reply)
	// System instruction carries vehicle and financing context.
	assert.Contains(t, hosted.lastSystem, "2021 Honda Civic EX")
	assert.Contains(t, hosted.lastSystem, "Estimated financing")
	assert.NotEmpty(t, resp.PaymentSummary)
}

func TestComplexBranchSafeDefaultOnModelFailure(t *testing.T) {
	hosted := &fakeChat{err: errors.New("api down")}
	e := testEngine(testStore(), hosted)

	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "so tell me about how trade valuations work here exactly",
	})
	require.NoError(t, err)
	assert.Equal(t, SafeDefaultReply, resp.Reply)
}

func TestComplexBranchSafeDefaultOnEmptyReply(t *testing.T) {
	hosted := &fakeChat{reply: "   "}
	e := testEngine(testStore(), hosted)

	resp, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "mmm let me describe my situation in detail first",
	})
	require.NoError(t, err)
	assert.Equal(t, SafeDefaultReply, resp.Reply)
}

func TestNotInStockAdvisory(t *testing.T) {
	hosted := &fakeChat{reply: "We don't have that one, but here is what's close."}
	store := testStore()
	e := testEngine(store, hosted)

	_, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		CustomerMessage: "is the 2022 mazda cx-5 still available, and would it suit winter driving",
	})
	require.NoError(t, err)
	assert.Contains(t, hosted.lastSystem, "NOT currently in stock")
}

func TestHistoryWindowCappedAt20Turns(t *testing.T) {
	hosted := &fakeChat{reply: "ok"}
	store := testStore()
	var turns []pkg.ConversationMessage
	for i := 0; i < 30; i++ {
		turns = append(turns, pkg.ConversationMessage{Role: pkg.RoleCustomer, Content: "ping"})
	}
	store.history["c1"] = turns
	e := testEngine(store, hosted)

	_, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    1,
		ConversationID:  "c1",
		CustomerMessage: "one more thing I keep wondering about here",
	})
	require.NoError(t, err)
	assert.Len(t, hosted.lastHist, 20)
	// Ongoing conversation: no re-greeting.
	assert.Contains(t, hosted.lastSystem, "Do not greet again")
}

func TestMissingDealershipIsFatal(t *testing.T) {
	e := testEngine(testStore(), nil)
	_, err := e.GenerateSalesResponse(context.Background(), pkg.SalesRequest{
		DealershipID:    99,
		CustomerMessage: "hello",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGenerateFollowUp(t *testing.T) {
	hosted := &fakeChat{reply: "Hey Dana, still thinking about that Civic? Happy to hold it for a test drive this week."}
	store := testStore()
	e := testEngine(store, hosted)

	v := store.vehicles[0]
	out := e.GenerateFollowUp(context.Background(), FollowUpOptions{
		Dealership:   *store.dealership,
		CustomerName: "Dana",
		Vehicle:      &v,
		DaysSince:    3,
	})
	assert.Equal(t, hosted.reply, out)
	assert.Contains(t, hosted.lastMsg, "Dana")
	assert.Contains(t, hosted.lastMsg, "2021 Honda Civic EX")

	hosted.err = errors.New("down")
	out = e.GenerateFollowUp(context.Background(), FollowUpOptions{Dealership: *store.dealership})
	assert.Equal(t, SafeDefaultReply, out)
}

func TestBuiltInObjectionTemplatesAreValid(t *testing.T) {
	for key, tmpl := range defaultObjectionTemplates {
		assert.NoError(t, ValidateTemplate(tmpl), "template for %s", key)
		rendered := RenderTemplate(tmpl, nil)
		assert.False(t, strings.Contains(rendered, "{{"), "template for %s leaks syntax", key)
	}
}
