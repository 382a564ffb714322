package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyObjections(t *testing.T) {
	cases := []struct {
		message string
		key     string
	}{
		{"it's too expensive for me", ObjTooExpensive},
		{"I can't afford that right now", ObjTooExpensive},
		{"that is out of my price range", ObjTooExpensive},
		{"I need some time to think about it", ObjNeedToThink},
		{"let me sleep on it", ObjNeedToThink},
		{"my credit score is bad, will that be a problem", ObjBadCredit},
		{"I have to talk with my wife first", ObjConsultPartner},
		{"need to run it by my partner", ObjConsultPartner},
		{"I found it cheaper for less at another dealer", ObjFoundCheaper},
		{"saw the same cheaper online", ObjFoundCheaper},
		{"just browsing for now thanks", ObjNotReady},
		{"I'm not ready to buy yet", ObjNotReady},
		{"I need to sell my car first", ObjSellCurrentFirst},
	}
	for _, tc := range cases {
		m := Classify(tc.message)
		assert.Equal(t, tc.key, m.Objection, "message: %q", tc.message)
	}
}

func TestClassifyQuestions(t *testing.T) {
	cases := []struct {
		message string
		key     string
	}{
		{"how much is this one?", QPrice},
		{"what's the price on the civic", QPrice},
		{"what colours does it come in", QColor},
		{"does it have heated seats", QFeatures},
		{"what time do you close tonight", QHours},
		{"do you take my car in trade", QTradeIn},
		{"is there any warranty left", QWarranty},
		{"what would monthly payments look like", QFinancing},
		{"what's the mileage", QMileage},
		{"any accidents on the carfax", QCondition},
	}
	for _, tc := range cases {
		m := Classify(tc.message)
		assert.Equal(t, tc.key, m.Question, "message: %q", tc.message)
	}
}

// A message carrying both an objection and a question must report both keys;
// callers rely on the objection being checked first.
func TestObjectionAndQuestionBothMatch(t *testing.T) {
	m := Classify("it's too expensive, what's the price with financing?")
	assert.Equal(t, ObjTooExpensive, m.Objection)
	assert.Equal(t, QPrice, m.Question)
}

func TestNoMatch(t *testing.T) {
	m := Classify("tell me more about this vehicle's history and why it was traded in")
	assert.Empty(t, m.Objection)
	// "condition"-adjacent words must not fire on unrelated text.
	m = Classify("hello there")
	assert.Empty(t, m.Objection)
	assert.Empty(t, m.Question)
}

func TestFirstObjectionWins(t *testing.T) {
	// Matches both too_expensive and need_to_think; table order decides.
	m := Classify("too expensive, let me think it over")
	assert.Equal(t, ObjTooExpensive, m.Objection)
}

func TestKeyOrder(t *testing.T) {
	assert.Equal(t, []string{
		ObjTooExpensive, ObjNeedToThink, ObjBadCredit, ObjConsultPartner,
		ObjFoundCheaper, ObjNotReady, ObjSellCurrentFirst,
	}, ObjectionKeys())
	assert.Equal(t, []string{
		QPrice, QColor, QFeatures, QHours, QTradeIn,
		QWarranty, QFinancing, QMileage, QCondition,
	}, QuestionKeys())
}
