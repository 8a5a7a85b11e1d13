package fraud

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pattern weights. Each check fires independently; the combined score is
// the average of fired weights plus a 10-point bonus per pattern, capped
// at 30 bonus points and 100 total.
const (
	weightUnusualAmount = 75
	weightFrequent      = 60
	weightHighVelocity  = 80
	weightTimePattern   = 40
	weightRoundAmount   = 30

	largeAmountThreshold = 10_000
	frequentWindowCount  = 5
	velocityWindowCount  = 3
	roundAmountUnit      = 1_000
)

const (
	PatternUnusualAmount = "unusual_amount"
	PatternFrequent      = "frequent_transactions"
	PatternHighVelocity  = "high_velocity"
	PatternTimePattern   = "time_pattern"
	PatternRoundAmount   = "round_amount"
)

// Input is a committed transaction seen from the acting account's side.
// BalanceBefore is the account's primary balance immediately before the
// transaction applied. CountLastHour / CountLast10Min include the
// transaction itself.
type Input struct {
	Amount         int64
	BalanceBefore  int64
	CountLastHour  int
	CountLast10Min int
	At             time.Time
}

type Finding struct {
	Type        string
	Weight      int64
	Description string
}

type Result struct {
	AlertType   string
	Score       float64
	Description string
	Findings    []Finding
}

// Evaluate runs every pattern check over one committed transaction. The
// second return is false when nothing fired and no alert should exist.
func Evaluate(input Input) (Result, bool) {
	var findings []Finding

	if input.Amount > largeAmountThreshold || input.Amount*2 > input.BalanceBefore {
		findings = append(findings, Finding{
			Type:        PatternUnusualAmount,
			Weight:      weightUnusualAmount,
			Description: fmt.Sprintf("amount %d exceeds the large-amount threshold or half the prior balance %d", input.Amount, input.BalanceBefore),
		})
	}
	if input.CountLastHour >= frequentWindowCount {
		findings = append(findings, Finding{
			Type:        PatternFrequent,
			Weight:      weightFrequent,
			Description: fmt.Sprintf("%d transactions in the last 60 minutes", input.CountLastHour),
		})
	}
	if input.CountLast10Min >= velocityWindowCount {
		findings = append(findings, Finding{
			Type:        PatternHighVelocity,
			Weight:      weightHighVelocity,
			Description: fmt.Sprintf("%d transactions in the last 10 minutes", input.CountLast10Min),
		})
	}
	if hour := input.At.Hour(); hour == 23 || hour <= 6 {
		findings = append(findings, Finding{
			Type:        PatternTimePattern,
			Weight:      weightTimePattern,
			Description: fmt.Sprintf("transaction at unusual hour %02d", hour),
		})
	}
	if input.Amount > 0 && input.Amount%roundAmountUnit == 0 {
		findings = append(findings, Finding{
			Type:        PatternRoundAmount,
			Weight:      weightRoundAmount,
			Description: fmt.Sprintf("round amount %d", input.Amount),
		})
	}

	if len(findings) == 0 {
		return Result{}, false
	}
	return Result{
		AlertType:   alertType(findings),
		Score:       combinedScore(findings),
		Description: describe(findings),
		Findings:    findings,
	}, true
}

func combinedScore(findings []Finding) float64 {
	sum := decimal.Zero
	for _, finding := range findings {
		sum = sum.Add(decimal.NewFromInt(finding.Weight))
	}
	count := int64(len(findings))
	average := sum.Div(decimal.NewFromInt(count))
	bonus := decimal.NewFromInt(min64(30, 10*count))
	score := average.Add(bonus)
	cap := decimal.NewFromInt(100)
	if score.GreaterThan(cap) {
		score = cap
	}
	value, _ := score.Float64()
	return value
}

func alertType(findings []Finding) string {
	if len(findings) == 1 {
		return findings[0].Type
	}
	return "combined_patterns"
}

func describe(findings []Finding) string {
	if len(findings) == 1 {
		return findings[0].Description
	}
	types := make([]string, 0, len(findings))
	for _, finding := range findings {
		types = append(types, finding.Type)
	}
	return fmt.Sprintf("multiple risk patterns: %s", strings.Join(types, ", "))
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
