package core

import (
	"errors"
	"strings"
	"time"
)

const (
	RolloverNone    RolloverMode = "NONE"
	RolloverSurplus RolloverMode = "SURPLUS"
	RolloverDeficit RolloverMode = "DEFICIT"
	RolloverBoth    RolloverMode = "BOTH"

	KindSubstring RuleKind = "SUBSTRING"
	KindRegex     RuleKind = "REGEX"

	Monthly Period = "MONTHLY"
	Weekly  Period = "WEEKLY"
	Yearly  Period = "YEARLY"
)

type (
	RolloverMode string
	RuleKind     string
	Period       string

	// Expense is a single transaction as received from the store.
	// Amount stays a string: malformed values are kept for display and
	// count as zero in aggregates. Ver and Author belong to the
	// replication layer and are opaque here.
	Expense struct {
		ID        string
		Payer     string
		Category  string
		Amount    string
		Currency  string
		Note      string
		Timestamp time.Time
		Deleted   bool
		Ver       string
		Author    string
	}

	// Budget is a monthly cap for one category. The store keeps at most
	// one live budget per category (upsert replaces by category).
	Budget struct {
		ID           string
		Category     string
		MonthlyLimit string
		Currency     string
		RolloverMode RolloverMode
		RolloverCap  string
		Deleted      bool
		Ver          string
		Author       string
	}

	// FxRate is "units of Code per one unit of the base currency".
	// The base currency itself never appears in the table.
	FxRate struct {
		Code    string
		PerBase string
		Deleted bool
		Ver     string
		Author  string
	}

	// Rule suggests a category for uncategorized transactions.
	// Evaluation order is the snapshot order.
	Rule struct {
		ID       string
		Name     string
		Kind     RuleKind
		Pattern  string
		Category string
		Active   bool
		Deleted  bool
		Ver      string
		Author   string
	}

	Goal struct {
		ID       string
		Name     string
		Target   string
		Currency string
		Due      time.Time
		Deleted  bool
		Ver      string
		Author   string
	}

	// RecurringTemplate describes a transaction an external scheduler
	// materializes on due dates. Only the fields relevant to Period are
	// meaningful: Day for MONTHLY, Weekday (1=Mon..7=Sun) for WEEKLY,
	// Day+Month for YEARLY.
	RecurringTemplate struct {
		ID       string
		Name     string
		Period   Period
		Day      int
		Weekday  int
		Month    int
		Amount   string
		Currency string
		Category string
		Note     string
		Active   bool
		Deleted  bool
		Ver      string
		Author   string
	}

	// Snapshot is the full, already-merged state pushed by the store.
	// It is replaced wholesale and never mutated in place.
	Snapshot struct {
		Expenses           []Expense
		Budgets            []Budget
		FxRates            []FxRate
		Rules              []Rule
		Goals              []Goal
		RecurringTemplates []RecurringTemplate
	}
)

var (
	ErrMissingPayer    = errors.New("missing payer")
	ErrMissingAmount   = errors.New("missing amount")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingLimit    = errors.New("missing monthly limit")
	ErrMissingCode     = errors.New("missing currency code")
	ErrMissingRate     = errors.New("missing rate")
	ErrMissingName     = errors.New("missing name")
	ErrMissingPattern  = errors.New("missing pattern")
	ErrMissingTarget   = errors.New("missing target")
	ErrMissingCurrency = errors.New("missing currency")
	ErrInvalidPeriod   = errors.New("invalid period")
)

// NormalizeCurrency upper-cases a currency code for case-insensitive matching.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeRollover maps unknown or blank modes to NONE.
func NormalizeRollover(m RolloverMode) RolloverMode {
	switch RolloverMode(strings.ToUpper(string(m))) {
	case RolloverSurplus:
		return RolloverSurplus
	case RolloverDeficit:
		return RolloverDeficit
	case RolloverBoth:
		return RolloverBoth
	default:
		return RolloverNone
	}
}

// GoalTag is the literal note tag linking an expense to a goal.
// It is the only association between the two record kinds.
func GoalTag(goalID string) string {
	return "#[goal:" + goalID + "]"
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Payer) == "" {
		return ErrMissingPayer
	}
	if strings.TrimSpace(e.Amount) == "" {
		return ErrMissingAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(b.MonthlyLimit) == "" {
		return ErrMissingLimit
	}
	return nil
}

func (r FxRate) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return ErrMissingCode
	}
	if strings.TrimSpace(r.PerBase) == "" {
		return ErrMissingRate
	}
	return nil
}

func (r Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrMissingPattern
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrMissingCategory
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(g.Target) == "" {
		return ErrMissingTarget
	}
	if strings.TrimSpace(g.Currency) == "" {
		return ErrMissingCurrency
	}
	return nil
}

// Validate checks the fields required before a template upsert is
// accepted: name, a known period and an amount. Everything else is the
// scheduler's business.
func (t RecurringTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrMissingName
	}
	switch t.Period {
	case Monthly, Weekly, Yearly:
	default:
		return ErrInvalidPeriod
	}
	if strings.TrimSpace(t.Amount) == "" {
		return ErrMissingAmount
	}
	return nil
}
