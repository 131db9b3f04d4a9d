package storage

import (
	"context"
	"database/sql"
	"time"

	"bilancio/internal/core"
)

// Queries holds the SQL statements for the SQLite backend, one method
// per operation.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const upsertExpense = `
INSERT INTO expenses (id, payer, category, amount, currency, note, ts, deleted, ver, author)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    payer = excluded.payer,
    category = excluded.category,
    amount = excluded.amount,
    currency = excluded.currency,
    note = excluded.note,
    ts = excluded.ts,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertExpense(ctx context.Context, e core.Expense) error {
	_, err := q.db.ExecContext(ctx, upsertExpense,
		e.ID, e.Payer, e.Category, e.Amount, e.Currency, e.Note,
		e.Timestamp.UnixMilli(), boolToInt(e.Deleted), e.Ver, e.Author)
	return err
}

const listExpenses = `
SELECT id, payer, category, amount, currency, note, ts, deleted, ver, author
FROM expenses ORDER BY ts, id
`

func (q *Queries) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var ts int64
		var deleted int
		if err := rows.Scan(&e.ID, &e.Payer, &e.Category, &e.Amount, &e.Currency,
			&e.Note, &ts, &deleted, &e.Ver, &e.Author); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Deleted = deleted != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

const markExpenseDeleted = `UPDATE expenses SET deleted = 1 WHERE id = ?`

func (q *Queries) MarkExpenseDeleted(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markExpenseDeleted, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertBudget = `
INSERT INTO budgets (category, id, monthly_limit, currency, rollover_mode, rollover_cap, deleted, ver, author)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(category) DO UPDATE SET
    id = excluded.id,
    monthly_limit = excluded.monthly_limit,
    currency = excluded.currency,
    rollover_mode = excluded.rollover_mode,
    rollover_cap = excluded.rollover_cap,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := q.db.ExecContext(ctx, upsertBudget,
		b.Category, b.ID, b.MonthlyLimit, b.Currency, string(b.RolloverMode),
		b.RolloverCap, boolToInt(b.Deleted), b.Ver, b.Author)
	return err
}

const listBudgets = `
SELECT category, id, monthly_limit, currency, rollover_mode, rollover_cap, deleted, ver, author
FROM budgets ORDER BY rowid
`

func (q *Queries) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var mode string
		var deleted int
		if err := rows.Scan(&b.Category, &b.ID, &b.MonthlyLimit, &b.Currency,
			&mode, &b.RolloverCap, &deleted, &b.Ver, &b.Author); err != nil {
			return nil, err
		}
		b.RolloverMode = core.RolloverMode(mode)
		b.Deleted = deleted != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

const markBudgetDeleted = `UPDATE budgets SET deleted = 1 WHERE id = ?`

func (q *Queries) MarkBudgetDeleted(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markBudgetDeleted, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertFxRate = `
INSERT INTO fx_rates (code, per_base, deleted, ver, author)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(code) DO UPDATE SET
    per_base = excluded.per_base,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertFxRate(ctx context.Context, r core.FxRate) error {
	_, err := q.db.ExecContext(ctx, upsertFxRate,
		r.Code, r.PerBase, boolToInt(r.Deleted), r.Ver, r.Author)
	return err
}

const listFxRates = `
SELECT code, per_base, deleted, ver, author FROM fx_rates ORDER BY rowid
`

func (q *Queries) ListFxRates(ctx context.Context) ([]core.FxRate, error) {
	rows, err := q.db.QueryContext(ctx, listFxRates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.FxRate
	for rows.Next() {
		var r core.FxRate
		var deleted int
		if err := rows.Scan(&r.Code, &r.PerBase, &deleted, &r.Ver, &r.Author); err != nil {
			return nil, err
		}
		r.Deleted = deleted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

const markFxRateDeleted = `UPDATE fx_rates SET deleted = 1 WHERE code = ?`

func (q *Queries) MarkFxRateDeleted(ctx context.Context, code string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markFxRateDeleted, code)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertRule = `
INSERT INTO rules (id, name, kind, pattern, category, active, deleted, ver, author)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    kind = excluded.kind,
    pattern = excluded.pattern,
    category = excluded.category,
    active = excluded.active,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertRule(ctx context.Context, r core.Rule) error {
	_, err := q.db.ExecContext(ctx, upsertRule,
		r.ID, r.Name, string(r.Kind), r.Pattern, r.Category,
		boolToInt(r.Active), boolToInt(r.Deleted), r.Ver, r.Author)
	return err
}

const listRules = `
SELECT id, name, kind, pattern, category, active, deleted, ver, author
FROM rules ORDER BY rowid
`

func (q *Queries) ListRules(ctx context.Context) ([]core.Rule, error) {
	rows, err := q.db.QueryContext(ctx, listRules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Rule
	for rows.Next() {
		var r core.Rule
		var kind string
		var active, deleted int
		if err := rows.Scan(&r.ID, &r.Name, &kind, &r.Pattern, &r.Category,
			&active, &deleted, &r.Ver, &r.Author); err != nil {
			return nil, err
		}
		r.Kind = core.RuleKind(kind)
		r.Active = active != 0
		r.Deleted = deleted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

const markRuleDeleted = `UPDATE rules SET deleted = 1 WHERE id = ?`

func (q *Queries) MarkRuleDeleted(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markRuleDeleted, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertGoal = `
INSERT INTO goals (id, name, target, currency, due_ts, deleted, ver, author)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    target = excluded.target,
    currency = excluded.currency,
    due_ts = excluded.due_ts,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertGoal(ctx context.Context, g core.Goal) error {
	var due int64
	if !g.Due.IsZero() {
		due = g.Due.UnixMilli()
	}
	_, err := q.db.ExecContext(ctx, upsertGoal,
		g.ID, g.Name, g.Target, g.Currency, due, boolToInt(g.Deleted), g.Ver, g.Author)
	return err
}

const listGoals = `
SELECT id, name, target, currency, due_ts, deleted, ver, author
FROM goals ORDER BY rowid
`

func (q *Queries) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var due int64
		var deleted int
		if err := rows.Scan(&g.ID, &g.Name, &g.Target, &g.Currency,
			&due, &deleted, &g.Ver, &g.Author); err != nil {
			return nil, err
		}
		if due != 0 {
			g.Due = time.UnixMilli(due)
		}
		g.Deleted = deleted != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

const markGoalDeleted = `UPDATE goals SET deleted = 1 WHERE id = ?`

func (q *Queries) MarkGoalDeleted(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markGoalDeleted, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertTemplate = `
INSERT INTO recurring_templates (id, name, period, day, weekday, month, amount, currency, category, note, active, deleted, ver, author)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    period = excluded.period,
    day = excluded.day,
    weekday = excluded.weekday,
    month = excluded.month,
    amount = excluded.amount,
    currency = excluded.currency,
    category = excluded.category,
    note = excluded.note,
    active = excluded.active,
    deleted = excluded.deleted,
    ver = excluded.ver,
    author = excluded.author
`

func (q *Queries) UpsertTemplate(ctx context.Context, t core.RecurringTemplate) error {
	_, err := q.db.ExecContext(ctx, upsertTemplate,
		t.ID, t.Name, string(t.Period), t.Day, t.Weekday, t.Month,
		t.Amount, t.Currency, t.Category, t.Note,
		boolToInt(t.Active), boolToInt(t.Deleted), t.Ver, t.Author)
	return err
}

const listTemplates = `
SELECT id, name, period, day, weekday, month, amount, currency, category, note, active, deleted, ver, author
FROM recurring_templates ORDER BY rowid
`

func (q *Queries) ListTemplates(ctx context.Context) ([]core.RecurringTemplate, error) {
	rows, err := q.db.QueryContext(ctx, listTemplates)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		var t core.RecurringTemplate
		var period string
		var active, deleted int
		if err := rows.Scan(&t.ID, &t.Name, &period, &t.Day, &t.Weekday, &t.Month,
			&t.Amount, &t.Currency, &t.Category, &t.Note,
			&active, &deleted, &t.Ver, &t.Author); err != nil {
			return nil, err
		}
		t.Period = core.Period(period)
		t.Active = active != 0
		t.Deleted = deleted != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

const markTemplateDeleted = `UPDATE recurring_templates SET deleted = 1 WHERE id = ?`

func (q *Queries) MarkTemplateDeleted(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, markTemplateDeleted, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getLastRun = `SELECT last_run_ts FROM recurring_runs WHERE template_id = ?`

func (q *Queries) GetLastRun(ctx context.Context, templateID string) (time.Time, bool, error) {
	var ts int64
	err := q.db.QueryRowContext(ctx, getLastRun, templateID).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ts), true, nil
}

const setLastRun = `
INSERT INTO recurring_runs (template_id, last_run_ts) VALUES (?, ?)
ON CONFLICT(template_id) DO UPDATE SET last_run_ts = excluded.last_run_ts
`

func (q *Queries) SetLastRun(ctx context.Context, templateID string, t time.Time) error {
	_, err := q.db.ExecContext(ctx, setLastRun, templateID, t.UnixMilli())
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
