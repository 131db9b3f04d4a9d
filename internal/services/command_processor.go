package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bilancio/internal/commands"
	"bilancio/internal/core"
)

// CommandProcessor applies commands from the queue to the store. It is
// how external producers (bots, importers, the rate fetcher) write
// without going through HTTP.
type CommandProcessor struct {
	writes *StoreService
}

func NewCommandProcessor(writes *StoreService) *CommandProcessor {
	return &CommandProcessor{writes: writes}
}

// Handle applies one command. Unknown kinds and entities are errors so
// the delivery is not silently acked away.
func (p *CommandProcessor) Handle(ctx context.Context, cmd *commands.Command) error {
	switch cmd.Kind {
	case commands.KindUpsert:
		return p.applyUpsert(ctx, cmd)
	case commands.KindDelete:
		return p.applyDelete(ctx, cmd)
	case commands.KindFxRefresh:
		// No rate provider is wired in; refresh rates by posting
		// fx_rate upsert commands instead.
		slog.WarnContext(ctx, "FX refresh requested but no rate provider is configured")
		return nil
	default:
		return fmt.Errorf("unknown command kind: %s", cmd.Kind)
	}
}

func (p *CommandProcessor) applyUpsert(ctx context.Context, cmd *commands.Command) error {
	switch cmd.Entity {
	case commands.EntityExpense:
		var e core.Expense
		if err := json.Unmarshal(cmd.Payload, &e); err != nil {
			return fmt.Errorf("decode expense payload: %w", err)
		}
		_, err := p.writes.SaveExpense(ctx, e)
		return err
	case commands.EntityBudget:
		var b core.Budget
		if err := json.Unmarshal(cmd.Payload, &b); err != nil {
			return fmt.Errorf("decode budget payload: %w", err)
		}
		_, err := p.writes.SaveBudget(ctx, b)
		return err
	case commands.EntityFxRate:
		var r core.FxRate
		if err := json.Unmarshal(cmd.Payload, &r); err != nil {
			return fmt.Errorf("decode fx rate payload: %w", err)
		}
		_, err := p.writes.SaveFxRate(ctx, r)
		return err
	case commands.EntityRule:
		var r core.Rule
		if err := json.Unmarshal(cmd.Payload, &r); err != nil {
			return fmt.Errorf("decode rule payload: %w", err)
		}
		_, err := p.writes.SaveRule(ctx, r)
		return err
	case commands.EntityGoal:
		var g core.Goal
		if err := json.Unmarshal(cmd.Payload, &g); err != nil {
			return fmt.Errorf("decode goal payload: %w", err)
		}
		_, err := p.writes.SaveGoal(ctx, g)
		return err
	case commands.EntityTemplate:
		var t core.RecurringTemplate
		if err := json.Unmarshal(cmd.Payload, &t); err != nil {
			return fmt.Errorf("decode recurring template payload: %w", err)
		}
		_, err := p.writes.SaveTemplate(ctx, t)
		return err
	default:
		return fmt.Errorf("unknown entity: %s", cmd.Entity)
	}
}

func (p *CommandProcessor) applyDelete(ctx context.Context, cmd *commands.Command) error {
	switch cmd.Entity {
	case commands.EntityExpense:
		return p.writes.DeleteExpense(ctx, cmd.ID)
	case commands.EntityBudget:
		return p.writes.DeleteBudget(ctx, cmd.ID)
	case commands.EntityFxRate:
		return p.writes.DeleteFxRate(ctx, cmd.ID)
	case commands.EntityRule:
		return p.writes.DeleteRule(ctx, cmd.ID)
	case commands.EntityGoal:
		return p.writes.DeleteGoal(ctx, cmd.ID)
	case commands.EntityTemplate:
		return p.writes.DeleteTemplate(ctx, cmd.ID)
	default:
		return fmt.Errorf("unknown entity: %s", cmd.Entity)
	}
}
