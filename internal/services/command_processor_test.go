package services

import (
	"context"
	"testing"

	"bilancio/internal/commands"
	"bilancio/internal/core"
)

func TestCommandProcessorUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, holder := newTestService()
	p := NewCommandProcessor(svc)

	cmd, err := commands.NewCommand(commands.KindUpsert, commands.EntityFxRate, "USD",
		core.FxRate{Code: "USD", PerBase: "1.1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Handle(ctx, cmd); err != nil {
		t.Fatal(err)
	}
	if len(holder.Current().FxRates) != 1 {
		t.Fatal("fx rate not applied")
	}

	del, _ := commands.NewCommand(commands.KindDelete, commands.EntityFxRate, "USD", nil)
	if err := p.Handle(ctx, del); err != nil {
		t.Fatal(err)
	}
	if !holder.Current().FxRates[0].Deleted {
		t.Error("fx rate not soft-deleted")
	}
}

func TestCommandProcessorUnknowns(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	p := NewCommandProcessor(svc)

	bad, _ := commands.NewCommand("explode", "", "", nil)
	if err := p.Handle(ctx, bad); err == nil {
		t.Error("expected error for unknown kind")
	}

	badEntity, _ := commands.NewCommand(commands.KindDelete, "teapot", "x", nil)
	if err := p.Handle(ctx, badEntity); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestCommandProcessorFxRefreshIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	p := NewCommandProcessor(svc)

	cmd, _ := commands.NewCommand(commands.KindFxRefresh, "", "", nil)
	if err := p.Handle(ctx, cmd); err != nil {
		t.Errorf("fx refresh should ack cleanly: %v", err)
	}
}
