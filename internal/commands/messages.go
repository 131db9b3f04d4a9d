package commands

import (
	"encoding/json"
	"time"
)

// Command kinds.
const (
	KindUpsert    = "upsert"
	KindDelete    = "delete"
	KindFxRefresh = "fx_refresh"
)

// Entity names used in commands and change notices.
const (
	EntityExpense  = "expense"
	EntityBudget   = "budget"
	EntityFxRate   = "fx_rate"
	EntityRule     = "rule"
	EntityGoal     = "goal"
	EntityTemplate = "recurring_template"
)

// Command asks a downstream processor to act on one entity. Payload
// carries the full entity for upserts and stays empty otherwise.
type Command struct {
	Kind      string          `json:"kind"`
	Entity    string          `json:"entity,omitempty"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewCommand(kind, entity, id string, payload any) (*Command, error) {
	cmd := &Command{Kind: kind, Entity: entity, ID: id, Timestamp: time.Now()}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		cmd.Payload = body
	}
	return cmd, nil
}

func (c *Command) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

func CommandFromJSON(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}

// StoreChange announces that an entity changed in the store, so peers
// can reload their snapshot. It is intentionally thin: consumers fetch
// the current state themselves.
type StoreChange struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStoreChange(entity, id string) *StoreChange {
	return &StoreChange{Entity: entity, ID: id, Timestamp: time.Now()}
}

func (m *StoreChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func StoreChangeFromJSON(data []byte) (*StoreChange, error) {
	var msg StoreChange
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
