package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/idalon-client/pkg/models"
	"github.com/Sternrassler/idalon-client/pkg/pagination"
	"github.com/google/uuid"
)

// NightCmd prints one night.
type NightCmd struct {
	ID string `arg:"" help:"UUID of the night."`
}

func (c *NightCmd) Run(ctx context.Context, a *app) error {
	return lookup[models.Night](ctx, a, c.ID)
}

// RunCmd prints one run.
type RunCmd struct {
	ID string `arg:"" help:"UUID of the run."`
}

func (c *RunCmd) Run(ctx context.Context, a *app) error {
	return lookup[models.Run](ctx, a, c.ID)
}

// lookup fetches the record with the given id and writes it as indented JSON.
func lookup[T pagination.Resource](ctx context.Context, a *app, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}

	record, err := pagination.FindOne[T](ctx, a.transport, parsed.String())
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}
