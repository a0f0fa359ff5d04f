package actions

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestExecuteUnknownPair(t *testing.T) {
	registry := NewRegistry()

	err := registry.Execute(context.Background(), EntityInventory, ActionType("shred"), "item-1")
	if err == nil {
		t.Fatal("expected error for unregistered pair")
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "INVALID_OPERATION" {
		t.Fatalf("expected INVALID_OPERATION, got %v", err)
	}
}

func TestExecuteWrapsHandlerFailure(t *testing.T) {
	registry := NewRegistry()
	cause := errors.New("downstream unavailable")
	registry.Register(EntityInventory, ActionDelete, func(_ context.Context, _ string) error {
		return cause
	})

	err := registry.Execute(context.Background(), EntityInventory, ActionDelete, "item-1")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "EXECUTION_FAILED" {
		t.Fatalf("expected EXECUTION_FAILED, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error must preserve the handler failure")
	}
	if domainErr.Details["entity_id"] != "item-1" {
		t.Fatal("details must carry the entity id")
	}
}

func TestExecuteRunsHandler(t *testing.T) {
	registry := NewRegistry()
	var got string
	registry.Register(EntityInventory, ActionDelete, func(_ context.Context, entityID string) error {
		got = entityID
		return nil
	})

	if err := registry.Execute(context.Background(), EntityInventory, ActionDelete, "item-9"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != "item-9" {
		t.Fatalf("handler must receive the entity id, got %q", got)
	}
}

func TestRegisterReplacesHandler(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EntityInventory, ActionDelete, func(_ context.Context, _ string) error {
		return errors.New("old handler")
	})
	registry.Register(EntityInventory, ActionDelete, func(_ context.Context, _ string) error {
		return nil
	})

	if err := registry.Execute(context.Background(), EntityInventory, ActionDelete, "item-1"); err != nil {
		t.Fatalf("replacement handler must win: %v", err)
	}
}
