package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestGated(t *testing.T) {
	err := Gated("requiere plan premium")

	if !IsGated(err) {
		t.Error("Expected IsGated true for Gated error")
	}
	if err.Status != 403 {
		t.Errorf("Expected status 403, got %d", err.Status)
	}
	if err.Mensaje != "requiere plan premium" {
		t.Errorf("Unexpected mensaje: %s", err.Mensaje)
	}
}

func TestIsGatedWrapped(t *testing.T) {
	err := fmt.Errorf("consultando reporte: %w", Gated("plan premium"))
	if !IsGated(err) {
		t.Error("Expected IsGated to see through fmt.Errorf wrapping")
	}
}

func TestIsGatedOtherKinds(t *testing.T) {
	if IsGated(New(Upstream, "404")) {
		t.Error("Upstream error should not be gated")
	}
	if IsGated(errors.New("plain")) {
		t.Error("Plain error should not be gated")
	}
	if IsGated(nil) {
		t.Error("nil should not be gated")
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(New(Decode, "cuerpo inesperado")); got != Decode {
		t.Errorf("Expected Decode, got %v", got)
	}
	if got := KindOf(fmt.Errorf("x: %w", New(Upstream, "422"))); got != Upstream {
		t.Errorf("Expected Upstream through wrapping, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != Transport {
		t.Errorf("Expected Transport default, got %v", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Transport, "no se pudo contactar la API core", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}
	if err.Error() != "transport: no se pudo contactar la API core: connection refused" {
		t.Errorf("Unexpected Error(): %s", err.Error())
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := New(FeatureGated, "plan premium")
	if err.Error() != "feature_gated: plan premium" {
		t.Errorf("Unexpected Error(): %s", err.Error())
	}
}
