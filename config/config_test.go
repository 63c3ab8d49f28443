package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
core_api:
  base_url: "https://core.test/api"
  token: "test-token"
  timeout_seconds: 15
refresco:
  interval_seconds: 10
  max_snapshots: 50
archivo:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "test-bucket"
  use_ssl: false
  expire_days: 14
cache:
  redis_url: "redis://localhost:6379/1"
  ttl_seconds: 120
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
users:
  - username: "testuser"
    password: "testpass"
    agencia: "inmosur"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.CoreAPI.BaseURL != "https://core.test/api" {
		t.Errorf("Expected base_url https://core.test/api, got %s", cfg.CoreAPI.BaseURL)
	}
	if cfg.CoreAPI.TimeoutSeconds != 15 {
		t.Errorf("Expected timeout_seconds 15, got %d", cfg.CoreAPI.TimeoutSeconds)
	}
	if cfg.Refresco.IntervalSeconds != 10 {
		t.Errorf("Expected interval_seconds 10, got %d", cfg.Refresco.IntervalSeconds)
	}
	if cfg.Refresco.MaxSnapshots != 50 {
		t.Errorf("Expected max_snapshots 50, got %d", cfg.Refresco.MaxSnapshots)
	}
	if cfg.Archivo.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Archivo.ExpireDays)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Expected redis_url redis://localhost:6379/1, got %s", cfg.Cache.RedisURL)
	}
	if cfg.Cache.TTLSeconds != 120 {
		t.Errorf("Expected ttl_seconds 120, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format json, got %s", cfg.Log.Format)
	}
	if len(cfg.Users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(cfg.Users))
	}
	if cfg.Users[0].Agencia != "inmosur" {
		t.Errorf("Expected agencia inmosur, got %s", cfg.Users[0].Agencia)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Create minimal config to test defaults
	configContent := `
core_api:
  base_url: "https://core.test/api"
  token: "test-token"
`
	tmpFile, err := os.CreateTemp("", "config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.CoreAPI.TimeoutSeconds != 30 {
		t.Errorf("Expected default timeout_seconds 30, got %d", cfg.CoreAPI.TimeoutSeconds)
	}
	if cfg.Refresco.IntervalSeconds != 30 {
		t.Errorf("Expected default interval_seconds 30, got %d", cfg.Refresco.IntervalSeconds)
	}
	if cfg.Archivo.ExpireDays != 7 {
		t.Errorf("Expected default expire_days 7, got %d", cfg.Archivo.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
	if len(cfg.Reportes.PatronesMonto) == 0 {
		t.Error("Expected default money patterns")
	}
	if cfg.Reportes.PatronesMonto[0] != "monto" {
		t.Errorf("Expected first money pattern 'monto', got %s", cfg.Reportes.PatronesMonto[0])
	}
	if cfg.Reportes.FechasPorSujeto["contratos"] != "fecha_contrato" {
		t.Errorf("Expected fecha_contrato for contratos, got %s", cfg.Reportes.FechasPorSujeto["contratos"])
	}
}

func TestLoadPatternOverride(t *testing.T) {
	configContent := `
reportes:
  patrones_monto:
    - saldo
  fechas_por_sujeto:
    visitas: fecha_visita
`
	tmpFile, err := os.CreateTemp("", "config-patterns-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if len(cfg.Reportes.PatronesMonto) != 1 || cfg.Reportes.PatronesMonto[0] != "saldo" {
		t.Errorf("Expected overridden money patterns [saldo], got %v", cfg.Reportes.PatronesMonto)
	}
	if cfg.Reportes.FechasPorSujeto["visitas"] != "fecha_visita" {
		t.Errorf("Expected fecha_visita for visitas, got %s", cfg.Reportes.FechasPorSujeto["visitas"])
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-invalid-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("invalid: yaml: content:"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	_, err = Load(tmpFile.Name())
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "user1", Password: "pass1", Agencia: "agencia1"},
			{Username: "user2", Password: "pass2", Agencia: "agencia2"},
		},
	}

	// Test finding existing user
	user := cfg.FindUser("user1")
	if user == nil {
		t.Error("Expected to find user1")
	}
	if user.Password != "pass1" {
		t.Errorf("Expected password pass1, got %s", user.Password)
	}

	// Test finding non-existent user
	user = cfg.FindUser("nonexistent")
	if user != nil {
		t.Error("Expected nil for non-existent user")
	}
}
