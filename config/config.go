package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CoreAPI  CoreAPIConfig  `yaml:"core_api"`
	Refresco RefrescoConfig `yaml:"refresco"`
	Reportes ReportesConfig `yaml:"reportes"`
	Archivo  ArchivoConfig  `yaml:"archivo"`
	Cache    CacheConfig    `yaml:"cache"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// CoreAPIConfig points at the brokerage core REST API.
type CoreAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RefrescoConfig controls the contract-summary refresher.
type RefrescoConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxSnapshots    int `yaml:"max_snapshots"`
}

// ReportesConfig lets a deployment override the column-classification
// heuristics. Name-sniffing is a known approximation (a column called
// cantidad_dormitorios would match the money patterns), so the lists are
// configurable per report subject.
type ReportesConfig struct {
	PatronesMonto   []string          `yaml:"patrones_monto"`
	FechasPorSujeto map[string]string `yaml:"fechas_por_sujeto"`
}

// ArchivoConfig is the object-storage bucket where exported report files
// are archived for re-download.
type ArchivoConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// CacheConfig is the optional redis snapshot cache. Empty URL disables it.
type CacheConfig struct {
	RedisURL   string `yaml:"redis_url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Agencia  string `yaml:"agencia"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.CoreAPI.TimeoutSeconds == 0 {
		cfg.CoreAPI.TimeoutSeconds = 30
	}
	if cfg.Refresco.IntervalSeconds == 0 {
		cfg.Refresco.IntervalSeconds = 30
	}
	if cfg.Refresco.MaxSnapshots == 0 {
		cfg.Refresco.MaxSnapshots = 500
	}
	if cfg.Archivo.ExpireDays == 0 {
		cfg.Archivo.ExpireDays = 7
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if len(cfg.Reportes.PatronesMonto) == 0 {
		cfg.Reportes.PatronesMonto = []string{"monto", "precio", "importe", "total", "comision", "cantidad"}
	}
	if len(cfg.Reportes.FechasPorSujeto) == 0 {
		cfg.Reportes.FechasPorSujeto = map[string]string{
			"contratos": "fecha_contrato",
			"pagos":     "fecha_pago",
			"citas":     "fecha_cita",
			"inmuebles": "fecha_publicacion",
		}
	}

	GlobalConfig = &cfg
	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
