package gemini

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the core's enumerated configuration surface. It is a
// plain data holder: LoadConfig only parses bytes into it, and Apply
// only calls the same Server setters a hand-written main would call, so
// the core itself never reaches onto disk for certificate material (that
// remains an external collaborator, per the framework's scope).
type Config struct {
	PrivateKeyFile  string   `yaml:"privateKeyFile"`
	CertificateFile string   `yaml:"certificateFile"`
	CharacterSet    string   `yaml:"characterSet"`
	Languages       []string `yaml:"languages"`
	Port            int      `yaml:"port"`
	FixPath         bool     `yaml:"fixPath"`
	DefaultLogger   bool     `yaml:"defaultLogger"`
}

// defaultConfig returns a Config matching §6's stated defaults.
func defaultConfig() Config {
	return Config{
		CharacterSet: "utf-8",
		Languages:    []string{"en"},
		Port:         1965,
	}
}

// LoadConfig reads and parses a YAML configuration file, applying §6's
// defaults for any field the file does not set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Reason: "reading config file " + path, Err: err}
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Reason: "parsing config file " + path, Err: err}
	}
	return &cfg, nil
}

// Apply configures s according to the receiver, calling the same public
// setters a hand-written main would call. It does not itself load
// certificate bytes; SetPrivateKeyFile/SetCertificateFile still resolve
// the paths at Run time.
func (c *Config) Apply(s *Server) error {
	if c.PrivateKeyFile != "" {
		s.SetPrivateKeyFile(c.PrivateKeyFile)
	}
	if c.CertificateFile != "" {
		s.SetCertificateFile(c.CertificateFile)
	}
	if c.CharacterSet != "" {
		s.SetCharacterSet(c.CharacterSet)
	}
	if c.Languages != nil {
		s.SetLanguages(c.Languages)
	}
	if c.Port != 0 {
		s.SetPort(c.Port)
	}
	s.SetFixPath(c.FixPath)
	if c.DefaultLogger {
		logger := newDefaultLogger()
		s.Logger = &logger
	}
	return nil
}
