// Package config loads the YAML configuration of both servers. A missing
// file is not an error: defaults apply, so the binaries run out of the box.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file path when set.
const EnvConfigPath = "RO2GO_CONFIG"

// DBType selects a store backend.
type DBType string

const (
	DBInMemory DBType = "inmemory"
	DBPostgres DBType = "postgres"
)

// DatabaseConfig selects and parameterizes a store backend. URL is only
// used by the postgres backend.
type DatabaseConfig struct {
	Type    DBType `yaml:"type"`
	Verbose bool   `yaml:"verbose"`
	URL     string `yaml:"url"`
}

// CharServerEntry is one character server advertised by the login server.
type CharServerEntry struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Port    uint16 `yaml:"port"`
}

// LoginServer holds all configuration for the login server.
type LoginServer struct {
	BindAddress string `yaml:"bind_address"`
	Port        uint16 `yaml:"port"`

	AccountDB DatabaseConfig `yaml:"account_db"`

	CharServers []CharServerEntry `yaml:"char_servers"`

	LogLevel string `yaml:"log_level"`
}

// StartingItem is one stack of the starting inventory fixture.
type StartingItem struct {
	ID     uint32 `yaml:"id"`
	Slot   uint16 `yaml:"slot"`
	Amount uint16 `yaml:"amount"`
}

// StartingCharacter is the per-class creation fixture: spawn location and
// initial items.
type StartingCharacter struct {
	Map   string         `yaml:"map"`
	X     uint16         `yaml:"x"`
	Y     uint16         `yaml:"y"`
	Items []StartingItem `yaml:"items"`
}

// CharServer holds all configuration for the character server.
type CharServer struct {
	BindAddress string `yaml:"bind_address"`
	Port        uint16 `yaml:"port"`

	CharacterDB DatabaseConfig `yaml:"character_db"`

	MapNamesFile string `yaml:"map_names_file"`

	// Map-server endpoint put into the zone handoff packet.
	MapServerAddress string `yaml:"map_server_address"`
	MapServerPort    uint16 `yaml:"map_server_port"`

	PincodeEnabled bool `yaml:"pincode_enabled"`

	Novice StartingCharacter `yaml:"novice"`
	Doram  StartingCharacter `yaml:"doram"`

	LogLevel string `yaml:"log_level"`
}

// DefaultLoginServer returns LoginServer config with sensible defaults.
func DefaultLoginServer() LoginServer {
	return LoginServer{
		BindAddress: "0.0.0.0",
		Port:        6900,
		AccountDB:   DatabaseConfig{Type: DBInMemory},
		CharServers: []CharServerEntry{
			{Name: "Valkyrja", Address: "127.0.0.1", Port: 6121},
		},
		LogLevel: "info",
	}
}

// DefaultCharServer returns CharServer config with sensible defaults.
func DefaultCharServer() CharServer {
	return CharServer{
		BindAddress:      "0.0.0.0",
		Port:             6121,
		CharacterDB:      DatabaseConfig{Type: DBInMemory},
		MapNamesFile:     "data/maps.yml",
		MapServerAddress: "127.0.0.1",
		MapServerPort:    5121,
		Novice: StartingCharacter{
			Map: "new_1-1", X: 53, Y: 111,
			Items: []StartingItem{
				{ID: 1201, Slot: 0, Amount: 1}, // Knife
				{ID: 2301, Slot: 1, Amount: 1}, // Cotton Shirt
			},
		},
		Doram: StartingCharacter{
			Map: "lasa_fild01", X: 48, Y: 297,
			Items: []StartingItem{
				{ID: 1681, Slot: 0, Amount: 1}, // Parasol
				{ID: 2301, Slot: 1, Amount: 1}, // Cotton Shirt
			},
		},
		LogLevel: "info",
	}
}

// LoadLoginServer loads login server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadLoginServer(path string) (LoginServer, error) {
	cfg := DefaultLoginServer()
	if err := load(resolvePath(path), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadCharServer loads character server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadCharServer(path string) (CharServer, error) {
	cfg := DefaultCharServer()
	if err := load(resolvePath(path), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func resolvePath(path string) string {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return path
}

func load(path string, cfg any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
