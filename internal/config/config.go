package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/provlabs/classifyd/internal/core/application"
	"github.com/provlabs/classifyd/internal/core/domain"
	"github.com/provlabs/classifyd/internal/core/ports"
	"github.com/provlabs/classifyd/internal/infrastructure/db"
	inmemoryledger "github.com/provlabs/classifyd/internal/infrastructure/ledger/inmemory"
	"github.com/provlabs/classifyd/internal/watcher"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return fmt.Sprintf("%v", types)
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}

var supportedDbs = supportedType{
	"badger":   {},
	"inmemory": {},
}

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType string
	DbDir  string

	BaseName     string
	AdminAddress string
	IsTest       bool
	BindBaseName bool

	DefinitionsFile string
	WatchInterval   int64

	Version string
	Commit  string

	repo     ports.RepoManager
	ledger   *inmemoryledger.Ledger
	svc      application.Service
	adminSvc application.AdminService
	watcher  *watcher.Watcher
}

func (c *Config) String() string {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(buf)
}

var (
	defaultDatadir       = btcutil.AppDataDir("classifyd", false)
	DefaultPort          = 8980
	defaultDbType        = "badger"
	defaultLogLevel      = 4
	defaultBaseName      = "asset"
	defaultWatchInterval = 300 // seconds
)

// env returns a list of strings prefixed with `CLASSIFYD_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("CLASSIFYD_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	Port = &cli.UintFlag{
		Usage: "Port to listen on",
		Name:  "port", EnvVars: env("PORT"),
		Value: uint(DefaultPort),
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (badger, inmemory)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	BaseName = &cli.StringFlag{
		Usage: "Base name under which per-type attribute names are derived",
		Name:  "base-name", EnvVars: env("BASE_NAME"),
		Value: defaultBaseName,
	}

	AdminAddress = &cli.StringFlag{
		Usage:    "Bech32 address allowed to manage asset definitions",
		Name:     "admin-address", EnvVars: env("ADMIN_ADDRESS"),
		Required: true,
	}

	IsTest = &cli.BoolFlag{
		Usage: "Mark this instance as a test deployment",
		Name:  "is-test", EnvVars: env("IS_TEST"),
	}

	BindBaseName = &cli.BoolFlag{
		Usage: "Bind the base name at startup",
		Name:  "bind-base-name", EnvVars: env("BIND_BASE_NAME"),
	}

	DefinitionsFile = &cli.StringFlag{
		Usage: "Path to a JSON file of asset definitions seeded at startup",
		Name:  "definitions-file", EnvVars: env("DEFINITIONS_FILE"),
	}

	WatchInterval = &cli.Int64Flag{
		Usage: "How often (in seconds) to scan for assets stuck in pending, 0 disables",
		Name:  "watch-interval", EnvVars: env("WATCH_INTERVAL"),
		Value: int64(defaultWatchInterval),
	}
)

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	return &Config{
		Datadir:         c.String(Datadir.Name),
		Port:            uint32(c.Uint(Port.Name)),
		LogLevel:        c.Int(LogLevel.Name),
		DbType:          c.String(DbType.Name),
		DbDir:           dbPath,
		BaseName:        c.String(BaseName.Name),
		AdminAddress:    c.String(AdminAddress.Name),
		IsTest:          c.Bool(IsTest.Name),
		BindBaseName:    c.Bool(BindBaseName.Name),
		DefinitionsFile: c.String(DefinitionsFile.Name),
		WatchInterval:   c.Int64(WatchInterval.Name),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if c.BaseName == "" {
		return fmt.Errorf("base name must not be empty")
	}
	if c.AdminAddress == "" {
		return fmt.Errorf("admin address must not be empty")
	}
	if c.WatchInterval < 0 {
		return fmt.Errorf("invalid watch interval, must be 0 or greater")
	}
	if err := c.repoManager(); err != nil {
		return fmt.Errorf("error while creating repo manager: %s", err)
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) AdminService() (application.AdminService, error) {
	if c.adminSvc == nil {
		c.adminSvc = application.NewAdminService(c.repo, c.ledgerService())
	}
	return c.adminSvc, nil
}

func (c *Config) WatcherService() (*watcher.Watcher, error) {
	if c.WatchInterval == 0 {
		return nil, nil
	}
	if c.watcher == nil {
		w, err := watcher.NewWatcher(c.repo, time.Duration(c.WatchInterval)*time.Second)
		if err != nil {
			return nil, err
		}
		c.watcher = w
	}
	return c.watcher, nil
}

func (c *Config) RepoManager() ports.RepoManager {
	return c.repo
}

// Ledger exposes the outbound message recorder, mostly for inspection.
func (c *Config) Ledger() *inmemoryledger.Ledger {
	return c.ledgerService()
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "inmemory":
		dataStoreConfig = nil
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() *inmemoryledger.Ledger {
	if c.ledger == nil {
		c.ledger = inmemoryledger.NewLedger()
	}
	return c.ledger
}

func (c *Config) appService() error {
	initialDefinitions, err := c.loadDefinitionsFile()
	if err != nil {
		return err
	}

	c.svc = application.NewService(
		c.repo, c.ledgerService(),
		application.VersionInfo{Name: "classifyd", Version: c.Version, Commit: c.Commit},
		application.BootstrapOptions{
			BaseName:           c.BaseName,
			AdminAddress:       c.AdminAddress,
			IsTest:             c.IsTest,
			BindBaseName:       c.BindBaseName,
			InitialDefinitions: initialDefinitions,
		},
	)
	return nil
}

type definitionsFile struct {
	AssetDefinitions []struct {
		AssetType        string `json:"asset_type"`
		ScopeSpecAddress string `json:"scope_spec_address"`
		Enabled          bool   `json:"enabled"`
		Verifiers        []struct {
			Address         string `json:"address"`
			OnboardingCost  uint64 `json:"onboarding_cost"`
			OnboardingDenom string `json:"onboarding_denom"`
			FeeAmount       uint64 `json:"fee_amount"`
			FeeDestinations []struct {
				Address   string `json:"address"`
				FeeAmount uint64 `json:"fee_amount"`
			} `json:"fee_destinations"`
		} `json:"verifiers"`
	} `json:"asset_definitions"`
}

func (c *Config) loadDefinitionsFile() ([]domain.AssetDefinition, error) {
	if c.DefinitionsFile == "" {
		return nil, nil
	}

	buf, err := os.ReadFile(c.DefinitionsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %s", err)
	}
	var parsed definitionsFile
	if err := json.Unmarshal(buf, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse definitions file: %s", err)
	}

	defs := make([]domain.AssetDefinition, 0, len(parsed.AssetDefinitions))
	for _, d := range parsed.AssetDefinitions {
		verifiers := make([]domain.VerifierDetail, 0, len(d.Verifiers))
		for _, v := range d.Verifiers {
			dests := make([]domain.FeeDestination, 0, len(v.FeeDestinations))
			for _, dest := range v.FeeDestinations {
				dests = append(dests, domain.FeeDestination{
					Address:   dest.Address,
					FeeAmount: dest.FeeAmount,
				})
			}
			verifiers = append(verifiers, domain.VerifierDetail{
				Address:         v.Address,
				OnboardingCost:  v.OnboardingCost,
				OnboardingDenom: v.OnboardingDenom,
				FeeAmount:       v.FeeAmount,
				FeeDestinations: dests,
			})
		}
		defs = append(defs, domain.AssetDefinition{
			AssetType:        d.AssetType,
			ScopeSpecAddress: d.ScopeSpecAddress,
			Verifiers:        verifiers,
			Enabled:          d.Enabled,
		})
	}
	return defs, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
