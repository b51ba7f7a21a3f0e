package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/application"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/internal/infrastructure/alertsmanager"
	"github.com/beastmint/mintd/internal/infrastructure/chain/toncenter"
	"github.com/beastmint/mintd/internal/infrastructure/db"
	"github.com/beastmint/mintd/internal/infrastructure/generator/replicate"
	"github.com/beastmint/mintd/internal/infrastructure/marketplace/getgems"
	ipfspublisher "github.com/beastmint/mintd/internal/infrastructure/publisher/ipfs"
	"github.com/beastmint/mintd/internal/infrastructure/publisher/pinata"
	timescheduler "github.com/beastmint/mintd/internal/infrastructure/scheduler/gocron"
	txbuilder "github.com/beastmint/mintd/internal/infrastructure/tx-builder/ton"
	inmemorylocker "github.com/beastmint/mintd/internal/infrastructure/wallet-locker/inmemory"
	redislocker "github.com/beastmint/mintd/internal/infrastructure/wallet-locker/redis"
	tonwallet "github.com/beastmint/mintd/internal/infrastructure/wallet/ton"
	"github.com/beastmint/mintd/internal/telemetry"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
)

var (
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedPublishers = supportedType{
		"pinata": {},
		"ipfs":   {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
	supportedWalletLockers = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

// Secret hides its value whenever it is printed or marshalled.
type Secret string

func (s Secret) String() string {
	if len(s) <= 0 {
		return ""
	}
	return "***"
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Secret) Reveal() string {
	return string(s)
}

type Config struct {
	Datadir     string
	Port        uint32
	LogLevel    int
	CorsOrigins []string

	DbType   string
	DbDir    string
	DbUrl            string
	NoDbInit         bool
	PgConnectTimeout int64

	PublisherType   string
	PinataUrl       string
	PinataApiKey    Secret
	PinataSecretKey Secret
	IpfsNodeUrl     string

	ReplicateUrl      string
	ReplicateApiToken Secret
	Model             string
	BasePrompt        string

	GetgemsUrl           string
	GetgemsCollection    string
	GetgemsAuthorization Secret

	OwnerAddress        string
	OwnerMnemonic       Secret
	Testnet             bool
	Subwallet           uint32
	ToncenterUrl        string
	ToncenterApiKey     Secret
	JettonWallet        string
	NftTransferValue    uint64
	JettonTransferValue uint64
	MinNftBalance       uint64

	WalletLockerType  string
	RedisUrl          string
	SchedulerType     string
	ReconcileInterval int64
	SeqnoWaitTimeout  int64

	AlertManagerURL       string
	ExplorerURL           string
	OtelCollectorEndpoint string
	OtelPushInterval      int64

	repo         ports.RepoManager
	generator    ports.AssetGenerator
	publisher    ports.ContentPublisher
	marketplace  ports.Marketplace
	chain        ports.ChainClient
	signer       ports.WalletSigner
	txBuilder    ports.TxBuilder
	walletLocker ports.WalletLocker
	scheduler    ports.SchedulerService
	alerts       ports.Alerts
	metrics      ports.Metrics
	mintSvc      application.MintService
	transferSvc  application.TransferService
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir             = btcutil.AppDataDir("mintd", false)
	DefaultPort                = 7000
	defaultLogLevel            = 4
	defaultDbType              = "badger"
	defaultPublisherType       = "pinata"
	defaultSchedulerType       = "gocron"
	defaultWalletLockerType    = "inmemory"
	defaultReconcileInterval   = 30 // seconds
	defaultOtelPushInterval    = 10 // seconds
	defaultSeqnoWaitTimeout    = 30 // seconds
	defaultPgConnectTimeout    = 5  // seconds
	defaultTestnet             = true
	defaultExplorerURL         = "https://testnet.tonviewer.com"
	defaultJettonWallet        = "kQDt1cugwBboev3AnobpMQOmuOLGj05e4_5NbUSMfq1sefoi"
	defaultNftTransferValue    = uint64(application.DefaultNftTransferValue)
	defaultJettonTransferValue = uint64(application.DefaultJettonTransferValue)
)

// env returns a list of strings prefixed with `MINTD_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("MINTD_%s", value)
	}

	return envs
}

// envOrBare also accepts the unprefixed variable.
func envOrBare(value string) []string {
	return append(env(value), value)
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
	CorsOrigins = &cli.StringSliceFlag{
		Usage: "Origins allowed to call the http api, all if unset",
		Name:  "cors-origin", EnvVars: env("CORS_ORIGINS"),
	}
	DbType = &cli.StringFlag{
		Usage: "Database type (badger, sqlite, postgres)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}
	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if MINTD_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}
	NoDbInit = &cli.BoolFlag{
		Usage: "Do not create the postgres database if missing",
		Name:  "no-db-init", EnvVars: env("NO_DB_INIT"),
	}
	PgConnectTimeout = &cli.Int64Flag{
		Usage: "Seconds to wait for the postgres server to accept a connection",
		Name:  "pg-connect-timeout", EnvVars: env("PG_CONNECT_TIMEOUT"),
		Value: int64(defaultPgConnectTimeout),
	}
	PublisherType = &cli.StringFlag{
		Usage: "Content publisher type (pinata, ipfs)",
		Name:  "publisher-type", EnvVars: env("PUBLISHER_TYPE"),
		Value: defaultPublisherType,
	}
	PinataUrl = &cli.StringFlag{
		Usage: "Pinata api base url",
		Name:  "pinata-url", EnvVars: env("PINATA_URL"),
		Value: pinata.DefaultBaseUrl,
	}
	PinataApiKey = &cli.StringFlag{
		Usage: "Pinata api key",
		Name:  "pinata-api-key", EnvVars: envOrBare("PINATA_API_KEY"),
	}
	PinataSecretKey = &cli.StringFlag{
		Usage: "Pinata secret api key",
		Name:  "pinata-secret-key", EnvVars: envOrBare("PINATA_SECRET_KEY"),
	}
	IpfsNodeUrl = &cli.StringFlag{
		Usage: "Url of the ipfs node api if MINTD_PUBLISHER_TYPE is set to ipfs",
		Name:  "ipfs-node-url", EnvVars: env("IPFS_NODE_URL"),
		Value: "localhost:5001",
	}
	ReplicateUrl = &cli.StringFlag{
		Usage: "Replicate api base url",
		Name:  "replicate-url", EnvVars: env("REPLICATE_URL"),
		Value: replicate.DefaultBaseUrl,
	}
	ReplicateApiToken = &cli.StringFlag{
		Usage: "Replicate api token",
		Name:  "replicate-api-token", EnvVars: envOrBare("REPLICATE_API_TOKEN"),
	}
	Model = &cli.StringFlag{
		Usage: "Image generation model",
		Name:  "model", EnvVars: env("MODEL"),
		Value: application.DefaultModel,
	}
	BasePrompt = &cli.StringFlag{
		Usage: "Prompt prepended to every custom prompt",
		Name:  "base-prompt", EnvVars: env("BASE_PROMPT"),
		Value: application.DefaultBasePrompt,
	}
	GetgemsUrl = &cli.StringFlag{
		Usage: "Getgems public api base url",
		Name:  "getgems-url", EnvVars: append(env("GETGEMS_URL"), "GETGEMS_BASE"),
		Value: getgems.DefaultBaseUrl,
	}
	GetgemsCollection = &cli.StringFlag{
		Usage: "Getgems collection address",
		Name:  "getgems-collection", EnvVars: envOrBare("GETGEMS_COLLECTION"),
	}
	GetgemsAuthorization = &cli.StringFlag{
		Usage: "Getgems authorization token",
		Name:  "getgems-authorization", EnvVars: envOrBare("GETGEMS_AUTHORIZATION"),
	}
	OwnerAddress = &cli.StringFlag{
		Usage: "Default owner of minted items",
		Name:  "owner-address", EnvVars: envOrBare("OWNER_ADDRESS"),
	}
	OwnerMnemonic = &cli.StringFlag{
		Usage: "Mnemonic of the wallet sending transfers, transfers are disabled if unset",
		Name:  "owner-mnemonic", EnvVars: envOrBare("OWNER_MNEMONIC"),
	}
	Testnet = &cli.BoolFlag{
		Usage: "Use testnet addresses",
		Name:  "testnet", EnvVars: env("TESTNET"),
		Value: defaultTestnet,
	}
	Subwallet = &cli.UintFlag{
		Usage: "Wallet v4 subwallet id",
		Name:  "subwallet", EnvVars: env("SUBWALLET"),
		Value: tonwallet.DefaultSubwallet,
	}
	ToncenterUrl = &cli.StringFlag{
		Usage: "Toncenter json-rpc endpoint",
		Name:  "toncenter-url", EnvVars: env("TONCENTER_URL"),
		Value: toncenter.DefaultEndpoint,
	}
	ToncenterApiKey = &cli.StringFlag{
		Usage: "Toncenter api key",
		Name:  "toncenter-api-key", EnvVars: envOrBare("TONCENTER_API_KEY"),
	}
	JettonWallet = &cli.StringFlag{
		Usage: "Jetton wallet of the owner used for jetton transfers",
		Name:  "jetton-wallet", EnvVars: env("JETTON_WALLET"),
		Value: defaultJettonWallet,
	}
	NftTransferValue = &cli.Uint64Flag{
		Usage: "Nanotons attached to an nft transfer",
		Name:  "nft-transfer-value", EnvVars: env("NFT_TRANSFER_VALUE"),
		Value: defaultNftTransferValue,
	}
	JettonTransferValue = &cli.Uint64Flag{
		Usage: "Nanotons attached to a jetton transfer",
		Name:  "jetton-transfer-value", EnvVars: env("JETTON_TRANSFER_VALUE"),
		Value: defaultJettonTransferValue,
	}
	MinNftBalance = &cli.Uint64Flag{
		Usage: "Minimum wallet balance in nanotons to send an nft, defaults to the attached value",
		Name:  "min-nft-balance", EnvVars: env("MIN_NFT_BALANCE"),
	}
	WalletLockerType = &cli.StringFlag{
		Usage: "Wallet locker type (inmemory, redis)",
		Name:  "wallet-locker-type", EnvVars: env("WALLET_LOCKER_TYPE"),
		Value: defaultWalletLockerType,
	}
	RedisUrl = &cli.StringFlag{
		Usage: "Redis url if MINTD_WALLET_LOCKER_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}
	SchedulerType = &cli.StringFlag{
		Usage: "Scheduler type",
		Name:  "scheduler-type", EnvVars: env("SCHEDULER_TYPE"),
		Value: defaultSchedulerType,
	}
	ReconcileInterval = &cli.Int64Flag{
		Usage: "Seconds between two mint status reconciliations, 0 disables it",
		Name:  "reconcile-interval", EnvVars: env("RECONCILE_INTERVAL"),
		Value: int64(defaultReconcileInterval),
	}
	SeqnoWaitTimeout = &cli.Int64Flag{
		Usage: "Seconds a transfer waits for the previous one from the same wallet to land",
		Name:  "seqno-wait-timeout", EnvVars: env("SEQNO_WAIT_TIMEOUT"),
		Value: int64(defaultSeqnoWaitTimeout),
	}
	AlertManagerURL = &cli.StringFlag{
		Usage: "Alert manager url",
		Name:  "alert-manager-url", EnvVars: env("ALERT_MANAGER_URL"),
	}
	ExplorerURL = &cli.StringFlag{
		Usage: "Explorer url linked in alerts",
		Name:  "explorer-url", EnvVars: env("EXPLORER_URL"),
		Value: defaultExplorerURL,
	}
	OtelCollectorEndpoint = &cli.StringFlag{
		Usage: "OpenTelemetry collector endpoint",
		Name:  "otel-collector-endpoint", EnvVars: env("OTEL_COLLECTOR_ENDPOINT"),
	}
	OtelPushInterval = &cli.Int64Flag{
		Usage: "OpenTelemetry push interval in seconds",
		Name:  "otel-push-interval", EnvVars: env("OTEL_PUSH_INTERVAL"),
		Value: int64(defaultOtelPushInterval),
	}
)

var Flags = []cli.Flag{
	Datadir,
	Port,
	LogLevel,
	CorsOrigins,
	DbType,
	DbUrl,
	NoDbInit,
	PgConnectTimeout,
	PublisherType,
	PinataUrl,
	PinataApiKey,
	PinataSecretKey,
	IpfsNodeUrl,
	ReplicateUrl,
	ReplicateApiToken,
	Model,
	BasePrompt,
	GetgemsUrl,
	GetgemsCollection,
	GetgemsAuthorization,
	OwnerAddress,
	OwnerMnemonic,
	Testnet,
	Subwallet,
	ToncenterUrl,
	ToncenterApiKey,
	JettonWallet,
	NftTransferValue,
	JettonTransferValue,
	MinNftBalance,
	WalletLockerType,
	RedisUrl,
	SchedulerType,
	ReconcileInterval,
	SeqnoWaitTimeout,
	AlertManagerURL,
	ExplorerURL,
	OtelCollectorEndpoint,
	OtelPushInterval,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(WalletLockerType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("wallet locker type set to 'redis' but redis url is missing")
		}
	}

	return &Config{
		Datadir:               c.String(Datadir.Name),
		Port:                  uint32(c.Uint(Port.Name)),
		LogLevel:              c.Int(LogLevel.Name),
		CorsOrigins:           c.StringSlice(CorsOrigins.Name),
		DbType:                c.String(DbType.Name),
		DbDir:                 dbPath,
		DbUrl:                 dbUrl,
		NoDbInit:              c.Bool(NoDbInit.Name),
		PgConnectTimeout:      c.Int64(PgConnectTimeout.Name),
		PublisherType:         c.String(PublisherType.Name),
		PinataUrl:             c.String(PinataUrl.Name),
		PinataApiKey:          Secret(c.String(PinataApiKey.Name)),
		PinataSecretKey:       Secret(c.String(PinataSecretKey.Name)),
		IpfsNodeUrl:           c.String(IpfsNodeUrl.Name),
		ReplicateUrl:          c.String(ReplicateUrl.Name),
		ReplicateApiToken:     Secret(c.String(ReplicateApiToken.Name)),
		Model:                 c.String(Model.Name),
		BasePrompt:            c.String(BasePrompt.Name),
		GetgemsUrl:            c.String(GetgemsUrl.Name),
		GetgemsCollection:     c.String(GetgemsCollection.Name),
		GetgemsAuthorization:  Secret(c.String(GetgemsAuthorization.Name)),
		OwnerAddress:          c.String(OwnerAddress.Name),
		OwnerMnemonic:         Secret(c.String(OwnerMnemonic.Name)),
		Testnet:               c.Bool(Testnet.Name),
		Subwallet:             uint32(c.Uint(Subwallet.Name)),
		ToncenterUrl:          c.String(ToncenterUrl.Name),
		ToncenterApiKey:       Secret(c.String(ToncenterApiKey.Name)),
		JettonWallet:          c.String(JettonWallet.Name),
		NftTransferValue:      c.Uint64(NftTransferValue.Name),
		JettonTransferValue:   c.Uint64(JettonTransferValue.Name),
		MinNftBalance:         c.Uint64(MinNftBalance.Name),
		WalletLockerType:      c.String(WalletLockerType.Name),
		RedisUrl:              redisUrl,
		SchedulerType:         c.String(SchedulerType.Name),
		ReconcileInterval:     c.Int64(ReconcileInterval.Name),
		SeqnoWaitTimeout:      c.Int64(SeqnoWaitTimeout.Name),
		AlertManagerURL:       c.String(AlertManagerURL.Name),
		ExplorerURL:           c.String(ExplorerURL.Name),
		OtelCollectorEndpoint: c.String(OtelCollectorEndpoint.Name),
		OtelPushInterval:      c.Int64(OtelPushInterval.Name),
	}, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedPublishers.supports(c.PublisherType) {
		return fmt.Errorf(
			"publisher type not supported, please select one of: %s", supportedPublishers,
		)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf(
			"scheduler type not supported, please select one of: %s", supportedSchedulers,
		)
	}
	if !supportedWalletLockers.supports(c.WalletLockerType) {
		return fmt.Errorf(
			"wallet locker type not supported, please select one of: %s",
			supportedWalletLockers,
		)
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("invalid reconcile interval, must be at least 0")
	}
	if c.SeqnoWaitTimeout <= 0 {
		return fmt.Errorf("invalid seqno wait timeout, must be greater than 0")
	}
	if c.DbType == "postgres" && c.PgConnectTimeout <= 0 {
		return fmt.Errorf("invalid postgres connect timeout, must be greater than 0")
	}
	if len(c.OwnerAddress) <= 0 {
		log.Warn("owner address not set, every mint request must carry one")
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.generatorService(); err != nil {
		return err
	}
	if err := c.publisherService(); err != nil {
		return err
	}
	if err := c.marketplaceService(); err != nil {
		return err
	}
	if err := c.chainService(); err != nil {
		return err
	}
	if err := c.signerService(); err != nil {
		return err
	}
	if err := c.txBuilderService(); err != nil {
		return err
	}
	if err := c.walletLockerService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.alertsService(); err != nil {
		return err
	}
	c.metricsService()
	return nil
}

// InitTelemetry registers the otel meter provider when a collector endpoint
// is configured. The returned func is nil otherwise.
func (c *Config) InitTelemetry(ctx context.Context) (func(context.Context) error, error) {
	if c.OtelCollectorEndpoint == "" {
		return nil, nil
	}
	pushInterval := time.Duration(c.OtelPushInterval) * time.Second
	return telemetry.InitOtelSDK(ctx, c.OtelCollectorEndpoint, pushInterval)
}

func (c *Config) MintService() (application.MintService, error) {
	if c.mintSvc == nil {
		if err := c.mintService(); err != nil {
			return nil, err
		}
	}
	return c.mintSvc, nil
}

func (c *Config) TransferService() (application.TransferService, error) {
	if c.transferSvc == nil {
		if err := c.transferService(); err != nil {
			return nil, err
		}
	}
	return c.transferSvc, nil
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{
			c.DbUrl, !c.NoDbInit, time.Duration(c.PgConnectTimeout) * time.Second,
		}
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

func (c *Config) generatorService() error {
	svc, err := replicate.NewService(
		c.ReplicateApiToken.Reveal(), replicate.WithBaseUrl(c.ReplicateUrl),
	)
	if err != nil {
		return err
	}
	c.generator = svc
	return nil
}

func (c *Config) publisherService() error {
	var svc ports.ContentPublisher
	var err error
	switch c.PublisherType {
	case "pinata":
		svc, err = pinata.NewService(
			c.PinataUrl, c.PinataApiKey.Reveal(), c.PinataSecretKey.Reveal(),
		)
	case "ipfs":
		svc, err = ipfspublisher.NewService(c.IpfsNodeUrl)
	default:
		err = fmt.Errorf("unknown publisher type")
	}
	if err != nil {
		return err
	}

	c.publisher = svc
	return nil
}

func (c *Config) marketplaceService() error {
	svc, err := getgems.NewService(
		c.GetgemsUrl, c.GetgemsCollection, c.GetgemsAuthorization.Reveal(),
	)
	if err != nil {
		return err
	}
	c.marketplace = svc
	return nil
}

func (c *Config) chainService() error {
	svc, err := toncenter.NewService(c.ToncenterUrl, c.ToncenterApiKey.Reveal())
	if err != nil {
		return err
	}
	c.chain = svc
	return nil
}

func (c *Config) signerService() error {
	c.signer = tonwallet.NewSigner(
		tonwallet.WithTestnet(c.Testnet), tonwallet.WithSubwallet(c.Subwallet),
	)
	return nil
}

func (c *Config) txBuilderService() error {
	c.txBuilder = txbuilder.NewTxBuilder()
	return nil
}

func (c *Config) walletLockerService() error {
	var svc ports.WalletLocker
	switch c.WalletLockerType {
	case "inmemory":
		svc = inmemorylocker.NewLocker()
	case "redis":
		redisOpts, err := redis.ParseURL(c.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		svc = redislocker.NewLocker(redis.NewClient(redisOpts))
	default:
		return fmt.Errorf("unknown wallet locker type")
	}

	c.walletLocker = svc
	return nil
}

func (c *Config) schedulerService() error {
	switch c.SchedulerType {
	case "gocron":
		c.scheduler = timescheduler.NewScheduler()
	default:
		return fmt.Errorf("unknown scheduler type")
	}
	return nil
}

func (c *Config) alertsService() error {
	if c.AlertManagerURL == "" {
		return nil
	}

	c.alerts = alertsmanager.NewService(c.AlertManagerURL, c.ExplorerURL)
	return nil
}

// metricsService binds the instruments to the global meter provider, which
// forwards to the otel sdk once InitTelemetry registered it.
func (c *Config) metricsService() {
	c.metrics = telemetry.NewMetrics(otel.Meter("github.com/beastmint/mintd"))
}

func (c *Config) mintService() error {
	svc, err := application.NewMintService(
		c.generator, c.publisher, c.marketplace, c.repo, c.scheduler, c.alerts, c.metrics,
		&http.Client{Timeout: time.Minute},
		c.OwnerAddress, c.Model, c.BasePrompt,
		time.Duration(c.ReconcileInterval)*time.Second,
	)
	if err != nil {
		return err
	}

	c.mintSvc = svc
	return nil
}

func (c *Config) transferService() error {
	var session *application.WalletSession
	if words := strings.Fields(c.OwnerMnemonic.Reveal()); len(words) > 0 {
		s, err := application.NewWalletSession(
			c.chain, c.signer, c.walletLocker, words,
			application.WithSeqnoWait(
				application.DefaultSeqnoPollInterval,
				time.Duration(c.SeqnoWaitTimeout)*time.Second,
			),
		)
		if err != nil {
			return err
		}
		session = s
	} else {
		log.Warn("owner mnemonic not set, transfers are disabled")
	}

	c.transferSvc = application.NewTransferService(
		session, c.txBuilder, c.alerts, c.metrics, c.JettonWallet,
		c.NftTransferValue, c.JettonTransferValue, c.MinNftBalance,
	)
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
