package main

import (
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"

	"github.com/x-xyz/sweeper/base/ctx"
	"github.com/x-xyz/sweeper/base/database/mongoclient"
	"github.com/x-xyz/sweeper/base/database/redisclient"
	bEthereum "github.com/x-xyz/sweeper/base/ethereum"
	"github.com/x-xyz/sweeper/base/goroutine"
	"github.com/x-xyz/sweeper/base/log"
	"github.com/x-xyz/sweeper/base/metrics"
	bValidator "github.com/x-xyz/sweeper/base/validator"
	"github.com/x-xyz/sweeper/domain"
	"github.com/x-xyz/sweeper/domain/wallet"
	mmiddleware "github.com/x-xyz/sweeper/middleware"
	"github.com/x-xyz/sweeper/service/gasprice"
	"github.com/x-xyz/sweeper/service/marketplace"
	"github.com/x-xyz/sweeper/service/query"
	allowance_usecase "github.com/x-xyz/sweeper/stores/allowance/usecase"
	ledger_repository "github.com/x-xyz/sweeper/stores/ledger/repository"
	ledger_usecase "github.com/x-xyz/sweeper/stores/ledger/usecase"
	listing_repository "github.com/x-xyz/sweeper/stores/listing/repository"
	listing_usecase "github.com/x-xyz/sweeper/stores/listing/usecase"
	spendlimit_usecase "github.com/x-xyz/sweeper/stores/spendlimit/usecase"
	sweep_delivery "github.com/x-xyz/sweeper/stores/sweep/delivery/http"
	sweep_usecase "github.com/x-xyz/sweeper/stores/sweep/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	// init echo
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	context := ctx.Background()

	// init mongo client
	context.Info("init mongo")
	uri := viper.GetString("mongo.uri")
	authDBName := viper.GetString("mongo.authDBName")
	dbName := viper.GetString("mongo.dbName")
	enableSSL := viper.GetBool("mongo.enableSSL")
	checkIndex := viper.GetBool("mongo.checkIndex")
	mongoClient := mongoclient.MustConnectMongoClient(uri, authDBName, dbName, enableSSL, true, 2)
	q := query.New(mongoClient, checkIndex, metrics.New("query"))

	// init redis pool for the shared ghost set
	context.Info("init redis")
	redisURI := viper.GetString("redis.uri")
	redisPwd := viper.GetString("redis.password")
	redisPoolMultiplier := viper.GetFloat64("redis.poolMultiplier")
	redisPool := redisclient.MustConnectRedis(redisURI, redisPwd, redisclient.RedisParam{
		PoolMultiplier: redisPoolMultiplier,
		Retry:          true,
	})

	// init eth clients and gateways per network
	networks := viper.Sub("networks")
	keys := networks.AllSettings()
	clients := make(map[domain.ChainId]domain.EthClientRepo)
	gateways := make(map[domain.ChainId]sweep_usecase.GatewayCfg)
	for k := range keys {
		chainId := domain.ChainId(networks.GetInt32(fmt.Sprintf("%s.chainId", k)))
		rpcUrl := networks.GetString(fmt.Sprintf("%s.rpcUrl", k))
		rpcClient, err := ethclient.Dial(rpcUrl)
		if err != nil {
			context.WithFields(log.Fields{
				"chainId": chainId,
				"err":     err,
			}).Warn("skipping network, rpc dial failed")
			continue
		}
		maxConcurrency := networks.GetInt(fmt.Sprintf("%s.maxConcurrency", k))
		if maxConcurrency == 0 {
			maxConcurrency = 10
		}
		clients[chainId] = bEthereum.NewThrottledClient(rpcClient, maxConcurrency)

		defaultCurrency := domain.Address(networks.GetString(fmt.Sprintf("%s.defaultCurrency", k)))
		if defaultCurrency.IsEmpty() {
			defaultCurrency = domain.ChainIdWrappedNativeMap[chainId]
		}
		gateways[chainId] = sweep_usecase.GatewayCfg{
			Address:         domain.Address(networks.GetString(fmt.Sprintf("%s.gateway", k))).ToLower(),
			DefaultCurrency: defaultCurrency.ToLower(),
		}
	}

	// marketplace order book client
	marketplaceClient := marketplace.NewClient(&marketplace.ClientCfg{
		HttpClient: http.Client{},
		Timeout:    viper.GetDuration("marketplace.timeout"),
		Apikey:     viper.GetString("marketplace.apikey"),
		Endpoints:  viper.GetStringSlice("marketplace.endpoints"),
		MinSpacing: viper.GetDuration("marketplace.minSpacing"),
	})

	gasPrice := gasprice.New(&gasprice.Cfg{
		Clients:      clients,
		Strategy:     gasprice.Strategy(viper.GetString("gas.strategy")),
		Multiplier:   viper.GetFloat64("gas.multiplier"),
		MaxPriceGwei: viper.GetInt64("gas.maxPriceGwei"),
	})

	// signing keys come from the environment, never the config file
	viper.BindEnv("wallet.keys", "SWEEP_WALLET_KEYS")
	walletKeys := []string{}
	for _, k := range strings.Split(viper.GetString("wallet.keys"), ",") {
		if k = strings.TrimSpace(k); len(k) > 0 {
			walletKeys = append(walletKeys, k)
		}
	}
	wallets, err := wallet.NewKeyring(walletKeys)
	if err != nil {
		context.WithField("err", err).Panic("loading wallet keys")
	}

	// construct repository, usecase and delivery
	ghostSet := listing_repository.NewRedisGhostSet(redisPool, metrics.New("ghostset"))
	filter := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		GhostSet: ghostSet,
	})
	ledgerRepo := ledger_repository.NewLedgerRepo(q)
	ledger := ledger_usecase.New(&ledger_usecase.LedgerUseCaseCfg{
		Repo:      ledgerRepo,
		Retention: viper.GetInt32("ledger.retention"),
	})
	spendLimit := spendlimit_usecase.New(&spendlimit_usecase.SpendLimitUseCaseCfg{
		Ledger:     ledger,
		DefaultCap: parseCap(context, viper.GetString("spendLimit.defaultCapWei")),
		Caps:       parseCaps(context, viper.GetStringMapString("spendLimit.caps")),
	})
	allowance := allowance_usecase.New(&allowance_usecase.AllowanceUseCaseCfg{
		Clients:      clients,
		GasPrice:     gasPrice,
		PollInterval: viper.GetDuration("sweep.pollInterval"),
		MaxAttempts:  viper.GetInt("sweep.maxAttempts"),
	})
	sweep := sweep_usecase.New(&sweep_usecase.SweepUseCaseCfg{
		Clients:      clients,
		Gateways:     gateways,
		Source:       marketplaceClient,
		Filter:       filter,
		Allowance:    allowance,
		SpendLimit:   spendLimit,
		Ledger:       ledger,
		Wallets:      wallets,
		GasPrice:     gasPrice,
		Metrics:      metrics.New("sweep"),
		MaxBatchSize: viper.GetInt("sweep.maxBatchSize"),
		MaxQuantity:  viper.GetInt("sweep.maxQuantity"),
		FeeBps:       viper.GetInt64("marketplace.feeBps"),
		FetchLimit:   viper.GetInt("sweep.fetchLimit"),
		BaseGas:      viper.GetUint64("sweep.baseGas"),
		PerOrderGas:  viper.GetUint64("sweep.perOrderGas"),
		PollInterval: viper.GetDuration("sweep.pollInterval"),
		MaxAttempts:  viper.GetInt("sweep.maxAttempts"),
	})

	sweep_delivery.New(e, sweep, ledger, ghostSet)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	goroutine.RecoverableGo(func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	})

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

func parseCap(c ctx.Ctx, s string) *big.Int {
	if len(s) == 0 {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		c.WithField("cap", s).Panic("unparsable spend cap")
	}
	return v
}

func parseCaps(c ctx.Ctx, raw map[string]string) map[domain.Address]*big.Int {
	caps := make(map[domain.Address]*big.Int, len(raw))
	for addr, s := range raw {
		caps[domain.Address(addr).ToLower()] = parseCap(c, s)
	}
	return caps
}
