package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/reramsim/mem/tiering"
	"github.com/sarchlab/reramsim/mem/traffic"
	"github.com/sarchlab/reramsim/simulation"
)

type runFlags struct {
	numBank           int
	numRow            uint64
	regionSize        uint64
	regionsPerMat     uint64
	fastRegionsPerMat uint64
	fastLatency       int
	slowLatency       int

	alpha       float64
	beta        float64
	epochLength uint64
	threshold   float64

	numAccesses   uint64
	hotRegions    uint64
	hotFraction   float64
	writeFraction float64
	seed          int64

	dbPath      string
	monitorPort int
	openBrowser bool
	verbose     bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation with synthetic hotspot traffic",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

var flags runFlags

func init() {
	// A .env file can override the built-in defaults.
	_ = godotenv.Load()

	f := runCmd.Flags()
	f.IntVar(&flags.numBank, "banks",
		envInt("RERAMSIM_BANKS", 8), "number of banks")
	f.Uint64Var(&flags.numRow, "rows",
		envUint("RERAMSIM_ROWS", 65536), "rows per bank")
	f.Uint64Var(&flags.regionSize, "region-size",
		envUint("RERAMSIM_REGION_SIZE", 64), "rows per region, power of two")
	f.Uint64Var(&flags.regionsPerMat, "regions-per-mat",
		16, "physical regions per mat")
	f.Uint64Var(&flags.fastRegionsPerMat, "fast-regions-per-mat",
		4, "fast regions at the start of each mat")
	f.IntVar(&flags.fastLatency, "fast-latency",
		50, "fast region access latency in cycles")
	f.IntVar(&flags.slowLatency, "slow-latency",
		120, "slow region access latency in cycles")

	f.Float64Var(&flags.alpha, "alpha",
		0.5, "heat weight of the write count")
	f.Float64Var(&flags.beta, "beta",
		0.5, "heat weight of the read count")
	f.Uint64Var(&flags.epochLength, "epoch-length",
		envUint("RERAMSIM_EPOCH_LENGTH", 100000), "cycles per epoch")
	f.Float64Var(&flags.threshold, "threshold",
		50, "minimum heat delta for a migration")

	f.Uint64Var(&flags.numAccesses, "accesses",
		1000000, "number of accesses to issue")
	f.Uint64Var(&flags.hotRegions, "hot-regions",
		8, "number of hot regions per bank")
	f.Float64Var(&flags.hotFraction, "hot-fraction",
		0.9, "fraction of accesses that hit hot regions")
	f.Float64Var(&flags.writeFraction, "write-fraction",
		0.5, "fraction of accesses that are writes")
	f.Int64Var(&flags.seed, "seed", 1, "random seed")

	f.StringVar(&flags.dbPath, "db", "",
		"path of the result database, without the .sqlite3 suffix")
	f.IntVar(&flags.monitorPort, "monitor", 0,
		"port of the monitoring server, 0 disables monitoring")
	f.BoolVar(&flags.openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
	f.BoolVar(&flags.verbose, "verbose", false,
		"log every region swap and epoch")

	rootCmd.AddCommand(runCmd)
}

func run() {
	s := buildSimulation()

	controller := tiering.MakeBuilder().
		WithEngine(s.GetEngine()).
		WithNumBank(flags.numBank).
		WithNumRow(flags.numRow).
		WithRegionSize(flags.regionSize).
		WithRegionsPerMat(flags.regionsPerMat).
		WithFastRegionsPerMat(flags.fastRegionsPerMat).
		WithFastLatency(flags.fastLatency).
		WithSlowLatency(flags.slowLatency).
		WithHeatWeights(flags.alpha, flags.beta).
		WithEpochLength(flags.epochLength).
		WithMigrationThreshold(flags.threshold).
		Build("BankCtrl")
	s.RegisterController(controller)

	if flags.verbose {
		controller.AcceptHook(tiering.NewMigrationLogger(
			log.New(os.Stdout, "", 0)))
	}

	generator := traffic.MakeGeneratorBuilder().
		WithEngine(s.GetEngine()).
		WithController(controller).
		WithNumAccesses(flags.numAccesses).
		WithHotRegions(flags.hotRegions).
		WithHotFraction(flags.hotFraction).
		WithWriteFraction(flags.writeFraction).
		WithSeed(flags.seed).
		Build("TrafficGen")
	s.RegisterComponent(generator)

	generator.TickLater()

	err := s.GetEngine().Run()
	if err != nil {
		log.Panic(err)
	}

	s.Terminate()
	printSummary(controller)

	atexit.Exit(0)
}

func buildSimulation() *simulation.Simulation {
	builder := simulation.MakeBuilder().
		WithOutputFileName(flags.dbPath)

	if flags.monitorPort > 0 {
		builder = builder.WithMonitorPort(flags.monitorPort)

		if flags.openBrowser {
			url := "http://localhost:" + strconv.Itoa(flags.monitorPort)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("cannot open browser: %s", err)
			}
		}
	} else {
		builder = builder.WithoutMonitoring()
	}

	return builder.Build()
}

func printSummary(c *tiering.Comp) {
	fmt.Printf("total accesses:       %d\n", c.TotalAccesses)
	fmt.Printf("fast region accesses: %d\n", c.FastAccesses)
	fmt.Printf("slow region accesses: %d\n", c.SlowAccesses)
	fmt.Printf("total epochs:         %d\n", c.TotalEpochs)
	fmt.Printf("region swaps:         %d\n", c.RegionSwaps)
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}

func envUint(key string, def uint64) uint64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}

	return def
}
