package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/napolitain/bag-optimizer/internal/actionlog"
	"github.com/napolitain/bag-optimizer/internal/applier"
	"github.com/napolitain/bag-optimizer/internal/converter"
	"github.com/napolitain/bag-optimizer/internal/events"
	"github.com/napolitain/bag-optimizer/internal/gameapi"
	"github.com/napolitain/bag-optimizer/internal/loader"
	"github.com/napolitain/bag-optimizer/internal/models"
	"github.com/napolitain/bag-optimizer/internal/recycle"
	"github.com/napolitain/bag-optimizer/internal/solver/optimizer"
)

var (
	dataDir       string
	configFile    string
	inventoryFile string
	quiet         bool
	verbose       bool
	jsonOutput    bool

	bridgeURL string
	logDB     string
	force     bool
)

// errNoBridge is returned by the offline backend
var errNoBridge = errors.New("no game bridge configured")

type offlineCaller struct{}

func (offlineCaller) Call(context.Context, string, map[string]any) ([]byte, error) {
	return nil, errNoBridge
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "optimizer",
		Short: "Pokemon bag optimizer",
		Long: `Decides which Pokemon to transfer, evolve and power up so the
storage never fills with weak duplicates.`,
	}

	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "data", "Path to data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&inventoryFile, "inventory", "i", "inventory.json", "Path to inventory snapshot")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the transfers, evolutions and power-ups for an inventory",
		Run:   runPlan,
	}
	planCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the plan as JSON")

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Plan, then execute the plan",
		Run:   runApply,
	}
	applyCmd.Flags().StringVar(&bridgeURL, "bridge", "", "URL of the game bridge (dry run when empty)")
	applyCmd.Flags().StringVar(&logDB, "log-db", "", "SQLite file recording transfers and evolutions")
	applyCmd.Flags().BoolVar(&force, "force", false, "Run even when the storage has room left")

	recycleCmd := &cobra.Command{
		Use:   "recycle",
		Short: "Discard bag items above their keep counts",
		Run:   runRecycle,
	}
	recycleCmd.Flags().StringVar(&bridgeURL, "bridge", "", "URL of the game bridge (print only when empty)")

	rootCmd.AddCommand(planCmd, applyCmd, recycleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads everything a command needs, exiting on failure
func setup() (*models.Config, *models.Pokedex, *models.Inventory, *slog.Logger) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if !quiet && !jsonOutput {
		printBanner()
	}

	cfg := models.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = models.LoadConfig(configFile)
		if err != nil {
			color.Red("Error loading config: %v", err)
			os.Exit(1)
		}
	}

	dex, err := loader.LoadPokedex(dataDir)
	if err != nil {
		color.Red("Error loading pokedex: %v", err)
		os.Exit(1)
	}

	inv, err := loader.LoadInventory(inventoryFile, dex)
	if err != nil {
		color.Red("Error loading inventory: %v", err)
		os.Exit(1)
	}

	if !quiet && !jsonOutput {
		infoColor := color.New(color.FgYellow)
		infoColor.Printf("📦 %d Pokemon, %d eggs, %d/%d slots used, %d stardust\n\n",
			len(inv.Creatures), inv.Eggs, inv.SpaceUsed(), inv.MaxStorage, inv.Stardust)
	}
	return cfg, dex, inv, logger
}

func printBanner() {
	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Println("\n╭───────────────────────────╮")
	titleColor.Println("│  Pokemon Bag Optimizer    │")
	titleColor.Println("╰───────────────────────────╯")
	fmt.Println()
}

func runPlan(cmd *cobra.Command, args []string) {
	cfg, dex, inv, logger := setup()

	plan, err := optimizer.New(cfg, dex, logger).Optimize(inv)
	if err != nil {
		color.Red("Error optimizing: %v", err)
		os.Exit(1)
	}

	if jsonOutput {
		dto, err := converter.PlanToDTO(plan)
		if err != nil {
			color.Red("Error converting plan: %v", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dto); err != nil {
			color.Red("Error encoding plan: %v", err)
			os.Exit(1)
		}
		return
	}

	printPlan(plan)
}

func runApply(cmd *cobra.Command, args []string) {
	cfg, dex, inv, logger := setup()
	successColor := color.New(color.FgGreen, color.Bold)

	opt := optimizer.New(cfg, dex, logger)
	if !force && !opt.ShouldRun(inv) {
		color.Yellow("%d slots left (more than %d), nothing to do", inv.SpaceLeft(), cfg.MinSlotLeft)
		return
	}

	plan, err := opt.Optimize(inv)
	if err != nil {
		color.Red("Error optimizing: %v", err)
		os.Exit(1)
	}

	var caller gameapi.Caller = offlineCaller{}
	if bridgeURL != "" {
		bc, err := gameapi.NewBridgeCaller(bridgeURL)
		if err != nil {
			color.Red("Error connecting to bridge: %v", err)
			os.Exit(1)
		}
		caller = bc
	} else {
		cfg.DryRun = true
		color.Yellow("No bridge configured, dry run\n")
	}

	opts := []applier.Option{applier.WithLogger(logger)}
	if logDB != "" {
		store, err := actionlog.Open(logDB)
		if err != nil {
			color.Red("Error opening action log: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, applier.WithRecorder(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := applier.New(gameapi.NewClient(caller, dex), cfg, dex, events.NewLogEmitter(logger), opts...)
	report, err := app.Apply(ctx, plan, inv)
	if err != nil {
		color.Red("Interrupted: %v", err)
	}

	dto := converter.ReportToDTO(report, dex)
	successColor.Printf("\n✓ %d transferred, %d powered up, %d evolved (+%d xp)\n",
		dto.Transferred, dto.Upgraded, dto.Evolved, dto.XP)
	if dto.Failed > 0 {
		color.Red("✗ %d actions failed", dto.Failed)
	}
	if dto.EvolveSkipped {
		color.Yellow("Evolutions skipped (lucky egg)")
	}
}

func runRecycle(cmd *cobra.Command, args []string) {
	cfg, dex, inv, logger := setup()

	discards := recycle.Plan(inv.Items, cfg.Recycle)
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Item", "Owned", "Keep", "Discard"}),
	)
	for _, d := range discards {
		_ = table.Append([]string{
			d.Item.String(),
			strconv.Itoa(inv.Items[d.Item]),
			strconv.Itoa(d.Keep),
			strconv.Itoa(d.Count),
		})
	}
	_ = table.Render()

	if bridgeURL == "" || len(discards) == 0 {
		return
	}
	bc, err := gameapi.NewBridgeCaller(bridgeURL)
	if err != nil {
		color.Red("Error connecting to bridge: %v", err)
		os.Exit(1)
	}

	r := recycle.NewRecycler(gameapi.NewClient(bc, dex), events.NewLogEmitter(logger), logger)
	done, err := r.Run(context.Background(), inv.Items, cfg.Recycle)
	if err != nil {
		color.Red("Error recycling: %v", err)
		os.Exit(1)
	}
	color.Green("✓ %d/%d items recycled", done, len(discards))
}

func printPlan(plan *optimizer.Plan) {
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgYellow)

	infoColor.Printf("🗑️  Transfers (%d)\n", len(plan.Transfers))
	transfers := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Pokemon", "CP", "IV", "NCP", "Level"}),
	)
	for i, c := range plan.Transfers {
		_ = transfers.Append([]string{
			strconv.Itoa(i + 1),
			c.Name,
			strconv.Itoa(c.CP),
			fmt.Sprintf("%.2f", c.IV),
			fmt.Sprintf("%.2f", c.NCP),
			fmt.Sprintf("%.1f", c.Level),
		})
	}
	_ = transfers.Render()

	infoColor.Printf("\n🧬 Evolutions (%d)\n", len(plan.Evolutions))
	evolutions := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Pokemon", "Into", "CP", "IV", "Reason"}),
	)
	for i, e := range plan.Evolutions {
		reason := "keep"
		if e.ForXP {
			reason = "xp"
		}
		_ = evolutions.Append([]string{
			strconv.Itoa(i + 1),
			e.Creature.Name,
			e.Successor.Name,
			strconv.Itoa(e.Creature.CP),
			fmt.Sprintf("%.2f", e.Creature.IV),
			reason,
		})
	}
	_ = evolutions.Render()

	infoColor.Printf("\n⬆️  Power-ups (%d)\n", len(plan.Upgrades))
	upgrades := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Pokemon", "CP", "Level", "Candy", "Stardust"}),
	)
	for i, u := range plan.Upgrades {
		dto, err := converter.UpgradeToDTO(u)
		if err != nil {
			color.Red("Error pricing power-up: %v", err)
			os.Exit(1)
		}
		_ = upgrades.Append([]string{
			strconv.Itoa(i + 1),
			u.Creature.Name,
			strconv.Itoa(u.Creature.CP),
			fmt.Sprintf("%.1f → %.1f", dto.FromLevel, dto.ToLevel),
			strconv.Itoa(dto.Candy),
			strconv.Itoa(dto.Stardust),
		})
	}
	_ = upgrades.Render()

	successColor.Printf("\n✓ Stardust: %d → %d\n", plan.StardustBefore, plan.StardustAfter)
}
