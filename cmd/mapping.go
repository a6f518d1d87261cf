package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"ucrm-export/internal/config"
	"ucrm-export/internal/crm"
	"ucrm-export/internal/labels"
	"ucrm-export/internal/logger"
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage accounting label mappings",
	Long: `Manage the labels written into the sales report instead of the raw
invoice item names. Surcharge labels take precedence over per-plan
labels, which take precedence over the shared internet label.`,
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured labels next to the CRM's plans and surcharges",
	RunE:  runMappingShow,
}

var mappingSetInternetCmd = &cobra.Command{
	Use:   "set-internet [label]",
	Short: "Set the default label for internet service plans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateMapping(func(mapping *labels.Mapping) {
			mapping.InternetLabel = args[0]
		})
	},
}

var mappingSetPlanCmd = &cobra.Command{
	Use:   "set-plan [plan-id] [label]",
	Short: "Set the label for a specific service plan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		planID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid plan id %q: %w", args[0], err)
		}
		return updateMapping(func(mapping *labels.Mapping) {
			mapping.SetPlan(planID, args[1])
		})
	},
}

var mappingSetSurchargeCmd = &cobra.Command{
	Use:   "set-surcharge [surcharge-id] [label]",
	Short: "Set the label for a surcharge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		surchargeID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid surcharge id %q: %w", args[0], err)
		}
		return updateMapping(func(mapping *labels.Mapping) {
			mapping.SetSurcharge(surchargeID, args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingSetInternetCmd)
	mappingCmd.AddCommand(mappingSetPlanCmd)
	mappingCmd.AddCommand(mappingSetSurchargeCmd)
}

func updateMapping(apply func(*labels.Mapping)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mapping, err := labels.Load(cfg.MappingPath())
	if err != nil {
		return err
	}
	apply(mapping)
	if err := mapping.Save(cfg.MappingPath()); err != nil {
		return err
	}

	lg := logger.WithComponent("mapping")
	lg.Info().Str("path", cfg.MappingPath()).Msg("Mapping saved")
	fmt.Printf("Mapping saved to %s\n", cfg.MappingPath())
	return nil
}

func runMappingShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mapping, err := labels.Load(cfg.MappingPath())
	if err != nil {
		return err
	}

	ctx := context.Background()
	api := crm.NewAPI(cfg.CRMAPIURL, cfg.CRMAppKey)

	plans, err := api.ListServicePlans(ctx)
	if err != nil {
		return err
	}
	surcharges, err := api.ListSurcharges(ctx)
	if err != nil {
		return err
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	sort.Slice(surcharges, func(i, j int) bool { return surcharges[i].ID < surcharges[j].ID })

	fmt.Printf("Internet label: %s\n\n", valueOrDash(mapping.InternetLabel))

	fmt.Println("Service plans:")
	for _, plan := range plans {
		label := mapping.Plans[strconv.FormatInt(plan.ID, 10)]
		fmt.Printf("  [%d] %s (%s) -> %s\n", plan.ID, plan.Name, plan.ServicePlanType, valueOrDash(label))
	}

	fmt.Println("\nSurcharges:")
	for _, surcharge := range surcharges {
		label := mapping.Surcharges[strconv.FormatInt(surcharge.ID, 10)]
		fmt.Printf("  [%d] %s -> %s\n", surcharge.ID, surcharge.Name, valueOrDash(label))
	}
	return nil
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
