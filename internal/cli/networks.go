package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/pkg/logger"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks a session can select",
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := networkdefinition.FromConfig(cfg.Networks, logger.Nop())
		if err != nil {
			return err
		}
		return printNetworks(cmd.OutOrStdout(), registry)
	},
}

func printNetworks(out io.Writer, registry *networkdefinition.Registry) error {
	defaultID := registry.Default().ID
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCHAIN ID\tSYMBOL\tRPC")
	for _, n := range registry.All() {
		id := n.ID
		if id == defaultID {
			id += " *"
		}
		fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\t%s\n",
			id, n.Icon, n.DisplayName, n.ChainID, n.NativeCurrency.Symbol, strings.Join(n.RPCEndpoints, ","))
	}
	return w.Flush()
}
