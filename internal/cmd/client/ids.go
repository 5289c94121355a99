package client

import (
	"fmt"
	"strings"

	transports "github.com/rzbill/uniqueid/internal/cmd/client/transports"
	"github.com/rzbill/uniqueid/internal/inspect"
	"github.com/rzbill/uniqueid/pkg/uniqueid"
	"github.com/spf13/cobra"
)

func getTransport(kind string, baseURL BaseURLFunc, def uniqueid.Identity) (transports.IDTransport, error) {
	switch strings.ToLower(kind) {
	case "", "grpc":
		return transports.NewGrpcTransport(dialGRPCContext), nil
	case "http":
		base := httpBaseFromEnv()
		if baseURL != nil {
			if b := baseURL(); b != "" {
				base = b
			}
		}
		return transports.NewHTTPTransport(base, nil), nil
	case "local":
		return transports.NewLocalTransport(def), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want grpc, http or local)", kind)
	}
}

// NewGenerateCommand constructs the `generate` command.
func NewGenerateCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("count")
			kind, _ := cmd.Flags().GetString("transport")
			gen, _ := cmd.Flags().GetInt("generator-id")
			cluster, _ := cmd.Flags().GetInt("cluster-id")
			decode, _ := cmd.Flags().GetBool("decode")
			if n < 1 {
				return fmt.Errorf("--count must be >= 1")
			}

			req := transports.Request{N: n}
			def := uniqueid.Identity{}
			if cmd.Flags().Changed("generator-id") || cmd.Flags().Changed("cluster-id") {
				id, err := uniqueid.NewIdentity(gen, cluster)
				if err != nil {
					return err
				}
				req.Override, req.GeneratorID, req.ClusterID = true, id.GeneratorID, id.ClusterID
				def = id
			}
			t, err := getTransport(kind, baseURL, def)
			if err != nil {
				return err
			}
			ids, err := t.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if decode {
				items := make([]inspect.Decoded, 0, len(ids))
				for _, id := range ids {
					items = append(items, inspect.Decoded{ID: id, Fields: uniqueid.Decode(id)})
				}
				return writeDecoded(cmd.OutOrStdout(), items)
			}
			for _, id := range ids {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), id.String())
			}
			return nil
		},
	}
	cmd.Flags().IntP("count", "n", 1, "Number of IDs")
	cmd.Flags().String("transport", "grpc", "Transport: grpc|http|local")
	cmd.Flags().Int("generator-id", 0, "Generator ID override (0-63)")
	cmd.Flags().Int("cluster-id", 0, "Cluster ID override (0-15)")
	cmd.Flags().Bool("decode", false, "Print decoded fields as JSON lines")
	return cmd
}

// NewDecodeCommand constructs the `decode` command. Decoding is local.
func NewDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hex-id>...",
		Short: "Decode IDs into their fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, _ := cmd.Flags().GetString("filter")
			f, err := inspect.NewFilter(expr)
			if err != nil {
				return err
			}
			items, err := inspect.DecodeAll(args, f)
			if err != nil {
				return err
			}
			return writeDecoded(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().String("filter", "", "CEL filter over ts_ms, generator_id, cluster_id, sequence, now_ms")
	return cmd
}
