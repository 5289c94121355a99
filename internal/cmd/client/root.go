package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the uniqueid client.
// It registers the generate and decode commands.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "uniqueid",
		Short: "uniqueid client commands",
	}
	root.AddCommand(NewGenerateCommand(baseURL))
	root.AddCommand(NewDecodeCommand())
	return root
}
