package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("spanparse")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "spanparse",
		Short: "Parse HTTP and JSON inputs into span-annotated trees",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newJSONCmd())
	rootCmd.AddCommand(newHTTPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
