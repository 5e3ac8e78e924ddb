package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Procodx/familyGuardian/pkg/cmd/server"
)

// serveEngineCmd represents the serve engine command
var serveEngineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Serve the realtime presence and escalation engine",
	Run:   server.RunServeEngine(c),
}

func init() {
	serveCmd.AddCommand(serveEngineCmd)
}
