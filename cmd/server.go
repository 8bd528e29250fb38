package cmd

import (
	"github.com/spf13/cobra"
	"youtube-learner/config"
	server2 "youtube-learner/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start http server and insight worker",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
