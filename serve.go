package main

import (
	"log"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blog_pipeline/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `serve listens for POST /blogs/pipeline/ requests and answers each one with
the generated document as an attachment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mock, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		p, agent, err := buildPipeline(cmd.Context(), cfg, mock)
		if err != nil {
			return err
		}
		srv, err := server.New(p, agent.Catalog(), cfg.Verbose, log.Default())
		if err != nil {
			return err
		}
		log.Printf("Starting web server on %s", cfg.ServerAddr)
		return http.ListenAndServe(cfg.ServerAddr, srv.Routes())
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "http listen address (overrides server_addr)")
	_ = viper.BindPFlag("server_addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
