package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osaka-bousai/riskpoint/internal/arbiter"
	"github.com/osaka-bousai/riskpoint/internal/resolver"
	"github.com/osaka-bousai/riskpoint/internal/server"
	"github.com/osaka-bousai/riskpoint/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		tiles, err := initTileClient()
		if err != nil {
			return err
		}

		scorer := store.NewScorer(st)
		shelters := store.NewShelterLookup(st)
		pl := resolver.New(tiles, scorer, shelters, loadRiskTable(), arbiter.New())

		srv := server.New(pl, scorer, shelters,
			server.WithDefaultShelterLimit(cfg.Shelter.DefaultLimit),
			server.WithAllowedOrigins(cfg.Server.AllowedOrigins))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		return srv.ListenAndServe(ctx, port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
