package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moneymarket/handler"
	"moneymarket/handler/hc"
	"moneymarket/handler/rest"
	"moneymarket/worker/liquidity"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run moneymarket api server and health monitor",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		database := provideDatabase()
		defer database.Close()

		events := provideEventStore(database)
		tokenLedger := provideLedger()
		e := provideEngine(ctx, database, events, tokenLedger)

		monitor, err := liquidity.New(cfg.Monitor, e, log)
		if err != nil {
			log.WithError(err).Fatal("create liquidity monitor failed")
		}

		mux := chi.NewMux()
		mux.Use(middleware.Recoverer)
		mux.Use(middleware.StripSlashes)
		mux.Use(cors.AllowAll().Handler)
		mux.Use(logger.WithRequestID)
		mux.Use(middleware.Logger)
		mux.Use(middleware.NewCompressor(5).Handler)

		{
			//hc
			mux.Mount("/hc", hc.Handle(rootCmd.Version))
		}

		{
			//restful api
			var faucet rest.Faucet
			if cfg.Server.Faucet {
				faucet = tokenLedger
			}

			svr := handler.New(e, events, cfg.Server.AdminToken, faucet)
			mux.Mount("/api", http.StripPrefix("/api", svr.HandleRestAPI()))
		}

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}
		addr := fmt.Sprintf(":%d", port)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		ctx, quit := context.WithCancel(ctx)
		signal.WithContextFunc(ctx, func() {
			quit()
		})

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logrus.Infoln("serve at", addr)
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}

			return nil
		})

		g.Go(func() error {
			_ = monitor.Start()
			<-ctx.Done()
			_ = monitor.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logrus.WithError(err).Error("graceful shutdown server failed")
			}

			return nil
		})

		if err := g.Wait(); err != nil {
			logrus.WithError(err).Fatal("server aborted")
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 0, "server port, default from config")
}
