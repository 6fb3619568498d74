package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chadspratt/do-again-list/internal/api"
	"github.com/chadspratt/do-again-list/internal/cli"
	"github.com/chadspratt/do-again-list/internal/constants"
)

type ServeCmd struct {
	Addr string `help:"Address to listen on." default:"${listen_addr}" env:"DOAGAIN_LISTEN_ADDR"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	ctx.PerformAutomaticBackup()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	srv := api.NewServer(ctx.Service, ctx.Owner)
	fmt.Printf("Serving %s API on http://%s\n", constants.AppName, addr)
	return srv.ListenAndServe(sigCtx, addr)
}
