package main

import (
	"context"
	"flag"

	"github.com/dmitrijs2005/authgate/internal/client/cli"
)

func main() {
	serverURL := flag.String("s", "http://localhost:8080", "server URL")
	flag.Parse()

	app := cli.NewApp(*serverURL)
	app.Run(context.Background())
}
