package main

import (
	"context"
	"flag"
	"os"

	"github.com/hitoshi/tabilog/internal/client"
	"github.com/hitoshi/tabilog/internal/client/cli"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8000", "API server base URL")
	flag.Parse()

	api := client.NewClient(*serverURL, nil)
	app := cli.NewApp(api, os.Stdin, os.Stdout)
	app.Run(context.Background())
}
