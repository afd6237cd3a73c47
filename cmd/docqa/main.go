// Package main is the entry point for the DocQA server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/docqa/cmd/docqa/app"
)

func main() {
	app.NewApp().Run()
}
