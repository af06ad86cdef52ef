// Command fhurld serves the fhurl demo site.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/fhurl/app"
	"github.com/dalemusser/fhurl/internal/bootstrap"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
