package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/warden/pkg/logging"
)

func main() {
	a, err := InitializeApp()
	if err != nil {
		log.Fatalln(err)
	}
	a.Log().Info("Starting application")
	if err := a.Run(); err != nil {
		a.Log().Error("Error running application", slog.String(logging.KeyError, err.Error()))
		os.Exit(1)
	}
}
