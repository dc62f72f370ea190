package config_test

import (
	"fmt"
	"log"
	"os"

	"github.com/sagarc03/gsutil/config"
)

func ExampleLoad() {
	cfg, err := config.Load(config.Options{File: os.DevNull})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Endpoint: %s, Scheme: %s, Duration: %s\n", cfg.Endpoint, cfg.SignURL.Scheme, cfg.SignURL.Duration)
	// Output: Endpoint: https://storage.googleapis.com, Scheme: v4, Duration: 1h0m0s
}
