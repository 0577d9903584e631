package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"app/cfg"
	"app/pkg/resemble"

	"gopkg.in/yaml.v3"
)

// One-shot helper: requests training of a custom voice from a dataset
// archive the provider can download.
func main() {
	var (
		cfgPath    string
		name       string
		datasetURL string
	)

	flag.StringVar(&cfgPath, "cfg", "cfg/cfg.yaml", "path to config file")
	flag.StringVar(&name, "name", "", "name of the new voice")
	flag.StringVar(&datasetURL, "dataset-url", "", "url of the voice dataset archive")
	flag.Parse()

	if name == "" || datasetURL == "" {
		log.Fatal("both -name and -dataset-url are required")
	}

	var cfg *cfg.Config
	if cfgFile, err := os.ReadFile(cfgPath); err != nil {
		log.Fatalf("can't open %s file: %v", cfgPath, err)
	} else if err = yaml.Unmarshal(cfgFile, &cfg); err != nil {
		log.Fatal("can't unmarshal cfg file", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	client := resemble.New(httpClient, &cfg.Resemble)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	voice, err := client.CreateVoice(ctx, name, datasetURL)
	if err != nil {
		log.Fatal("failed to create voice: ", err)
	}

	log.Printf("voice created: uuid=%s name=%s status=%s", voice.UUID, voice.Name, voice.Status)
}
