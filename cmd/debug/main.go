// Command debug runs the extraction pipeline on a single screenshot and
// prints the result, for tuning zone profiles and prompts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"deckscan/pkg/config"
	"deckscan/pkg/ocr"
)

func main() {
	f := flag.String("file", "", "screenshot to process")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}
	cfg, err := config.Load(os.Getenv("DECKSCAN_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	profiles, err := ocr.LoadProfiles(cfg.ZoneProfiles)
	if err != nil {
		log.Fatalf("zone profiles: %v", err)
	}
	data, err := os.ReadFile(*f)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	p := ocr.NewPipeline(ocr.PipelineOptions{
		Profiles:     profiles,
		VisionAPIKey: cfg.VisionAPIKey,
		Budget:       ocr.NewRateBudget(cfg.VisionPerMinute, cfg.VisionBurst),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	res, err := p.Process(ctx, data)
	if err != nil {
		log.Fatalf("process: %v", err)
	}
	fmt.Printf("format=%s confidence=%.2f guaranteed=%t methods=%v elapsed=%dms\n",
		res.Format, res.Confidence, res.Guaranteed, res.MethodsTried, res.ProcessingMS)
	fmt.Printf("mainboard=%d sideboard=%d\n", ocr.MainboardCount(res.Cards), ocr.SideboardCount(res.Cards))
	for _, w := range res.Warnings {
		fmt.Printf("warn: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Printf("error: %s\n", e)
	}
	for _, c := range res.Cards {
		fmt.Printf("%d %s [%s]\n", c.Quantity, c.Name, c.Section)
	}
}
