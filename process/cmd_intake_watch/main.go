package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rcm-webdev/the-shop/process/intake"
)

func main() {
	dir := flag.String("dir", "intake", "directory to watch for raw card images")
	out := flag.String("out", "organized_images", "destination for matched images (per toy number)")
	unmatched := flag.String("unmatched", "unmatched", "destination for images with no toy number")
	logPath := flag.String("log", "processed_images.csv", "CSV log of processed images")
	flag.Parse()

	if _, err := os.Stat(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "watch dir %s: %v\n", *dir, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := intake.NewProcessor(*out, *unmatched, *logPath)
	if err := intake.Watch(ctx, *dir, p); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
		os.Exit(1)
	}
}
