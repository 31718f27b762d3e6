package main

import (
	"fmt"

	falcon8 "github.com/amaanq/Falcon8Touch"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logrus.New()

	hub, err := falcon8.New(falcon8.Options{Debug: true}, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer hub.Close()

	devices, err := hub.Devices()
	if err != nil {
		logger.Fatal(err)
	}

	// One goroutine per attached keypad. Reads on a single device are
	// serialized internally; separate devices are independent.
	var group errgroup.Group
	for i, device := range devices {
		i, device := i, device
		group.Go(func() error {
			defer device.Close()

			info, err := device.Info()
			if err != nil {
				return fmt.Errorf("device %d: %v", i, err)
			}
			fmt.Printf("device %d: %s\n", i, info)

			report, err := device.Report()
			if err != nil {
				return fmt.Errorf("device %d: %v", i, err)
			}
			fmt.Printf("device %d report (%d bytes): %x\n", i, len(report), report)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Fatal(err)
	}
}
