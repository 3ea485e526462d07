// ABOUTME: Renders a single meter icon from fixed bucket levels
// ABOUTME: Handy for eyeballing the band layout without a microphone
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/micmon/micmon-go/pkg/history"
	"github.com/micmon/micmon-go/pkg/icon"
	"github.com/micmon/micmon-go/pkg/render"
)

var (
	levels = flag.String("levels", "1,0.8,0.6,0.4,0.1", "Comma-separated bucket levels, innermost first")
	size   = flag.Int("size", render.DefaultSize, "Icon size in pixels (power of two)")
	out    = flag.String("out", "meter.ico", "Output .ico path")
	raw    = flag.Bool("png", false, "Write the bare PNG instead of an ICO")
)

func main() {
	flag.Parse()

	values, err := parseLevels(*levels)
	if err != nil {
		log.Fatalf("Invalid levels: %v", err)
	}

	pb, err := render.Render(values, *size)
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}

	data, err := icon.Encode(pb)
	if err != nil {
		log.Fatalf("Encode failed: %v", err)
	}
	if *raw {
		if data, err = icon.Payload(data); err != nil {
			log.Fatalf("Extract PNG failed: %v", err)
		}
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Write failed: %v", err)
	}

	fmt.Printf("Wrote %s (%d bytes, %dx%d, %d bands)\n", *out, len(data), *size, *size, len(values))
}

// parseLevels reads levels and snaps them onto the quantized steps
func parseLevels(s string) ([]float64, error) {
	var values []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", field, err)
		}
		values = append(values, history.Quantize(v))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("no levels given")
	}
	return values, nil
}
