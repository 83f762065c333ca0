// stegguard hides files inside lossless images.
//
// Usage:
//
//	stegguard embed -payload <file> -carrier <image> -o <image>
//	stegguard extract -stego <image> -o <file>
//	stegguard capacity -image <image>
//	stegguard cover -o <image> [options]
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"stegguard/internal/carrier"
	"stegguard/internal/cover"
	"stegguard/internal/stego"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "embed":
		err = runEmbed(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "capacity":
		err = runCapacity(os.Args[2:])
	case "cover":
		err = runCover(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		fatal(err)
	}
}

func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	var payload, carrierPath, output string
	fs.StringVar(&payload, "payload", "", "File to hide")
	fs.StringVar(&carrierPath, "carrier", "", "Cover image (.png, .bmp, .tif)")
	fs.StringVar(&output, "o", "", "Output image path (lossless extension)")
	fs.StringVar(&output, "output", "", "Output image path (lossless extension)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if payload == "" || carrierPath == "" || output == "" {
		return fmt.Errorf("embed requires -payload, -carrier and -o")
	}

	report, err := stego.EmbedFile(payload, carrierPath, output)
	if err != nil {
		return err
	}

	fmt.Printf("[+] Successfully embedded %.2fKB\n", float64(report.PayloadSize)/1024)
	fmt.Printf("[+] Original MD5: %s\n", report.Checksum)
	fmt.Printf("[+] Used %d of %d bits, wrote %s (%s)\n", report.BitsUsed, report.Capacity, output, report.Format)
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	var stegoPath, output string
	fs.StringVar(&stegoPath, "stego", "", "Image holding the payload")
	fs.StringVar(&output, "o", "", "Where to write the recovered file")
	fs.StringVar(&output, "output", "", "Where to write the recovered file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if stegoPath == "" || output == "" {
		return fmt.Errorf("extract requires -stego and -o")
	}

	report, err := stego.ExtractFile(stegoPath, output)
	if err != nil {
		var ie *stego.IntegrityError
		if errors.As(err, &ie) {
			fmt.Fprintf(os.Stderr, "[!] Expected: %s\n", hex.EncodeToString(ie.Expected))
			fmt.Fprintf(os.Stderr, "[!] Got: %s\n", hex.EncodeToString(ie.Actual))
		}
		return err
	}

	fmt.Println("[+] Payload extracted successfully")
	fmt.Printf("[+] MD5 verified: %s\n", report.Checksum)
	fmt.Printf("[+] Wrote %d bytes to %s\n", report.PayloadSize, output)
	return nil
}

func runCapacity(args []string) error {
	fs := flag.NewFlagSet("capacity", flag.ExitOnError)
	var path string
	fs.StringVar(&path, "image", "", "Image to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		return fmt.Errorf("capacity requires -image")
	}

	img, err := carrier.Load(path)
	if err != nil {
		return err
	}
	r := img.Raster
	fmt.Printf("Format:      %s\n", img.Format)
	fmt.Printf("Dimensions:  %dx%d, %d channel(s)\n", r.Width, r.Height, r.Channels)
	fmt.Printf("Capacity:    %d bits\n", r.Capacity())
	fmt.Printf("Max payload: %d bytes\n", stego.MaxPayload(r.Capacity()))
	return nil
}

func runCover(args []string) error {
	fs := flag.NewFlagSet("cover", flag.ExitOnError)
	var cfg cover.Config
	var output string
	fs.StringVar(&output, "o", "", "Output image path")
	fs.StringVar(&output, "output", "", "Output image path")
	fs.IntVar(&cfg.Width, "width", 1280, "Width in pixels")
	fs.IntVar(&cfg.Height, "height", 720, "Height in pixels")
	fs.StringVar(&cfg.Color, "color", "random", "Background color: hex or 'random'")
	fs.IntVar(&cfg.Noise, "noise", 8, "Per-sample noise amplitude (0 for flat)")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "Noise seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if output == "" {
		return fmt.Errorf("output file is required (-o)")
	}

	fmt.Printf("Generating: %s\n", output)
	if err := cover.Generate(output, cfg); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", output)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`stegguard - LSB steganography for lossless images

USAGE:
    stegguard embed -payload <file> -carrier <image> -o <image>
    stegguard extract -stego <image> -o <file>
    stegguard capacity -image <image>
    stegguard cover -o <image> [options]

COVER OPTIONS:
    -width <px>        Width in pixels (default: 1280)
    -height <px>       Height in pixels (default: 720)
    -color <hex>       Background color or 'random' (default: random)
    -noise <n>         Noise amplitude per sample (default: 8)
    -seed <n>          Noise seed (default: 1)

Lossless formats: %s
`, strings.Join(carrier.Extensions(), ", "))
}
